package storage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecords_RoundTripAllCompressions(t *testing.T) {
	records := [][]byte{
		[]byte("первая"),
		{},
		bytes.Repeat([]byte{0xAB}, 100000),
	}

	for _, c := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		t.Run(string(c), func(t *testing.T) {
			data, err := EncodeRecords(c, records)
			require.NoError(t, err)

			decoded, err := DecodeRecords(data)
			require.NoError(t, err)
			require.Len(t, decoded, len(records))
			for i := range records {
				assert.True(t, bytes.Equal(records[i], decoded[i]), "запись %d", i)
			}
		})
	}
}

func TestRecords_Compresses(t *testing.T) {
	records := [][]byte{bytes.Repeat([]byte{1}, 65536)}
	plain, err := EncodeRecords(CompressionNone, records)
	require.NoError(t, err)
	packed, err := EncodeRecords(CompressionZstd, records)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain)/10)
}

func TestRecords_Corrupt(t *testing.T) {
	_, err := DecodeRecords([]byte("xx"))
	assert.ErrorIs(t, err, ErrCorruptRecord)

	_, err = DecodeRecords([]byte{'V', '4', 'D', 9, 0})
	assert.ErrorIs(t, err, ErrCorruptRecord, "неизвестная версия")

	_, err = DecodeRecords([]byte{'V', '4', 'D', fileFormatVersion, 7})
	assert.ErrorIs(t, err, ErrCorruptRecord, "неизвестное сжатие")

	data, err := EncodeRecords(CompressionNone, [][]byte{[]byte("hello world")})
	require.NoError(t, err)
	_, err = DecodeRecords(data[:len(data)-3])
	assert.ErrorIs(t, err, ErrCorruptRecord, "обрезанная запись")

	data, err = EncodeRecords(CompressionGzip, [][]byte{[]byte("hello world")})
	require.NoError(t, err)
	data[fileHeaderSize] ^= 0xFF
	_, err = DecodeRecords(data)
	assert.ErrorIs(t, err, ErrCorruptRecord, "испорченный gzip")
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, c)

	c, err = ParseCompression("zstd")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)

	_, err = ParseCompression("lz4")
	assert.Error(t, err)

	_, err = EncodeRecords(Compression("lz4"), nil)
	assert.Error(t, err)
}
