package storage

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression — алгоритм сжатия потока записей
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// Заголовок файла: магия, версия формата и тип сжатия
var fileMagic = [3]byte{'V', '4', 'D'}

const (
	fileFormatVersion = 1
	fileHeaderSize    = 5

	// Ограничение на размер одной записи, больше — признак повреждения
	maxRecordSize = 64 << 20
)

const (
	compressionByteNone byte = iota
	compressionByteGzip
	compressionByteZstd
)

// ParseCompression разбирает имя алгоритма из конфигурации
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionGzip:
		return CompressionGzip, nil
	case CompressionZstd:
		return CompressionZstd, nil
	case CompressionNone:
		return CompressionNone, nil
	default:
		return "", fmt.Errorf("неизвестный алгоритм сжатия: %q", s)
	}
}

func (c Compression) headerByte() (byte, error) {
	switch c {
	case CompressionNone:
		return compressionByteNone, nil
	case CompressionGzip, "":
		return compressionByteGzip, nil
	case CompressionZstd:
		return compressionByteZstd, nil
	default:
		return 0, fmt.Errorf("неизвестный алгоритм сжатия: %q", c)
	}
}

// EncodeRecords упаковывает записи в сжатый поток с заголовком.
// Каждая запись предваряется длиной в формате uvarint.
func EncodeRecords(c Compression, records [][]byte) ([]byte, error) {
	kind, err := c.headerByte()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(fileMagic[:])
	buf.WriteByte(fileFormatVersion)
	buf.WriteByte(kind)

	var w io.WriteCloser
	switch kind {
	case compressionByteGzip:
		w = gzip.NewWriter(&buf)
	case compressionByteZstd:
		w, err = zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
		}
	default:
		w = nopWriteCloser{&buf}
	}

	if err := writeFramed(w, records); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("ошибка завершения сжатого потока: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeRecords читает записи из потока, созданного EncodeRecords.
// Алгоритм сжатия определяется по заголовку.
func DecodeRecords(data []byte) ([][]byte, error) {
	if len(data) < fileHeaderSize || !bytes.Equal(data[:3], fileMagic[:]) {
		return nil, fmt.Errorf("%w: неверный заголовок", ErrCorruptRecord)
	}
	if data[3] != fileFormatVersion {
		return nil, fmt.Errorf("%w: неподдерживаемая версия формата %d", ErrCorruptRecord, data[3])
	}

	payload := bytes.NewReader(data[fileHeaderSize:])
	var r io.Reader
	switch data[4] {
	case compressionByteNone:
		r = payload
	case compressionByteGzip:
		gz, err := gzip.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		defer gz.Close()
		r = gz
	case compressionByteZstd:
		zr, err := zstd.NewReader(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("%w: неизвестный тип сжатия %d", ErrCorruptRecord, data[4])
	}

	return readFramed(bufio.NewReader(r))
}

func writeFramed(w io.Writer, records [][]byte) error {
	var lenBuf [binary.MaxVarintLen64]byte
	for _, rec := range records {
		n := binary.PutUvarint(lenBuf[:], uint64(len(rec)))
		if _, err := w.Write(lenBuf[:n]); err != nil {
			return fmt.Errorf("ошибка записи длины записи: %w", err)
		}
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("ошибка записи данных: %w", err)
		}
	}
	return nil
}

func readFramed(r *bufio.Reader) ([][]byte, error) {
	var records [][]byte
	for {
		size, err := binary.ReadUvarint(r)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: длина записи: %v", ErrCorruptRecord, err)
		}
		if size > maxRecordSize {
			return nil, fmt.Errorf("%w: запись слишком велика (%d байт)", ErrCorruptRecord, size)
		}

		rec := make([]byte, size)
		if _, err := io.ReadFull(r, rec); err != nil {
			return nil, fmt.Errorf("%w: обрезанная запись: %v", ErrCorruptRecord, err)
		}
		records = append(records, rec)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
