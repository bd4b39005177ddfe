package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
)

// countingStore — хранилище в памяти со счётчиком чтений и подставными ошибками
type countingStore struct {
	data  map[vec.Vec4Int][]byte
	errs  map[vec.Vec4Int]error
	reads int
}

func newCountingStore() *countingStore {
	return &countingStore{data: make(map[vec.Vec4Int][]byte), errs: make(map[vec.Vec4Int]error)}
}

func (s *countingStore) ReadChunk(pos vec.Vec4Int) ([]byte, error) {
	s.reads++
	if err, ok := s.errs[pos]; ok {
		return nil, err
	}
	data, ok := s.data[pos]
	if !ok {
		return nil, ErrChunkNotFound
	}
	return data, nil
}

func (s *countingStore) WriteChunk(pos vec.Vec4Int, data []byte) error {
	s.data[pos] = data
	return nil
}

func (s *countingStore) ListChunks() ([]vec.Vec4Int, error) { return nil, nil }
func (s *countingStore) Close() error                       { return nil }

func encodedChunk(t *testing.T, pos vec.Vec4Int, fill block.BlockID) []byte {
	t.Helper()
	c := world.NewChunk(pos)
	c.Fill(fill)
	data, err := EncodeRecords(CompressionGzip, EncodeChunk(c.Snapshot()))
	require.NoError(t, err)
	return data
}

func TestChunkLoader_CachesMissing(t *testing.T) {
	store := newCountingStore()
	loader := NewChunkLoader(store, quietLogger())
	pos := vec.Vec4Int{X: 1}

	c, found, err := loader.LoadChunk(pos)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, c)
	assert.True(t, loader.KnownMissing(pos))

	_, found, err = loader.LoadChunk(pos)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, store.reads, "повторное обращение без ввода-вывода")
	assert.Equal(t, uint64(1), loader.Stats().CacheHits)

	// После записи кэш сбрасывается
	store.data[pos] = encodedChunk(t, pos, block.DirtBlockID)
	loader.Invalidate(pos)
	c, found, err = loader.LoadChunk(pos)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, block.DirtBlockID, c.GetBlock(vec.Vec4Int{}))
	assert.Equal(t, 2, store.reads)
}

func TestChunkLoader_TransientErrorNotCached(t *testing.T) {
	store := newCountingStore()
	loader := NewChunkLoader(store, quietLogger())
	pos := vec.Vec4Int{Z: -4}
	ioErr := errors.New("диск недоступен")
	store.errs[pos] = ioErr

	_, found, err := loader.LoadChunk(pos)
	assert.ErrorIs(t, err, ioErr)
	assert.False(t, found)
	assert.False(t, loader.KnownMissing(pos))

	delete(store.errs, pos)
	store.data[pos] = encodedChunk(t, pos, block.StoneBlockID)
	_, found, err = loader.LoadChunk(pos)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint64(1), loader.Stats().Failed)
}

func TestChunkLoader_CorruptTreatedAsAbsent(t *testing.T) {
	store := newCountingStore()
	loader := NewChunkLoader(store, quietLogger())
	pos := vec.Vec4Int{W: 3}
	store.data[pos] = []byte("мусор")

	c, found, err := loader.LoadChunk(pos)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, c)
	assert.False(t, loader.KnownMissing(pos), "повреждённый чанк не кэшируется")
	assert.Equal(t, uint64(1), loader.Stats().Corrupt)

	_, _, _ = loader.LoadChunk(pos)
	assert.Equal(t, 2, store.reads)
}

func TestChunkLoader_WorldGetsErrorAndRegenerates(t *testing.T) {
	store := newCountingStore()
	pos := vec.Vec4Int{X: 2}
	store.errs[pos] = errors.New("EIO")
	w := world.NewWorld("io", 1, world.WithChunkSource(NewChunkLoader(store, quietLogger())), world.WithLogger(quietLogger()))

	_, err := w.LoadChunk(pos)
	require.Error(t, err)

	c := w.GetChunk(pos)
	require.NotNil(t, c)
	assert.True(t, w.IsLoadFailed(pos))
}
