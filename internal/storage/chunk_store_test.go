package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
)

// все бэкенды должны вести себя одинаково
func openStores(t *testing.T) map[string]ChunkStore {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileChunkStore(filepath.Join(dir, "files"))
	require.NoError(t, err)
	badgerStore, err := NewBadgerChunkStore(filepath.Join(dir, "badger"))
	require.NoError(t, err)
	level, err := NewLevelDBChunkStore(filepath.Join(dir, "leveldb"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteChunkStore(filepath.Join(dir, "chunks.db"))
	require.NoError(t, err)

	stores := map[string]ChunkStore{
		BackendFile:    file,
		BackendBadger:  badgerStore,
		BackendLevelDB: level,
		BackendSQLite:  sqlite,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestChunkStores_ReadWriteList(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			a := vec.Vec4Int{X: -1, Y: 0, Z: 2, W: -30000}
			b := vec.Vec4Int{X: -1, Y: 0, Z: 2, W: 5}

			_, err := store.ReadChunk(a)
			assert.ErrorIs(t, err, ErrChunkNotFound)

			require.NoError(t, store.WriteChunk(b, []byte("first")))
			require.NoError(t, store.WriteChunk(a, []byte("second")))
			require.NoError(t, store.WriteChunk(b, []byte("overwritten")))

			data, err := store.ReadChunk(b)
			require.NoError(t, err)
			assert.Equal(t, []byte("overwritten"), data)

			list, err := store.ListChunks()
			require.NoError(t, err)
			assert.Equal(t, []vec.Vec4Int{a, b}, list, "отсортировано лексикографически")

			require.NoError(t, store.Close())
		})
	}
}

func TestLevelChunkKey_RoundTrip(t *testing.T) {
	for _, pos := range []vec.Vec4Int{{}, {X: -1, Y: 1, Z: -16, W: 1 << 20}, {X: 7, Y: -7, Z: 0, W: -1}} {
		got, ok := parseLevelChunkKey(levelChunkKey(pos))
		require.True(t, ok)
		assert.Equal(t, pos, got)
	}
	_, ok := parseLevelChunkKey([]byte("c123"))
	assert.False(t, ok)
}
