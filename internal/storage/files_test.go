package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
)

func TestSanitizeWorldName(t *testing.T) {
	tests := map[string]string{
		"":              "world",
		"My World":      "My_World",
		"../../etc":     "______etc",
		"ok-name_1":     "ok-name_1",
		"мир":           "___",
		"a/b\\c:d*e?f|": "a_b_c_d_e_f_",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeWorldName(in), "вход %q", in)
	}
}

func TestChunkFileName_RoundTrip(t *testing.T) {
	for _, pos := range []vec.Vec4Int{
		{},
		{X: -1, Y: 2, Z: -300, W: 4},
		{X: 1 << 20, Y: -(1 << 20), Z: 7, W: -7},
	} {
		name := ChunkFileName(pos)
		assert.Equal(t, pos, ParseChunkFileName(name))
	}
	assert.Equal(t, "chunk_-1_0_2_-3", ChunkFileName(vec.Vec4Int{X: -1, Z: 2, W: -3}))
}

func TestParseChunkFileName_Malformed(t *testing.T) {
	for _, name := range []string{"chunk_1_2_3", "chunk_a_b_c_d", "world.dat", "chunk_1_2_3_4_5", "chunk_1_2_3_4.tmp-123"} {
		_, ok := TryParseChunkFileName(name)
		assert.False(t, ok, name)
		assert.Panics(t, func() { ParseChunkFileName(name) }, name)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.dat")

	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "временные файлы не остаются")

	assert.Error(t, writeFileAtomic(filepath.Join(dir, "missing", "x.dat"), []byte("x")))
}

func TestFileChunkStore_ListIgnoresForeignFiles(t *testing.T) {
	store, err := NewFileChunkStore(filepath.Join(t.TempDir(), ChunksDirName))
	require.NoError(t, err)

	require.NoError(t, store.WriteChunk(vec.Vec4Int{X: 1}, []byte("a")))
	require.NoError(t, store.WriteChunk(vec.Vec4Int{X: -1, W: 2}, []byte("b")))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0644))

	list, err := store.ListChunks()
	require.NoError(t, err)
	assert.Equal(t, []vec.Vec4Int{{X: -1, W: 2}, {X: 1}}, list)

	_, err = store.ReadChunk(vec.Vec4Int{Y: 9})
	assert.ErrorIs(t, err, ErrChunkNotFound)
}
