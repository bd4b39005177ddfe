package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/annel0/voxel4d/internal/vec"
)

// ChunkStore — хранилище закодированных чанков.
// Данные чанка — уже готовый поток записей (EncodeRecords).
type ChunkStore interface {
	// ReadChunk возвращает ErrChunkNotFound, если чанк не сохранялся
	ReadChunk(pos vec.Vec4Int) ([]byte, error)
	WriteChunk(pos vec.Vec4Int, data []byte) error
	ListChunks() ([]vec.Vec4Int, error)
	Close() error
}

// FileChunkStore хранит каждый чанк в отдельном файле каталога chunks/
type FileChunkStore struct {
	dir string
}

// NewFileChunkStore создаёт каталог чанков при необходимости
func NewFileChunkStore(dir string) (*FileChunkStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог чанков %s: %w", dir, err)
	}
	return &FileChunkStore{dir: dir}, nil
}

// Dir возвращает каталог чанков
func (s *FileChunkStore) Dir() string { return s.dir }

func (s *FileChunkStore) path(pos vec.Vec4Int) string {
	return filepath.Join(s.dir, ChunkFileName(pos))
}

// ReadChunk читает файл чанка
func (s *FileChunkStore) ReadChunk(pos vec.Vec4Int) ([]byte, error) {
	data, err := os.ReadFile(s.path(pos))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения чанка %v: %w", pos, err)
	}
	return data, nil
}

// WriteChunk атомарно перезаписывает файл чанка
func (s *FileChunkStore) WriteChunk(pos vec.Vec4Int, data []byte) error {
	return writeFileAtomic(s.path(pos), data)
}

// ListChunks перечисляет сохранённые чанки; посторонние файлы игнорируются
func (s *FileChunkStore) ListChunks() ([]vec.Vec4Int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога чанков: %w", err)
	}

	var result []vec.Vec4Int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pos, ok := TryParseChunkFileName(entry.Name()); ok {
			result = append(result, pos)
		}
	}
	sortPositions(result)
	return result, nil
}

// Close ничего не делает: файлы закрываются после каждой операции
func (s *FileChunkStore) Close() error { return nil }

func sortPositions(ps []vec.Vec4Int) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.W < b.W
	})
}
