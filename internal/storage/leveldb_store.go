package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/util"

	"github.com/annel0/voxel4d/internal/vec"
)

// ключ LevelDB: префикс 'c' и четыре координаты int32 little-endian
const (
	levelChunkPrefix = 'c'
	levelKeyLen      = 1 + 4*4
)

// LevelDBChunkStore хранит чанки в LevelDB (каталог chunks.ldb)
type LevelDBChunkStore struct {
	db     *leveldb.DB
	mu     sync.RWMutex
	closed bool
}

// NewLevelDBChunkStore открывает (или создаёт) базу чанков.
// Данные уже сжаты потоком записей, поэтому сжатие LevelDB выключено.
func NewLevelDBChunkStore(dir string) (*LevelDBChunkStore, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.NoCompression})
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть LevelDB %s: %w", dir, err)
	}
	return &LevelDBChunkStore{db: db}, nil
}

func levelChunkKey(pos vec.Vec4Int) []byte {
	key := make([]byte, levelKeyLen)
	key[0] = levelChunkPrefix
	binary.LittleEndian.PutUint32(key[1:], uint32(int32(pos.X)))
	binary.LittleEndian.PutUint32(key[5:], uint32(int32(pos.Y)))
	binary.LittleEndian.PutUint32(key[9:], uint32(int32(pos.Z)))
	binary.LittleEndian.PutUint32(key[13:], uint32(int32(pos.W)))
	return key
}

func parseLevelChunkKey(key []byte) (vec.Vec4Int, bool) {
	if len(key) != levelKeyLen || key[0] != levelChunkPrefix {
		return vec.Vec4Int{}, false
	}
	return vec.Vec4Int{
		X: int(int32(binary.LittleEndian.Uint32(key[1:]))),
		Y: int(int32(binary.LittleEndian.Uint32(key[5:]))),
		Z: int(int32(binary.LittleEndian.Uint32(key[9:]))),
		W: int(int32(binary.LittleEndian.Uint32(key[13:]))),
	}, true
}

// ReadChunk читает данные чанка
func (s *LevelDBChunkStore) ReadChunk(pos vec.Vec4Int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	data, err := s.db.Get(levelChunkKey(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из LevelDB: %w", err)
	}
	return data, nil
}

// WriteChunk сохраняет данные чанка с синхронизацией журнала
func (s *LevelDBChunkStore) WriteChunk(pos vec.Vec4Int, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := s.db.Put(levelChunkKey(pos), data, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("ошибка сохранения в LevelDB: %w", err)
	}
	return nil
}

// ListChunks перечисляет координаты сохранённых чанков
func (s *LevelDBChunkStore) ListChunks() ([]vec.Vec4Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	it := s.db.NewIterator(util.BytesPrefix([]byte{levelChunkPrefix}), nil)
	defer it.Release()

	var result []vec.Vec4Int
	for it.Next() {
		if pos, ok := parseLevelChunkKey(it.Key()); ok {
			result = append(result, pos)
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("ошибка обхода LevelDB: %w", err)
	}
	sortPositions(result)
	return result, nil
}

// Close закрывает базу; повторный вызов ничего не делает
func (s *LevelDBChunkStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
