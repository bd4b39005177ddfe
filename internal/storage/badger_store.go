package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/dgraph-io/badger/v3"
)

const badgerChunkPrefix = "chunk:"

// BadgerChunkStore хранит чанки в BadgerDB под ключами chunk:x:y:z:w
type BadgerChunkStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerChunkStore открывает (или создаёт) базу чанков
func NewBadgerChunkStore(dbPath string) (*BadgerChunkStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &BadgerChunkStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

func badgerChunkKey(pos vec.Vec4Int) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%d:%d", badgerChunkPrefix, pos.X, pos.Y, pos.Z, pos.W))
}

// Close закрывает базу
func (s *BadgerChunkStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}

	s.isReady = false
	return s.db.Close()
}

// ReadChunk читает данные чанка
func (s *BadgerChunkStore) ReadChunk(pos vec.Vec4Int) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, ErrStoreClosed
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerChunkKey(pos))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return data, nil
}

// WriteChunk сохраняет данные чанка одной транзакцией
func (s *BadgerChunkStore) WriteChunk(pos vec.Vec4Int, data []byte) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrStoreClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerChunkKey(pos), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// ListChunks перечисляет ключи чанков
func (s *BadgerChunkStore) ListChunks() ([]vec.Vec4Int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, ErrStoreClosed
	}

	var result []vec.Vec4Int
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerChunkPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			var pos vec.Vec4Int
			rest := strings.TrimPrefix(key, badgerChunkPrefix)
			if _, err := fmt.Sscanf(rest, "%d:%d:%d:%d", &pos.X, &pos.Y, &pos.Z, &pos.W); err != nil {
				continue
			}
			result = append(result, pos)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода BadgerDB: %w", err)
	}
	sortPositions(result)
	return result, nil
}
