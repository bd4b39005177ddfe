package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
)

// LoaderStats — счётчики обращений загрузчика
type LoaderStats struct {
	Loaded    uint64 `json:"loaded"`
	Missing   uint64 `json:"missing"`
	CacheHits uint64 `json:"cache_hits"`
	Corrupt   uint64 `json:"corrupt"`
	Failed    uint64 `json:"failed"`
}

// ChunkLoader лениво читает чанки из хранилища.
// Отсутствие чанка кэшируется; ошибки ввода-вывода не кэшируются никогда.
type ChunkLoader struct {
	store  ChunkStore
	logger *logging.Logger

	mu      sync.Mutex
	missing map[vec.Vec4Int]struct{}
	stats   LoaderStats
}

var _ world.ChunkSource = (*ChunkLoader)(nil)

// NewChunkLoader создаёт загрузчик поверх хранилища
func NewChunkLoader(store ChunkStore, logger *logging.Logger) *ChunkLoader {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChunkLoader{
		store:   store,
		logger:  logger,
		missing: make(map[vec.Vec4Int]struct{}),
	}
}

// LoadChunk реализует world.ChunkSource.
// (nil, false, nil) — чанка нет, его нужно сгенерировать.
func (l *ChunkLoader) LoadChunk(pos vec.Vec4Int) (*world.Chunk, bool, error) {
	l.mu.Lock()
	if _, known := l.missing[pos]; known {
		l.stats.CacheHits++
		l.mu.Unlock()
		return nil, false, nil
	}
	l.mu.Unlock()

	data, err := l.store.ReadChunk(pos)
	if errors.Is(err, ErrChunkNotFound) {
		l.mu.Lock()
		l.missing[pos] = struct{}{}
		l.stats.Missing++
		l.mu.Unlock()
		return nil, false, nil
	}
	if err != nil {
		l.count(func(s *LoaderStats) { s.Failed++ })
		return nil, false, fmt.Errorf("загрузка чанка %v: %w", pos, err)
	}

	chunk, err := l.decode(pos, data)
	if err != nil {
		// Повреждённый файл пропускается; при следующем обращении прочитаем заново
		l.count(func(s *LoaderStats) { s.Corrupt++ })
		l.logger.Warn("Чанк %v повреждён и будет сгенерирован заново: %v", pos, err)
		return nil, false, nil
	}

	l.count(func(s *LoaderStats) { s.Loaded++ })
	l.logger.Trace("Чанк %v загружен", pos)
	return chunk, true, nil
}

func (l *ChunkLoader) decode(pos vec.Vec4Int, data []byte) (*world.Chunk, error) {
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	chunk, err := DecodeChunk(records, l.logger)
	if err != nil {
		return nil, err
	}
	if chunk.Coords != pos {
		l.logger.Warn("Файл чанка %v содержит координаты %v", pos, chunk.Coords)
	}
	return chunk, nil
}

// Invalidate сбрасывает кэш для координаты (вызывается после каждой записи)
func (l *ChunkLoader) Invalidate(pos vec.Vec4Int) {
	l.mu.Lock()
	delete(l.missing, pos)
	l.mu.Unlock()
}

// KnownMissing сообщает, закэшировано ли отсутствие чанка
func (l *ChunkLoader) KnownMissing(pos vec.Vec4Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, known := l.missing[pos]
	return known
}

// Stats возвращает копию счётчиков
func (l *ChunkLoader) Stats() LoaderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *ChunkLoader) count(fn func(s *LoaderStats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}
