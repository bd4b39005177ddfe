package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/entity"
	"github.com/google/uuid"
)

// FormatVersion — версия формата сохранений
const FormatVersion = 1

// Бэкенды хранения чанков
const (
	BackendFile    = "file"
	BackendBadger  = "badger"
	BackendLevelDB = "leveldb"
	BackendSQLite  = "sqlite"

	badgerDirName  = "chunks.badger"
	levelDBDirName = "chunks.ldb"
	sqliteFileName = "chunks.db"
)

// WorldInfo — метаданные мира (world.dat)
type WorldInfo struct {
	Name         string `json:"name"`
	Seed         int64  `json:"seed"`
	UUID         string `json:"uuid"`
	CreatedAt    int64  `json:"created_at"`
	LastPlayed   int64  `json:"last_played"`
	NextEntityID uint64 `json:"next_entity_id"`
	Tick         uint64 `json:"tick"`
	Version      uint32 `json:"version"`

	Dir string `json:"dir"` // каталог мира, не сохраняется
}

// NewWorldInfo создаёт метаданные нового мира
func NewWorldInfo(name string, seed int64) *WorldInfo {
	now := time.Now().Unix()
	return &WorldInfo{
		Name:         name,
		Seed:         seed,
		UUID:         uuid.NewString(),
		CreatedAt:    now,
		LastPlayed:   now,
		NextEntityID: 1,
		Version:      FormatVersion,
	}
}

// Options — параметры менеджера сохранений
type Options struct {
	Backend     string
	Compression Compression
	Logger      *logging.Logger
}

// SaveManager отвечает за каталог одного мира
type SaveManager struct {
	root        string
	dir         string
	name        string
	compression Compression
	logger      *logging.Logger

	chunks ChunkStore
	loader *ChunkLoader

	mu sync.Mutex
}

// Create создаёт каталог нового мира; ErrWorldExists, если world.dat уже есть
func Create(root, worldName string, opts Options) (*SaveManager, error) {
	dir := filepath.Join(root, SanitizeWorldName(worldName))
	if _, err := os.Stat(filepath.Join(dir, WorldFileName)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorldExists, dir)
	}
	return Open(root, worldName, opts)
}

// Open открывает каталог мира, создавая его при необходимости
func Open(root, worldName string, opts Options) (*SaveManager, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Compression == "" {
		opts.Compression = CompressionGzip
	}
	if _, err := opts.Compression.headerByte(); err != nil {
		return nil, err
	}

	dir := filepath.Join(root, SanitizeWorldName(worldName))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог мира %s: %w", dir, err)
	}

	var (
		store ChunkStore
		err   error
	)
	switch opts.Backend {
	case "", BackendFile:
		store, err = NewFileChunkStore(filepath.Join(dir, ChunksDirName))
	case BackendBadger:
		store, err = NewBadgerChunkStore(filepath.Join(dir, badgerDirName))
	case BackendLevelDB:
		store, err = NewLevelDBChunkStore(filepath.Join(dir, levelDBDirName))
	case BackendSQLite:
		store, err = NewSQLiteChunkStore(filepath.Join(dir, sqliteFileName))
	default:
		err = fmt.Errorf("неизвестный бэкенд хранения: %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("Открыт каталог мира %s (бэкенд %s, сжатие %s)", dir, backendName(opts.Backend), opts.Compression)
	return &SaveManager{
		root:        root,
		dir:         dir,
		name:        worldName,
		compression: opts.Compression,
		logger:      opts.Logger,
		chunks:      store,
		loader:      NewChunkLoader(store, opts.Logger),
	}, nil
}

func backendName(b string) string {
	if b == "" {
		return BackendFile
	}
	return b
}

// Dir возвращает каталог мира
func (m *SaveManager) Dir() string { return m.dir }

// Root возвращает корень сохранений
func (m *SaveManager) Root() string { return m.root }

// Name возвращает исходное имя мира
func (m *SaveManager) Name() string { return m.name }

// Loader возвращает ленивый загрузчик чанков (world.ChunkSource)
func (m *SaveManager) Loader() *ChunkLoader { return m.loader }

// Store возвращает хранилище чанков
func (m *SaveManager) Store() ChunkStore { return m.chunks }

// Close закрывает хранилище чанков
func (m *SaveManager) Close() error {
	return m.chunks.Close()
}

// ---------------------------------------------------------------------------
// Метаданные мира

// SaveWorldInfo записывает world.dat, обновляя время последней игры
func (m *SaveManager) SaveWorldInfo(info *WorldInfo) error {
	info.LastPlayed = time.Now().Unix()
	if info.Version == 0 {
		info.Version = FormatVersion
	}
	return m.writeRecordFile(WorldFileName, encodeWorldInfo(info))
}

// LoadWorldInfo читает world.dat; ErrWorldNotFound, если мира нет
func (m *SaveManager) LoadWorldInfo() (*WorldInfo, error) {
	info, err := readWorldInfo(m.dir)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func readWorldInfo(dir string) (*WorldInfo, error) {
	rec, err := readRecordFile(filepath.Join(dir, WorldFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("чтение метаданных мира: %w", err)
	}
	info, err := decodeWorldInfo(rec)
	if err != nil {
		return nil, fmt.Errorf("чтение метаданных мира: %w", err)
	}
	info.Dir = dir
	return info, nil
}

// ---------------------------------------------------------------------------
// Игрок

// SavePlayer записывает player.dat
func (m *SaveManager) SavePlayer(p *entity.Player) error {
	return m.writeRecordFile(PlayerFileName, encodePlayer(p))
}

// LoadPlayer читает player.dat; ErrPlayerNotFound, если файла нет
func (m *SaveManager) LoadPlayer() (*entity.Player, error) {
	rec, err := readRecordFile(filepath.Join(m.dir, PlayerFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("чтение игрока: %w", err)
	}
	p, err := decodePlayer(rec)
	if err != nil {
		return nil, fmt.Errorf("чтение игрока: %w", err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Чанки

// SaveChunk кодирует и записывает один чанк. После успешной записи чанк
// помечается чистым, если с момента снимка он не менялся.
func (m *SaveManager) SaveChunk(c *world.Chunk) error {
	snap := c.Snapshot()
	// На диск попадает состояние после успешной записи: файл совпадает с чанком
	snap.Dirty = false
	data, err := EncodeRecords(m.compression, EncodeChunk(snap))
	if err != nil {
		return fmt.Errorf("кодирование чанка %v: %w", snap.Coords, err)
	}
	if err := m.chunks.WriteChunk(snap.Coords, data); err != nil {
		return fmt.Errorf("запись чанка %v: %w", snap.Coords, err)
	}
	m.loader.Invalidate(snap.Coords)
	c.MarkCleanAt(snap.Version)
	return nil
}

// SaveDirtyChunks сохраняет только изменённые чанки. Каждый чанк пишется
// независимо; ошибки собираются, остальные файлы не затрагиваются.
// Чанки, сгенерированные из-за ошибки загрузки, пропускаются.
func (m *SaveManager) SaveDirtyChunks(w *world.World) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		saved int
		errs  []error
	)
	for _, c := range w.DirtyChunks() {
		if w.IsLoadFailed(c.Coords) {
			m.logger.Warn("Чанк %v не был загружен, сохранение пропущено", c.Coords)
			continue
		}
		if err := m.SaveChunk(c); err != nil {
			m.logger.Error("Ошибка сохранения чанка %v: %v", c.Coords, err)
			errs = append(errs, err)
			continue
		}
		saved++
	}

	if saved > 0 {
		m.logger.Debug("Сохранено чанков: %d", saved)
	}
	return saved, errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Файлы с записями

func (m *SaveManager) writeRecordFile(name string, rec []byte) error {
	data, err := EncodeRecords(m.compression, [][]byte{rec})
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(m.dir, name), data)
}

func readRecordFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: файл %s пуст", ErrCorruptRecord, path)
	}
	return records[0], nil
}

// ListWorlds перечисляет миры в корне сохранений, от последних сыгранных.
// Каталоги без читаемого world.dat пропускаются.
func ListWorlds(root string, logger *logging.Logger) ([]*WorldInfo, error) {
	if logger == nil {
		logger = logging.Default()
	}

	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога сохранений: %w", err)
	}

	var worlds []*WorldInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := readWorldInfo(filepath.Join(root, entry.Name()))
		if errors.Is(err, ErrWorldNotFound) {
			continue
		}
		if err != nil {
			logger.Warn("Пропущен мир %s: %v", entry.Name(), err)
			continue
		}
		worlds = append(worlds, info)
	}

	sort.Slice(worlds, func(i, j int) bool {
		if worlds[i].LastPlayed != worlds[j].LastPlayed {
			return worlds[i].LastPlayed > worlds[j].LastPlayed
		}
		return worlds[i].Name < worlds[j].Name
	})
	return worlds, nil
}
