package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/metrics"
	"github.com/annel0/voxel4d/internal/observability"
	"github.com/annel0/voxel4d/internal/storage"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/block/implementations"
	"github.com/annel0/voxel4d/internal/world/entity"
)

// Ошибки действий игрока
var (
	ErrOutOfReach      = errors.New("блок вне досягаемости")
	ErrEmptySlot       = errors.New("выбранный слот пуст")
	ErrSmelterRejected = errors.New("плавильня не принимает предмет")
)

// SpawnPosition — точка появления нового игрока (на траве плоского мира)
var SpawnPosition = vec.Vec4{X: 0.5, Y: 1, Z: 0.5, W: 0.5}

// Option настраивает сессию
type Option func(*Session)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithEventListener подписывает обработчик на события мира
func WithEventListener(fn world.EventListener) Option {
	return func(s *Session) { s.listeners = append(s.listeners, fn) }
}

// WithLogger задаёт логгер сессии и мира
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithStorageLogger задаёт отдельный логгер для сохранений
func WithStorageLogger(l *logging.Logger) Option {
	return func(s *Session) { s.storageLogger = l }
}

// Session владеет миром, сохранениями и локальным игроком.
// Все изменения мира идут через мьютекс сессии: один писатель за тик.
type Session struct {
	cfg     *config.Config
	world   *world.World
	saves   *storage.SaveManager
	info    *storage.WorldInfo
	player  *entity.Player
	metrics *metrics.Metrics
	logger  *logging.Logger

	storageLogger *logging.Logger
	listeners     []world.EventListener

	tick    uint64
	created bool
	mu      sync.Mutex
}

// Open открывает мир worldName (создавая его при необходимости) и загружает игрока
func Open(cfg *config.Config, worldName, username string, opts ...Option) (*Session, error) {
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.storageLogger == nil {
		s.storageLogger = s.logger
	}

	compression, err := storage.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return nil, err
	}

	saves, err := storage.Open(cfg.Storage.GetSavesDir(), worldName, storage.Options{
		Backend:     cfg.Storage.Backend,
		Compression: compression,
		Logger:      s.storageLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("открытие мира %q: %w", worldName, err)
	}
	s.saves = saves

	info, err := saves.LoadWorldInfo()
	switch {
	case errors.Is(err, storage.ErrWorldNotFound):
		info = storage.NewWorldInfo(worldName, cfg.World.Seed)
		s.created = true
	case err != nil:
		saves.Close()
		return nil, err
	}
	s.info = info
	s.tick = info.Tick

	worldOpts := []world.Option{
		world.WithChunkSource(saves.Loader()),
		world.WithLiquidInterval(uint64(cfg.World.LiquidInterval)),
		world.WithLogger(s.logger),
	}
	if s.metrics != nil {
		worldOpts = append(worldOpts, world.WithEventListener(s.metrics.OnWorldEvent))
	}
	for _, fn := range s.listeners {
		worldOpts = append(worldOpts, world.WithEventListener(fn))
	}
	s.world = world.NewWorld(info.Name, info.Seed, worldOpts...)
	s.world.RestoreNextEntityID(info.NextEntityID)

	s.player = s.loadPlayer(username)

	if s.created {
		if err := saves.SaveWorldInfo(info); err != nil {
			saves.Close()
			return nil, fmt.Errorf("создание мира %q: %w", worldName, err)
		}
		s.logger.Info("🌍 Создан новый мир %q (seed=%d, uuid=%s)", info.Name, info.Seed, info.UUID)
	} else {
		s.logger.Info("🌍 Загружен мир %q (тик %d)", info.Name, info.Tick)
	}
	return s, nil
}

// loadPlayer восстанавливает игрока; повреждённый файл заменяется новым игроком
func (s *Session) loadPlayer(username string) *entity.Player {
	p, err := s.saves.LoadPlayer()
	switch {
	case err == nil:
		if s.world.AddPlayer(p) {
			s.logger.Info("Игрок %s загружен (ID %d)", p.Username, p.ID)
			return p
		}
		s.logger.Warn("Игрок %s не может быть добавлен, создаём нового", p.Username)
	case errors.Is(err, storage.ErrPlayerNotFound):
	default:
		s.logger.Error("Не удалось загрузить игрока, создаём нового: %v", err)
	}
	return s.world.CreatePlayer(username, SpawnPosition)
}

// World возвращает мир (для чтения вне тика нужна блокировка сессии)
func (s *Session) World() *world.World { return s.world }

// Player возвращает локального игрока
func (s *Session) Player() *entity.Player { return s.player }

// Info возвращает метаданные мира
func (s *Session) Info() storage.WorldInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.info
}

// Created сообщает, был ли мир создан при открытии
func (s *Session) Created() bool { return s.created }

// CurrentTick возвращает номер последнего тика
func (s *Session) CurrentTick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// SetInput задаёт ввод игрока для следующих тиков
func (s *Session) SetInput(in entity.Input) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.player.Input = in
}

// SelectSlot выбирает слот хотбара
func (s *Session) SelectSlot(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.Select(slot)
}

// TickResult — итоги одного тика
type TickResult struct {
	Tick          uint64
	LiquidUpdates int
	BlockTicks    int
	Collected     []block.ItemStack
}

// Tick продвигает симуляцию на dt секунд
func (s *Session) Tick(dt float64) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.tick++

	entity.StepPlayer(s.world, s.player, dt)
	s.world.Update(dt)

	res := TickResult{Tick: s.tick}
	res.Collected = s.world.CollectItems(s.player)
	res.LiquidUpdates = s.world.UpdateLiquids(s.tick)
	res.BlockTicks = s.world.TickBlocks(s.tick)

	if s.metrics != nil {
		s.metrics.ObserveTick(time.Since(start), res.LiquidUpdates, res.BlockTicks)
		s.metrics.UpdateWorld(s.world.Info())
	}
	return res
}

// PlaceBlock ставит материал из выбранного слота хотбара
func (s *Session) PlaceBlock(pos vec.Vec4Int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	stack := s.player.SelectedStack()
	if stack.IsEmpty() {
		return false
	}
	return entity.PlaceBlock(s.world, s.player, pos, stack.ID)
}

// BreakBlock разрушает блок выбранным инструментом
func (s *Session) BreakBlock(pos vec.Vec4Int) ([]block.ItemStack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return entity.BreakBlock(s.world, s.player, pos)
}

// SmelterInsert перекладывает выбранный стак игрока в слот плавильни.
// Возвращает число перемещённых предметов.
func (s *Session) SmelterInsert(pos vec.Vec4Int, slot implementations.SmelterSlot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !entity.InReach(s.player, pos) {
		return 0, ErrOutOfReach
	}
	stack := s.player.SelectedStack()
	if stack.IsEmpty() {
		return 0, ErrEmptySlot
	}

	rest, err := s.world.SmelterInsert(pos, slot, *stack)
	if err != nil {
		return 0, err
	}
	moved := stack.Count - rest.Count
	if moved == 0 {
		return 0, fmt.Errorf("%w: %s в слот %s", ErrSmelterRejected, stack.Name(), slot)
	}
	*stack = rest
	return moved, nil
}

// SmelterTake забирает результат переплавки в инвентарь.
// Не поместившееся выпадает у плавильни.
func (s *Session) SmelterTake(pos vec.Vec4Int) (block.ItemStack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !entity.InReach(s.player, pos) {
		return block.ItemStack{}, ErrOutOfReach
	}
	out, err := s.world.SmelterTake(pos)
	if err != nil || out.IsEmpty() {
		return out, err
	}
	if rest := s.player.Inventory.Add(out); !rest.IsEmpty() {
		s.world.DropItems(pos, []block.ItemStack{rest})
	}
	return out, nil
}

// Save записывает метаданные, игрока и изменённые чанки, затем выгружает
// дальние чистые чанки. Ошибки отдельных частей собираются вместе.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	_, span := observability.StartSpan(ctx, "world.save", attribute.String("world", s.info.Name))

	s.info.NextEntityID = s.world.NextEntityID()
	s.info.Tick = s.tick

	var errs []error
	if err := s.saves.SaveWorldInfo(s.info); err != nil {
		errs = append(errs, fmt.Errorf("метаданные мира: %w", err))
	}
	if err := s.saves.SavePlayer(s.player); err != nil {
		errs = append(errs, fmt.Errorf("игрок: %w", err))
	}
	saved, err := s.saves.SaveDirtyChunks(s.world)
	if err != nil {
		errs = append(errs, err)
	}

	evicted := s.world.EvictDistant([]vec.Vec4Int{s.player.ChunkPos()}, s.cfg.World.RetentionRadius)

	err = errors.Join(errs...)
	span.SetAttributes(attribute.Int("chunks_saved", saved), attribute.Int("chunks_evicted", evicted))
	observability.EndSpan(span, err)
	if s.metrics != nil {
		s.metrics.ObserveSave(time.Since(start), saved, err)
		s.metrics.UpdateWorld(s.world.Info())
	}

	if err != nil {
		s.logger.Error("💾 Сохранение мира %q завершилось с ошибками: %v", s.info.Name, err)
		return err
	}
	s.logger.Debug("💾 Мир %q сохранён: чанков %d, выгружено %d", s.info.Name, saved, evicted)
	return nil
}

// Run крутит цикл тиков с фиксированным шагом и автосохранением.
// При отмене контекста выполняется финальное сохранение.
func (s *Session) Run(ctx context.Context) error {
	interval := s.cfg.World.TickInterval()
	dt := interval.Seconds()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var autosave <-chan time.Time
	if every := s.cfg.World.AutosaveInterval(); every > 0 {
		t := time.NewTicker(every)
		defer t.Stop()
		autosave = t.C
	}

	s.logger.Info("▶ Цикл симуляции запущен: %d тиков/с", s.cfg.World.TickRate)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("⏹ Остановка цикла симуляции, финальное сохранение...")
			return s.Save(context.Background())
		case <-ticker.C:
			s.Tick(dt)
		case <-autosave:
			if err := s.Save(ctx); err != nil {
				s.logger.Warn("Автосохранение не удалось: %v", err)
			}
		}
	}
}

// Close закрывает хранилище. Сохранение не выполняется.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves.Close()
}
