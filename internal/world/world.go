package world

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	_ "github.com/annel0/voxel4d/internal/world/block/implementations"
	"github.com/annel0/voxel4d/internal/world/entity"
)

const (
	// DefaultLiquidInterval — минимальный интервал между обновлениями жидкой клетки в тиках
	DefaultLiquidInterval = 5
	// PickupRadius — радиус подбора выпавших предметов
	PickupRadius = 1.5
	// ItemDespawnAge — время жизни выпавшего предмета в секундах
	ItemDespawnAge = 300.0
)

// ErrEntityNotFound возвращается при обращении к несуществующей сущности
var ErrEntityNotFound = errors.New("сущность не найдена")

// ChunkSource загружает сохранённые чанки.
// (nil, false, nil) означает, что сохранения нет и чанк нужно сгенерировать.
type ChunkSource interface {
	LoadChunk(pos vec.Vec4Int) (*Chunk, bool, error)
}

// Option настраивает мир при создании
type Option func(*World)

// WithChunkSource подключает загрузчик сохранённых чанков
func WithChunkSource(src ChunkSource) Option {
	return func(w *World) { w.source = src }
}

// WithGenerator заменяет генератор новых чанков
func WithGenerator(g Generator) Option {
	return func(w *World) { w.generator = g }
}

// WithLiquidInterval задаёт интервал обновления жидкостей в тиках
func WithLiquidInterval(ticks uint64) Option {
	return func(w *World) {
		if ticks > 0 {
			w.liquidInterval = ticks
		}
	}
}

// WithRandom задаёт генератор случайных чисел (дроп, листва)
func WithRandom(rng *rand.Rand) Option {
	return func(w *World) { w.rng = rng }
}

// WithLogger задаёт логгер мира
func WithLogger(l *logging.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithEventListener подписывает обработчик на события мира
func WithEventListener(fn EventListener) Option {
	return func(w *World) { w.listeners = append(w.listeners, fn) }
}

// World хранит загруженные чанки и сущности.
// Таблица сущностей авторитетна; индексы в чанках производные.
type World struct {
	name string
	seed int64

	chunks       map[vec.Vec4Int]*Chunk
	loadFailed   map[vec.Vec4Int]struct{} // чанки, чьё сохранение не прочиталось
	entityChunks map[uint64]vec.Vec4Int   // в индексе какого чанка лежит сущность
	mu           sync.RWMutex

	entities *entity.Manager

	source         ChunkSource
	generator      Generator
	liquidInterval uint64
	rng            *rand.Rand
	logger         *logging.Logger
	listeners      []EventListener
	tick           uint64

	api *blockAPI
}

// NewWorld создаёт мир с указанным именем и сидом
func NewWorld(name string, seed int64, opts ...Option) *World {
	w := &World{
		name:           name,
		seed:           seed,
		chunks:         make(map[vec.Vec4Int]*Chunk),
		loadFailed:     make(map[vec.Vec4Int]struct{}),
		entityChunks:   make(map[uint64]vec.Vec4Int),
		entities:       entity.NewManager(),
		generator:      NewFlatGenerator(),
		liquidInterval: DefaultLiquidInterval,
		logger:         logging.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewSource(seed))
	}
	w.api = &blockAPI{world: w}
	return w
}

// Name возвращает имя мира
func (w *World) Name() string { return w.name }

// Seed возвращает сид мира
func (w *World) Seed() int64 { return w.seed }

// CurrentTick возвращает последний обработанный тик
func (w *World) CurrentTick() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

// BlockAPI возвращает API для поведений блоков
func (w *World) BlockAPI() block.BlockAPI { return w.api }

// ---------------------------------------------------------------------------
// Чанки

// PeekChunk возвращает чанк, только если он уже загружен
func (w *World) PeekChunk(pos vec.Vec4Int) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.chunks[pos]
	return c, ok
}

// GetChunk возвращает чанк, при необходимости загружая или генерируя его.
// Ошибка загрузки логируется, чанк генерируется заново и запоминается как
// незагруженный, чтобы сохранение не перезаписало нечитаемый файл.
func (w *World) GetChunk(pos vec.Vec4Int) *Chunk {
	if c, ok := w.PeekChunk(pos); ok {
		return c
	}

	c, err := w.LoadChunk(pos)
	if err == nil {
		return c
	}

	w.logger.Error("Не удалось загрузить чанк %s, генерируем заново: %v", pos, err)
	w.mu.Lock()
	w.loadFailed[pos] = struct{}{}
	w.mu.Unlock()
	return w.generate(pos)
}

// LoadChunk загружает чанк из источника или генерирует его.
// В отличие от GetChunk ошибки источника возвращаются вызывающему.
func (w *World) LoadChunk(pos vec.Vec4Int) (*Chunk, error) {
	if c, ok := w.PeekChunk(pos); ok {
		return c, nil
	}

	if w.source != nil {
		c, found, err := w.source.LoadChunk(pos)
		if err != nil {
			return nil, fmt.Errorf("загрузка чанка %s: %w", pos, err)
		}
		if found {
			if c.Coords != pos {
				w.logger.Warn("Чанк %s сохранён с координатами %s, исправляем", pos, c.Coords)
				c.Coords = pos
			}
			w.mu.Lock()
			delete(w.loadFailed, pos)
			w.mu.Unlock()
			c = w.insert(c)
			w.emit(ChunkEvent{EventType: EventTypeChunkLoad, Coords: pos})
			return c, nil
		}
	}

	return w.generate(pos), nil
}

// IsLoadFailed проверяет, был ли чанк сгенерирован из-за ошибки загрузки
func (w *World) IsLoadFailed(pos vec.Vec4Int) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, failed := w.loadFailed[pos]
	return failed
}

// generate создаёт новый чистый чанк генератором
func (w *World) generate(pos vec.Vec4Int) *Chunk {
	c := NewChunk(pos)
	w.generator.Generate(c)
	c.MarkClean()
	c = w.insert(c)
	w.emit(ChunkEvent{EventType: EventTypeChunkGenerate, Coords: pos})
	return c
}

// insert регистрирует чанк и его сущности. Если чанк уже вставлен
// параллельно, возвращается существующий.
func (w *World) insert(c *Chunk) *Chunk {
	w.mu.Lock()
	if existing, ok := w.chunks[c.Coords]; ok {
		w.mu.Unlock()
		return existing
	}
	w.chunks[c.Coords] = c
	w.mu.Unlock()

	for _, e := range c.Entities() {
		if !w.entities.Add(e) {
			w.logger.Warn("Сущность %d из чанка %s уже существует, пропускаем", e.ID, c.Coords)
			c.RemoveEntity(e.ID)
			continue
		}
		w.mu.Lock()
		w.entityChunks[e.ID] = c.Coords
		w.mu.Unlock()
	}
	return c
}

// UnloadChunk выгружает чанк вместе с его сущностями.
// Несохранённые изменения теряются.
func (w *World) UnloadChunk(pos vec.Vec4Int) bool {
	w.mu.Lock()
	c, ok := w.chunks[pos]
	if !ok {
		w.mu.Unlock()
		return false
	}
	delete(w.chunks, pos)
	w.mu.Unlock()

	for _, e := range c.Entities() {
		w.entities.Remove(e.ID)
		w.mu.Lock()
		delete(w.entityChunks, e.ID)
		w.mu.Unlock()
	}

	w.emit(ChunkEvent{EventType: EventTypeChunkUnload, Coords: pos})
	return true
}

// EvictDistant выгружает чистые чанки дальше radius (по Чебышёву) от всех центров.
// Возвращает количество выгруженных чанков.
func (w *World) EvictDistant(centers []vec.Vec4Int, radius int) int {
	if len(centers) == 0 {
		return 0
	}

	var victims []vec.Vec4Int
	for _, c := range w.Chunks() {
		if c.IsDirty() {
			continue
		}
		far := true
		for _, center := range centers {
			if c.Coords.ChebyshevTo(center) <= radius {
				far = false
				break
			}
		}
		if far {
			victims = append(victims, c.Coords)
		}
	}

	for _, pos := range victims {
		w.UnloadChunk(pos)
	}
	if len(victims) > 0 {
		w.logger.Debug("Выгружено %d дальних чанков", len(victims))
	}
	return len(victims)
}

// Chunks возвращает загруженные чанки в детерминированном порядке
func (w *World) Chunks() []*Chunk {
	w.mu.RLock()
	result := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		result = append(result, c)
	}
	w.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return lessVec(result[i].Coords, result[j].Coords) })
	return result
}

// DirtyChunks возвращает изменённые чанки
func (w *World) DirtyChunks() []*Chunk {
	var result []*Chunk
	for _, c := range w.Chunks() {
		if c.IsDirty() {
			result = append(result, c)
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Блоки

// GetBlock возвращает материал в мировой позиции
func (w *World) GetBlock(pos vec.Vec4Int) block.BlockID {
	return w.GetChunk(pos.ToChunkCoords()).GetBlock(pos.LocalInChunk())
}

// GetBlockID — синоним GetBlock для entity.WorldView
func (w *World) GetBlockID(pos vec.Vec4Int) block.BlockID {
	return w.GetBlock(pos)
}

// SetBlock ставит материал с начальным состоянием и вызывает OnPlace.
// Незарегистрированные материалы отклоняются.
func (w *World) SetBlock(pos vec.Vec4Int, id block.BlockID) bool {
	behavior, ok := block.Get(id)
	if !ok {
		return false
	}

	w.setBlockRaw(pos, id)

	if state := behavior.CreateState(); state != nil {
		if liquid, ok := state.(*block.LiquidState); ok {
			liquid.LastUpdate = w.CurrentTick()
		}
		w.SetState(pos, state)
	}
	behavior.OnPlace(w.api, pos)
	return true
}

// setBlockRaw меняет материал без инициализации состояния
func (w *World) setBlockRaw(pos vec.Vec4Int, id block.BlockID) {
	c := w.GetChunk(pos.ToChunkCoords())
	local := pos.LocalInChunk()
	old := c.GetBlock(local)
	c.SetBlock(local, id)
	if old != id {
		w.emit(BlockEvent{Position: pos, Old: old, New: id})
	}
}

// GetState возвращает доп. состояние клетки
func (w *World) GetState(pos vec.Vec4Int) block.State {
	return w.GetChunk(pos.ToChunkCoords()).GetState(pos.LocalInChunk())
}

// SetState записывает доп. состояние клетки
func (w *World) SetState(pos vec.Vec4Int, state block.State) {
	w.GetChunk(pos.ToChunkCoords()).SetState(pos.LocalInChunk(), state)
}

// BreakBlock разрушает блок без инструмента и возвращает дроп.
// Сущности предметов не создаются.
func (w *World) BreakBlock(pos vec.Vec4Int) []block.ItemStack {
	return w.BreakBlockWith(pos, block.ItemStack{})
}

// BreakBlockWith разрушает блок инструментом и возвращает дроп
func (w *World) BreakBlockWith(pos vec.Vec4Int, tool block.ItemStack) []block.ItemStack {
	id := w.GetBlock(pos)
	if id == block.AirBlockID {
		return nil
	}

	var drops []block.ItemStack
	if behavior, ok := block.Get(id); ok {
		behavior.OnBreak(w.api, pos)
		drops = behavior.Drops(tool, w.rng)
	}
	w.setBlockRaw(pos, block.AirBlockID)
	return drops
}

// DropItems создаёт сущности предметов в центре клетки
func (w *World) DropItems(pos vec.Vec4Int, items []block.ItemStack) {
	for _, stack := range items {
		if !stack.IsEmpty() {
			w.SpawnItem(pos.Center(), stack)
		}
	}
}

// ---------------------------------------------------------------------------
// Сущности

// CreatePlayer создаёт игрока с новым ID
func (w *World) CreatePlayer(username string, pos vec.Vec4) *entity.Player {
	p := entity.NewPlayer(0, username, pos)
	w.AddPlayer(p)
	return p
}

// AddPlayer регистрирует игрока; игроки не попадают в индексы чанков
func (w *World) AddPlayer(p *entity.Player) bool {
	if !w.entities.AddPlayer(p) {
		return false
	}
	w.emit(EntityEvent{EventType: EventTypeEntitySpawn, EntityID: p.ID, EntityType: p.Type, Position: p.Position})
	return true
}

// SpawnItem создаёт сущность выпавшего стака
func (w *World) SpawnItem(pos vec.Vec4, stack block.ItemStack) *entity.Entity {
	e := entity.NewItemEntity(0, pos, stack)
	w.AddEntity(e)
	return e
}

// AddEntity регистрирует сущность; сущность без ID получает новый
func (w *World) AddEntity(e *entity.Entity) bool {
	if !w.entities.Add(e) {
		return false
	}
	if e.Type != entity.EntityTypePlayer {
		chunkPos := e.ChunkPos()
		w.GetChunk(chunkPos).AddEntity(e)
		w.mu.Lock()
		w.entityChunks[e.ID] = chunkPos
		w.mu.Unlock()
	}
	w.emit(EntityEvent{EventType: EventTypeEntitySpawn, EntityID: e.ID, EntityType: e.Type, Position: e.Position})
	return true
}

// RemoveEntity удаляет сущность из мира и из индекса её чанка
func (w *World) RemoveEntity(id uint64) (*entity.Entity, bool) {
	e, ok := w.entities.Remove(id)
	if !ok {
		return nil, false
	}

	w.mu.Lock()
	chunkPos, indexed := w.entityChunks[id]
	delete(w.entityChunks, id)
	c, loaded := w.chunks[chunkPos]
	w.mu.Unlock()

	if indexed && loaded {
		c.RemoveEntity(id)
	}
	w.emit(EntityEvent{EventType: EventTypeEntityDespawn, EntityID: e.ID, EntityType: e.Type, Position: e.Position})
	return e, true
}

// GetEntity возвращает сущность по ID
func (w *World) GetEntity(id uint64) (*entity.Entity, bool) {
	return w.entities.Get(id)
}

// LookupEntity возвращает сущность или ErrEntityNotFound
func (w *World) LookupEntity(id uint64) (*entity.Entity, error) {
	e, ok := w.entities.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	return e, nil
}

// GetPlayer возвращает игрока по ID
func (w *World) GetPlayer(id uint64) (*entity.Player, bool) {
	return w.entities.Player(id)
}

// Entities возвращает все сущности, отсортированные по ID
func (w *World) Entities() []*entity.Entity {
	return w.entities.All()
}

// Players возвращает всех игроков
func (w *World) Players() []*entity.Player {
	return w.entities.Players()
}

// NextEntityID возвращает ID, который получит следующая сущность
func (w *World) NextEntityID() uint64 {
	return w.entities.PeekNextID()
}

// RestoreNextEntityID поднимает счётчик ID до сохранённого значения
func (w *World) RestoreNextEntityID(next uint64) {
	w.entities.EnsureNextID(next)
}

// Update продвигает все сущности, кроме игроков, на dt секунд
func (w *World) Update(dt float64) {
	for _, e := range w.entities.All() {
		if e.Type == entity.EntityTypePlayer {
			continue
		}

		if e.Type == entity.EntityTypeItem && e.Age >= ItemDespawnAge {
			w.RemoveEntity(e.ID)
			continue
		}

		before := e.Position
		entity.Step(w, e, dt)
		if e.Position != before {
			w.reindex(e)
		}
	}
}

// reindex переносит сущность в индекс нового чанка и помечает чанки изменёнными
func (w *World) reindex(e *entity.Entity) {
	newPos := e.ChunkPos()

	w.mu.Lock()
	oldPos, indexed := w.entityChunks[e.ID]
	oldChunk, oldLoaded := w.chunks[oldPos]
	w.entityChunks[e.ID] = newPos
	w.mu.Unlock()

	if indexed && oldPos == newPos {
		if oldLoaded {
			oldChunk.MarkDirty()
		}
		return
	}
	if indexed && oldLoaded {
		oldChunk.RemoveEntity(e.ID)
	}
	w.GetChunk(newPos).AddEntity(e)
}

// CollectItems подбирает выпавшие предметы в радиусе PickupRadius от игрока
func (w *World) CollectItems(p *entity.Player) []block.ItemStack {
	var collected []block.ItemStack
	for _, e := range w.entities.All() {
		if e.Type != entity.EntityTypeItem || e.Item == nil {
			continue
		}
		if e.Position.DistanceTo(p.Position) > PickupRadius {
			continue
		}

		stack := *e.Item
		rest := p.Inventory.Add(stack)
		taken := stack.Count - rest.Count
		if taken <= 0 {
			continue
		}
		stack.Count = taken
		collected = append(collected, stack)

		if rest.IsEmpty() {
			w.RemoveEntity(e.ID)
		} else {
			e.Item.Count = rest.Count
			w.reindex(e)
		}
	}
	return collected
}

// ---------------------------------------------------------------------------
// Тикающие блоки

// UpdateLiquids обновляет жидкие клетки, чей интервал истёк.
// Номер тика передаётся снаружи. Возвращает количество изменившихся клеток.
func (w *World) UpdateLiquids(tick uint64) int {
	w.setTick(tick)

	changed := 0
	for _, pos := range w.tickablePositions(true) {
		id := w.GetBlock(pos)
		if !block.IsLiquid(id) {
			continue
		}
		if state, ok := w.GetState(pos).(*block.LiquidState); ok && !liquidDue(state, tick, w.liquidInterval) {
			continue
		}
		if block.MustGet(id).TickUpdate(w.api, pos, tick) {
			changed++
		}
	}
	return changed
}

// TickBlocks продвигает тикающие блоки, кроме жидкостей (плавильни)
func (w *World) TickBlocks(tick uint64) int {
	w.setTick(tick)

	changed := 0
	for _, pos := range w.tickablePositions(false) {
		id := w.GetBlock(pos)
		behavior, ok := block.Get(id)
		if !ok || !behavior.NeedsTick() || block.IsLiquid(id) {
			continue
		}
		if behavior.TickUpdate(w.api, pos, tick) {
			changed++
		}
	}
	return changed
}

func (w *World) setTick(tick uint64) {
	w.mu.Lock()
	w.tick = tick
	w.mu.Unlock()
}

// liquidDue проверяет троттлинг; тик меньше отметки (после перезапуска) считается истёкшим
func liquidDue(state *block.LiquidState, tick, interval uint64) bool {
	if tick < state.LastUpdate {
		return true
	}
	return tick-state.LastUpdate >= interval
}

// tickablePositions снимает отсортированный список тикающих клеток загруженных чанков
func (w *World) tickablePositions(liquids bool) []vec.Vec4Int {
	var result []vec.Vec4Int
	for _, c := range w.Chunks() {
		origin := c.Origin()
		for _, idx := range c.Tickable() {
			local := LocalFromIndex(idx)
			if block.IsLiquid(c.GetBlock(local)) != liquids {
				continue
			}
			result = append(result, origin.Add(local))
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Снимки

// ChunkInfo — краткие сведения о загруженном чанке
type ChunkInfo struct {
	Coords     vec.Vec4Int `json:"coords"`
	Dirty      bool        `json:"dirty"`
	Entities   int         `json:"entities"`
	LoadFailed bool        `json:"load_failed"`
}

// Info — сводка о мире
type Info struct {
	Name         string `json:"name"`
	Seed         int64  `json:"seed"`
	Tick         uint64 `json:"tick"`
	LoadedChunks int    `json:"loaded_chunks"`
	DirtyChunks  int    `json:"dirty_chunks"`
	Entities     int    `json:"entities"`
	Players      int    `json:"players"`
	NextEntityID uint64 `json:"next_entity_id"`
}

// Info возвращает сводку о мире
func (w *World) Info() Info {
	chunks := w.Chunks()
	dirty := 0
	for _, c := range chunks {
		if c.IsDirty() {
			dirty++
		}
	}
	return Info{
		Name:         w.name,
		Seed:         w.seed,
		Tick:         w.CurrentTick(),
		LoadedChunks: len(chunks),
		DirtyChunks:  dirty,
		Entities:     w.entities.Len(),
		Players:      len(w.entities.Players()),
		NextEntityID: w.entities.PeekNextID(),
	}
}

// LoadedChunks возвращает сведения о загруженных чанках
func (w *World) LoadedChunks() []ChunkInfo {
	chunks := w.Chunks()
	result := make([]ChunkInfo, 0, len(chunks))
	for _, c := range chunks {
		result = append(result, ChunkInfo{
			Coords:     c.Coords,
			Dirty:      c.IsDirty(),
			Entities:   len(c.Entities()),
			LoadFailed: w.IsLoadFailed(c.Coords),
		})
	}
	return result
}

func (w *World) emit(e Event) {
	for _, fn := range w.listeners {
		fn(e)
	}
}

// lessVec задаёт лексикографический порядок координат
func lessVec(a, b vec.Vec4Int) bool {
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
}
