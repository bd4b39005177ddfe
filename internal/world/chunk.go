package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/entity"
)

const (
	// ChunkSize — длина ребра чанка по каждой из четырёх осей
	ChunkSize = vec.ChunkSize
	// ChunkVolume — количество клеток в чанке (S⁴)
	ChunkVolume = ChunkSize * ChunkSize * ChunkSize * ChunkSize
)

// Chunk представляет участок мира размером 16⁴ блоков
type Chunk struct {
	Coords vec.Vec4Int // Координаты чанка в мире

	blocks   []block.BlockID              // Плотная сетка ((x*S+y)*S+z)*S+w
	states   map[int]block.State          // Доп. состояние по плоскому индексу
	tickable map[int]struct{}             // Клетки с тикающими материалами
	entities map[uint64]*entity.Entity    // Производный индекс сущностей (без игроков)

	dirty   bool
	version uint64 // Счетчик изменений

	mu sync.RWMutex
}

// NewChunk создаёт чанк, заполненный воздухом
func NewChunk(coords vec.Vec4Int) *Chunk {
	return &Chunk{
		Coords:   coords,
		blocks:   make([]block.BlockID, ChunkVolume),
		states:   make(map[int]block.State),
		tickable: make(map[int]struct{}),
		entities: make(map[uint64]*entity.Entity),
	}
}

// Index переводит локальные координаты в плоский индекс.
// Координаты вне [0, S) — ошибка программиста, вызывается паника.
func Index(local vec.Vec4Int) int {
	if local.X < 0 || local.X >= ChunkSize ||
		local.Y < 0 || local.Y >= ChunkSize ||
		local.Z < 0 || local.Z >= ChunkSize ||
		local.W < 0 || local.W >= ChunkSize {
		panic(fmt.Sprintf("world: локальные координаты %s вне чанка", local))
	}
	return ((local.X*ChunkSize+local.Y)*ChunkSize+local.Z)*ChunkSize + local.W
}

// LocalFromIndex выполняет обратное преобразование
func LocalFromIndex(i int) vec.Vec4Int {
	if i < 0 || i >= ChunkVolume {
		panic(fmt.Sprintf("world: индекс %d вне чанка", i))
	}
	w := i % ChunkSize
	i /= ChunkSize
	z := i % ChunkSize
	i /= ChunkSize
	y := i % ChunkSize
	x := i / ChunkSize
	return vec.Vec4Int{X: x, Y: y, Z: z, W: w}
}

// Origin возвращает мировые координаты клетки (0,0,0,0) чанка
func (c *Chunk) Origin() vec.Vec4Int {
	return c.Coords.ChunkOrigin()
}

// GetBlock возвращает материал по локальным координатам
func (c *Chunk) GetBlock(local vec.Vec4Int) block.BlockID {
	idx := Index(local)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[idx]
}

// SetBlock устанавливает материал по локальным координатам.
// Доп. состояние клетки сбрасывается, чанк помечается изменённым.
func (c *Chunk) SetBlock(local vec.Vec4Int, id block.BlockID) {
	idx := Index(local)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blocks[idx] = id
	delete(c.states, idx)
	c.updateTickable(idx, id)
	c.touch()
}

// GetState возвращает доп. состояние клетки (живой объект, не копию) или nil
func (c *Chunk) GetState(local vec.Vec4Int) block.State {
	idx := Index(local)
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.states[idx]
}

// SetState записывает доп. состояние клетки; nil удаляет запись
func (c *Chunk) SetState(local vec.Vec4Int, state block.State) {
	idx := Index(local)
	c.mu.Lock()
	defer c.mu.Unlock()

	if state == nil {
		delete(c.states, idx)
	} else {
		c.states[idx] = state
	}
	c.touch()
}

// States возвращает копию таблицы доп. состояний
func (c *Chunk) States() map[int]block.State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[int]block.State, len(c.states))
	for idx, state := range c.states {
		result[idx] = state.Clone()
	}
	return result
}

// Tickable возвращает отсортированные индексы тикающих клеток
func (c *Chunk) Tickable() []int {
	c.mu.RLock()
	result := make([]int, 0, len(c.tickable))
	for idx := range c.tickable {
		result = append(result, idx)
	}
	c.mu.RUnlock()

	sort.Ints(result)
	return result
}

// Fill заполняет весь чанк одним материалом и очищает доп. состояние
func (c *Chunk) Fill(id block.BlockID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.blocks {
		c.blocks[i] = id
	}
	c.states = make(map[int]block.State)
	c.rebuildTickable()
	c.touch()
}

// Load заменяет сетку и доп. состояние целиком (восстановление из сохранения)
func (c *Chunk) Load(blocks []block.BlockID, states map[int]block.State, dirty bool) error {
	if len(blocks) != ChunkVolume {
		return fmt.Errorf("неверный размер сетки: %d вместо %d", len(blocks), ChunkVolume)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	copy(c.blocks, blocks)
	c.states = make(map[int]block.State, len(states))
	for idx, state := range states {
		if idx < 0 || idx >= ChunkVolume || state == nil {
			return fmt.Errorf("неверный индекс доп. состояния: %d", idx)
		}
		c.states[idx] = state
	}
	c.rebuildTickable()
	c.version++
	c.dirty = dirty
	return nil
}

// Blocks возвращает копию сетки материалов
func (c *Chunk) Blocks() []block.BlockID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]block.BlockID, len(c.blocks))
	copy(result, c.blocks)
	return result
}

// AddEntity добавляет сущность в индекс чанка (игроки не индексируются)
func (c *Chunk) AddEntity(e *entity.Entity) {
	if e.Type == entity.EntityTypePlayer {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[e.ID] = e
	c.touch()
}

// RemoveEntity убирает сущность из индекса чанка
func (c *Chunk) RemoveEntity(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entities[id]; !exists {
		return false
	}
	delete(c.entities, id)
	c.touch()
	return true
}

// Entities возвращает сущности чанка, отсортированные по ID
func (c *Chunk) Entities() []*entity.Entity {
	c.mu.RLock()
	result := make([]*entity.Entity, 0, len(c.entities))
	for _, e := range c.entities {
		result = append(result, e)
	}
	c.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ChunkSnapshot — согласованная копия чанка для сериализации
type ChunkSnapshot struct {
	Coords   vec.Vec4Int
	Blocks   []block.BlockID
	States   map[int]block.State
	Entities []*entity.Entity
	Dirty    bool
	Version  uint64
}

// Snapshot копирует состояние чанка под одной блокировкой.
// Version снимка передаётся в MarkCleanAt после успешной записи.
func (c *Chunk) Snapshot() ChunkSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := ChunkSnapshot{
		Coords:   c.Coords,
		Blocks:   make([]block.BlockID, len(c.blocks)),
		States:   make(map[int]block.State, len(c.states)),
		Entities: make([]*entity.Entity, 0, len(c.entities)),
		Dirty:    c.dirty,
		Version:  c.version,
	}
	copy(snap.Blocks, c.blocks)
	for idx, state := range c.states {
		snap.States[idx] = state.Clone()
	}
	for _, e := range c.entities {
		snap.Entities = append(snap.Entities, e.Clone())
	}
	sort.Slice(snap.Entities, func(i, j int) bool { return snap.Entities[i].ID < snap.Entities[j].ID })
	return snap
}

// IsDirty проверяет, есть ли несохранённые изменения
func (c *Chunk) IsDirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkDirty помечает чанк изменённым
func (c *Chunk) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
}

// Version возвращает счетчик изменений
func (c *Chunk) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// MarkClean снимает флаг изменений без проверки версии
func (c *Chunk) MarkClean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

// MarkCleanAt снимает флаг, только если после снятия версии version
// чанк не менялся. Возвращает true, если флаг снят.
func (c *Chunk) MarkCleanAt(version uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.version != version {
		return false
	}
	c.dirty = false
	return true
}

// touch фиксирует изменение; вызывается под блокировкой
func (c *Chunk) touch() {
	c.dirty = true
	c.version++
}

// updateTickable обновляет индекс тикающих клеток; вызывается под блокировкой
func (c *Chunk) updateTickable(idx int, id block.BlockID) {
	if needsTick(id) {
		c.tickable[idx] = struct{}{}
	} else {
		delete(c.tickable, idx)
	}
}

func (c *Chunk) rebuildTickable() {
	c.tickable = make(map[int]struct{})
	for idx, id := range c.blocks {
		if id != block.AirBlockID && needsTick(id) {
			c.tickable[idx] = struct{}{}
		}
	}
}

func needsTick(id block.BlockID) bool {
	behavior, exists := block.Get(id)
	return exists && behavior.NeedsTick()
}
