package app

import (
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/entity"
)

// StackView — стак предметов для JSON
type StackView struct {
	Slot       int           `json:"slot"`
	ID         block.BlockID `json:"id"`
	Name       string        `json:"name"`
	Count      int           `json:"count"`
	Durability int           `json:"durability,omitempty"`
}

func stackView(slot int, s block.ItemStack) StackView {
	return StackView{Slot: slot, ID: s.ID, Name: s.Name(), Count: s.Count, Durability: s.Durability}
}

// EntityView — сущность для JSON
type EntityView struct {
	ID       uint64      `json:"id"`
	Type     string      `json:"type"`
	Position vec.Vec4    `json:"position"`
	Velocity vec.Vec4    `json:"velocity"`
	OnGround bool        `json:"on_ground"`
	Chunk    vec.Vec4Int `json:"chunk"`
	Item     *StackView  `json:"item,omitempty"`
	Age      float64     `json:"age"`
}

func entityView(e *entity.Entity) EntityView {
	v := EntityView{
		ID:       e.ID,
		Type:     e.Type.String(),
		Position: e.Position,
		Velocity: e.Velocity,
		OnGround: e.OnGround,
		Chunk:    e.ChunkPos(),
		Age:      e.Age,
	}
	if e.Item != nil {
		item := stackView(-1, *e.Item)
		v.Item = &item
	}
	return v
}

// PlayerView — игрок для JSON
type PlayerView struct {
	EntityView
	Username  string       `json:"username"`
	Health    int          `json:"health"`
	Selected  int          `json:"selected"`
	Input     entity.Input `json:"input"`
	Inventory []StackView  `json:"inventory"`
}

// BlockView — клетка мира для JSON
type BlockView struct {
	Position vec.Vec4Int   `json:"position"`
	ID       block.BlockID `json:"id"`
	Name     string        `json:"name"`
	State    block.State   `json:"state,omitempty"`
}

// Snapshot — согласованная сводка для API
type Snapshot struct {
	World  world.Info        `json:"world"`
	UUID   string            `json:"uuid"`
	Player PlayerView        `json:"player"`
	Chunks []world.ChunkInfo `json:"chunks"`
}

func (s *Session) playerView() PlayerView {
	p := s.player
	v := PlayerView{
		EntityView: entityView(p.Entity),
		Username:   p.Username,
		Health:     p.Health,
		Selected:   p.Selected,
		Input:      p.Input,
		Inventory:  []StackView{},
	}
	for i, slot := range p.Inventory.Slots {
		if !slot.IsEmpty() {
			v.Inventory = append(v.Inventory, stackView(i, slot))
		}
	}
	return v
}

// Snapshot возвращает сводку о мире и игроке
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		World:  s.world.Info(),
		UUID:   s.info.UUID,
		Player: s.playerView(),
		Chunks: s.world.LoadedChunks(),
	}
}

// PlayerSnapshot возвращает состояние игрока
func (s *Session) PlayerSnapshot() PlayerView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerView()
}

// Entities возвращает все сущности мира
func (s *Session) Entities() []EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.world.Entities()
	result := make([]EntityView, 0, len(all))
	for _, e := range all {
		result = append(result, entityView(e))
	}
	return result
}

// Entity возвращает сущность по ID или world.ErrEntityNotFound
func (s *Session) Entity(id uint64) (EntityView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.world.LookupEntity(id)
	if err != nil {
		return EntityView{}, err
	}
	return entityView(e), nil
}

// Chunks возвращает сведения о загруженных чанках
func (s *Session) Chunks() []world.ChunkInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.LoadedChunks()
}

// Block возвращает материал и копию доп. состояния клетки
func (s *Session) Block(pos vec.Vec4Int) BlockView {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.world.GetBlock(pos)
	v := BlockView{Position: pos, ID: id, Name: block.PropertiesOf(id).Name}
	if state := s.world.GetState(pos); state != nil {
		v.State = state.Clone()
	}
	return v
}
