package entity

import (
	"github.com/annel0/voxel4d/internal/physics"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// EntityType представляет тип сущности
type EntityType uint16

const (
	EntityTypePlayer EntityType = iota
	EntityTypeItem              // выпавший стак предметов
)

// String возвращает имя типа
func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeItem:
		return "item"
	default:
		return "unknown"
	}
}

// Стандартные размеры хитбоксов
var (
	PlayerSize = vec.Vec4{X: 0.6, Y: 1.8, Z: 0.6, W: 0.6}
	ItemSize   = vec.Vec4{X: 0.25, Y: 0.25, Z: 0.25, W: 0.25}
)

// Entity представляет физическое тело в мире
type Entity struct {
	ID       uint64     // Уникальный идентификатор, выдаётся миром
	Type     EntityType // Тип сущности
	Position vec.Vec4   // Позиция ног (по X/Z/W — центр хитбокса)
	Velocity vec.Vec4   // Скорость в блоках в секунду
	Size     vec.Vec4   // Размер хитбокса
	Gravity  bool       // Подвержена ли сущность гравитации
	OnGround bool       // Стоит ли на земле
	Item     *block.ItemStack
	Age      float64 // Время жизни в секундах
}

// NewEntity создаёт сущность со стандартным размером для её типа
func NewEntity(id uint64, entityType EntityType, position vec.Vec4) *Entity {
	size := ItemSize
	if entityType == EntityTypePlayer {
		size = PlayerSize
	}
	return &Entity{
		ID:       id,
		Type:     entityType,
		Position: position,
		Size:     size,
		Gravity:  true,
	}
}

// NewItemEntity создаёт сущность выпавшего предмета
func NewItemEntity(id uint64, position vec.Vec4, stack block.ItemStack) *Entity {
	e := NewEntity(id, EntityTypeItem, position)
	e.Item = &stack
	return e
}

// Box возвращает текущий коллайдер сущности
func (e *Entity) Box() physics.AABB4 {
	return physics.BoxAt(e.Position, e.Size)
}

// BlockPos возвращает клетку, в которой находятся ноги сущности
func (e *Entity) BlockPos() vec.Vec4Int {
	return e.Position.ToVec4Int()
}

// ChunkPos возвращает координаты чанка, которому принадлежит сущность
func (e *Entity) ChunkPos() vec.Vec4Int {
	return e.BlockPos().ToChunkCoords()
}

// Clone возвращает независимую копию сущности
func (e *Entity) Clone() *Entity {
	c := *e
	if e.Item != nil {
		item := *e.Item
		c.Item = &item
	}
	return &c
}
