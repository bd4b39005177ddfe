package world

import (
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/entity"
)

// EventType определяет тип события
type EventType uint8

const (
	EventTypeBlockChange   EventType = iota // Изменение блока
	EventTypeEntitySpawn                    // Создание сущности
	EventTypeEntityDespawn                  // Удаление сущности
	EventTypeChunkLoad                      // Чанк загружен из сохранения
	EventTypeChunkGenerate                  // Чанк сгенерирован
	EventTypeChunkUnload                    // Чанк выгружен
)

// String возвращает имя типа события
func (t EventType) String() string {
	switch t {
	case EventTypeBlockChange:
		return "block_change"
	case EventTypeEntitySpawn:
		return "entity_spawn"
	case EventTypeEntityDespawn:
		return "entity_despawn"
	case EventTypeChunkLoad:
		return "chunk_load"
	case EventTypeChunkGenerate:
		return "chunk_generate"
	case EventTypeChunkUnload:
		return "chunk_unload"
	default:
		return "unknown"
	}
}

// Event представляет собой интерфейс для всех событий
type Event interface {
	GetType() EventType
}

// EventListener получает события мира синхронно, в потоке тика
type EventListener func(Event)

// BlockEvent представляет событие, связанное с блоком
type BlockEvent struct {
	Position vec.Vec4Int   // Мировые координаты блока
	Old      block.BlockID // Прежний материал
	New      block.BlockID // Новый материал
}

// GetType возвращает тип события
func (e BlockEvent) GetType() EventType {
	return EventTypeBlockChange
}

// EntityEvent представляет событие, связанное с сущностью
type EntityEvent struct {
	EventType  EventType
	EntityID   uint64
	EntityType entity.EntityType
	Position   vec.Vec4
}

// GetType возвращает тип события
func (e EntityEvent) GetType() EventType {
	return e.EventType
}

// ChunkEvent представляет событие жизненного цикла чанка
type ChunkEvent struct {
	EventType EventType
	Coords    vec.Vec4Int
}

// GetType возвращает тип события
func (e ChunkEvent) GetType() EventType {
	return e.EventType
}
