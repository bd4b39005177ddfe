package block

import "fmt"

var registry = make(map[BlockID]BlockBehavior)

// Register добавляет поведение блока в регистр
func Register(id BlockID, behavior BlockBehavior) {
	registry[id] = behavior
}

// Get возвращает поведение для указанного ID
func Get(id BlockID) (BlockBehavior, bool) {
	behavior, exists := registry[id]
	return behavior, exists
}

// MustGet возвращает поведение или паникует, если материал не зарегистрирован
func MustGet(id BlockID) BlockBehavior {
	behavior, exists := registry[id]
	if !exists {
		panic(fmt.Sprintf("block: материал %d не зарегистрирован", id))
	}
	return behavior
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// PropertiesOf возвращает таблицу свойств материала.
// Для незарегистрированных материалов возвращаются нулевые свойства.
func PropertiesOf(id BlockID) Properties {
	if behavior, exists := registry[id]; exists {
		return behavior.Properties()
	}
	return Properties{}
}

// RegisteredIDs возвращает все зарегистрированные материалы
func RegisteredIDs() []BlockID {
	ids := make([]BlockID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// BlockID представляет идентификатор материала блока или предмета
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID     BlockID = iota // 0
	StoneBlockID                  // 1
	GrassBlockID                  // 2
	WaterBlockID                  // 3
	DirtBlockID                   // 4
	LeavesBlockID                 // 5
	WoodLogBlockID                // 6

	// Руды (начиная с 20)
	CoalOreBlockID    BlockID = 20
	IronOreBlockID    BlockID = 21
	GoldOreBlockID    BlockID = 22
	DiamondOreBlockID BlockID = 23

	// Мягкие растения, которые вода смывает (начиная с 100)
	TallGrassBlockID BlockID = 100
	FlowerBlockID    BlockID = 101

	// Блоки с состоянием (начиная с 200)
	SmelterBlockID        BlockID = 200
	PoweredSmelterBlockID BlockID = 201

	// Предметы, которые нельзя поставить (начиная с 1000)
	StickItemID     BlockID = 1000
	CoalItemID      BlockID = 1001
	IronIngotItemID BlockID = 1002
	GoldIngotItemID BlockID = 1003
	DiamondItemID   BlockID = 1004

	// Инструменты (начиная с 1100)
	WoodPickaxeItemID  BlockID = 1100
	StonePickaxeItemID BlockID = 1101
	IronPickaxeItemID  BlockID = 1102
	WoodAxeItemID      BlockID = 1103
	WoodShovelItemID   BlockID = 1104
)
