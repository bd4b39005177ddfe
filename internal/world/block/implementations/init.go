package implementations

import "github.com/annel0/voxel4d/internal/world/block"

// Регистрируем все типы блоков при импорте пакета
func init() {
	// Базовые блоки
	block.Register(block.AirBlockID, &AirBehavior{})
	block.Register(block.WaterBlockID, &WaterBehavior{})
	registerTerrain()
	registerOres()

	// Блоки с состоянием
	block.Register(block.SmelterBlockID, &SmelterBehavior{})
	block.Register(block.PoweredSmelterBlockID, &SmelterBehavior{Powered: true})

	registerItems()
}
