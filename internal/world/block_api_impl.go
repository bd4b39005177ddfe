package world

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// blockAPI реализует block.BlockAPI поверх мира.
// SetBlock здесь не создаёт начальное состояние: поведение записывает его само.
type blockAPI struct {
	world *World
}

// GetBlockID возвращает ID блока по глобальным координатам
func (api *blockAPI) GetBlockID(pos vec.Vec4Int) block.BlockID {
	return api.world.GetBlock(pos)
}

// SetBlock устанавливает блок по глобальным координатам
func (api *blockAPI) SetBlock(pos vec.Vec4Int, id block.BlockID) {
	api.world.setBlockRaw(pos, id)
}

// GetState возвращает доп. состояние блока
func (api *blockAPI) GetState(pos vec.Vec4Int) block.State {
	return api.world.GetState(pos)
}

// SetState устанавливает доп. состояние блока
func (api *blockAPI) SetState(pos vec.Vec4Int, state block.State) {
	api.world.SetState(pos, state)
}

// BreakBlock разрушает блок без инструмента
func (api *blockAPI) BreakBlock(pos vec.Vec4Int) []block.ItemStack {
	return api.world.BreakBlock(pos)
}

// DropItems создаёт сущности предметов
func (api *blockAPI) DropItems(pos vec.Vec4Int, items []block.ItemStack) {
	api.world.DropItems(pos, items)
}

// Rand возвращает генератор случайных чисел мира
func (api *blockAPI) Rand() *rand.Rand {
	return api.world.rng
}
