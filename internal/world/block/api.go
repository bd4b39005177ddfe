package block

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
)

// BlockAPI определяет интерфейс для взаимодействия блоков с игровым миром.
// Все координаты — мировые.
type BlockAPI interface {
	// GetBlockID возвращает материал блока в указанной позиции.
	GetBlockID(pos vec.Vec4Int) BlockID

	// SetBlock устанавливает материал; дополнительное состояние клетки сбрасывается.
	SetBlock(pos vec.Vec4Int, id BlockID)

	// GetState возвращает дополнительное состояние клетки или nil.
	GetState(pos vec.Vec4Int) State

	// SetState записывает дополнительное состояние клетки.
	SetState(pos vec.Vec4Int, state State)

	// BreakBlock заменяет блок воздухом и возвращает его дроп (без инструмента).
	BreakBlock(pos vec.Vec4Int) []ItemStack

	// DropItems создаёт сущности предметов в центре клетки.
	DropItems(pos vec.Vec4Int, items []ItemStack)

	// Rand возвращает генератор случайных чисел мира.
	Rand() *rand.Rand
}
