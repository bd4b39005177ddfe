package implementations

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "Air"
}

// Properties возвращает свойства: воздух ничего не умеет
func (b *AirBehavior) Properties() block.Properties {
	return block.Properties{Name: "Air"}
}

// NeedsTick возвращает false, воздух статичен
func (b *AirBehavior) NeedsTick() bool {
	return false
}

// TickUpdate ничего не делает для воздуха
func (b *AirBehavior) TickUpdate(api block.BlockAPI, pos vec.Vec4Int, tick uint64) bool {
	return false
}

// OnPlace вызывается при установке блока
func (b *AirBehavior) OnPlace(api block.BlockAPI, pos vec.Vec4Int) {
	// Ничего не делаем
}

// OnBreak вызывается при разрушении блока
func (b *AirBehavior) OnBreak(api block.BlockAPI, pos vec.Vec4Int) {
	// Ничего не делаем
}

// CreateState — у воздуха нет состояния
func (b *AirBehavior) CreateState() block.State {
	return nil
}

// Drops — воздух ничего не дропает
func (b *AirBehavior) Drops(tool block.ItemStack, rng *rand.Rand) []block.ItemStack {
	return nil
}
