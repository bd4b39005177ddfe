package implementations

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// DropFunc вычисляет дроп материала для инструмента
type DropFunc func(tool block.ItemStack, rng *rand.Rand) []block.ItemStack

// SimpleBehavior реализует статичный материал без состояния и тиков.
// Большинство блоков и все предметы описываются только таблицей свойств и дропом.
type SimpleBehavior struct {
	id    block.BlockID
	props block.Properties
	drops DropFunc
}

// NewSimpleBehavior создаёт статичное поведение; при drops == nil блок дропает сам себя
func NewSimpleBehavior(id block.BlockID, props block.Properties, drops DropFunc) *SimpleBehavior {
	return &SimpleBehavior{id: id, props: props, drops: drops}
}

func (b *SimpleBehavior) ID() block.BlockID                                            { return b.id }
func (b *SimpleBehavior) Name() string                                                 { return b.props.Name }
func (b *SimpleBehavior) Properties() block.Properties                                 { return b.props }
func (b *SimpleBehavior) NeedsTick() bool                                              { return false }
func (b *SimpleBehavior) TickUpdate(api block.BlockAPI, pos vec.Vec4Int, _ uint64) bool { return false }
func (b *SimpleBehavior) OnPlace(api block.BlockAPI, pos vec.Vec4Int)                  {}
func (b *SimpleBehavior) OnBreak(api block.BlockAPI, pos vec.Vec4Int)                  {}
func (b *SimpleBehavior) CreateState() block.State                                     { return nil }

// Drops возвращает дроп с учётом уровня инструмента
func (b *SimpleBehavior) Drops(tool block.ItemStack, rng *rand.Rand) []block.ItemStack {
	if !b.props.CanHarvest(tool) {
		return nil
	}
	if b.drops != nil {
		return b.drops(tool, rng)
	}
	return []block.ItemStack{block.NewStack(b.id, 1)}
}

// dropsOf возвращает фиксированный дроп
func dropsOf(id block.BlockID, count int) DropFunc {
	return func(block.ItemStack, *rand.Rand) []block.ItemStack {
		return []block.ItemStack{block.NewStack(id, count)}
	}
}

// dropsChance возвращает дроп с заданной вероятностью
func dropsChance(id block.BlockID, chance float64) DropFunc {
	return func(_ block.ItemStack, rng *rand.Rand) []block.ItemStack {
		if rng == nil || rng.Float64() >= chance {
			return nil
		}
		return []block.ItemStack{block.NewStack(id, 1)}
	}
}

// noDrops — материал ничего не оставляет
func noDrops(block.ItemStack, *rand.Rand) []block.ItemStack { return nil }
