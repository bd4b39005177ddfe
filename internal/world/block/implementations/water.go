package implementations

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// minSourceMergeLevel — минимальный уровень обеих клеток для слияния в источник
const minSourceMergeLevel = 6

var (
	downDirection = vec.Vec4Int{Y: -1}

	// Горизонтальные направления растекания: ±X, ±Z, ±W
	horizontalDirections = [6]vec.Vec4Int{
		{X: 1}, {X: -1},
		{Z: 1}, {Z: -1},
		{W: 1}, {W: -1},
	}
)

// WaterBehavior реализует клеточный автомат жидкости.
// Троттлинг по LastUpdate выполняет мир; здесь только правила перетекания.
type WaterBehavior struct{}

// ID возвращает идентификатор блока
func (b *WaterBehavior) ID() block.BlockID {
	return block.WaterBlockID
}

// Name возвращает имя блока
func (b *WaterBehavior) Name() string {
	return "Water"
}

// Properties возвращает свойства воды
func (b *WaterBehavior) Properties() block.Properties {
	return block.Properties{
		Name: "Water",
		Caps: block.CapTexture | block.CapPlaceable | block.CapStateful | block.CapLiquid,
	}
}

// NeedsTick возвращает true, вода обновляется
func (b *WaterBehavior) NeedsTick() bool {
	return true
}

// CreateState возвращает состояние нового источника
func (b *WaterBehavior) CreateState() block.State {
	return block.NewLiquidState(block.MaxLiquidLevel, true, 0)
}

// OnPlace вызывается при установке блока
func (b *WaterBehavior) OnPlace(api block.BlockAPI, pos vec.Vec4Int) {}

// OnBreak вызывается при разрушении блока
func (b *WaterBehavior) OnBreak(api block.BlockAPI, pos vec.Vec4Int) {}

// Drops — вода ничего не дропает
func (b *WaterBehavior) Drops(tool block.ItemStack, rng *rand.Rand) []block.ItemStack {
	return nil
}

// TickUpdate применяет правила перетекания к одной клетке.
// Возвращает true, если хотя бы одна клетка мира изменилась.
func (b *WaterBehavior) TickUpdate(api block.BlockAPI, pos vec.Vec4Int, tick uint64) bool {
	state := liquidState(api, pos)
	// Отметка троттлинга не является изменением мира
	state.LastUpdate = tick

	// 1. Пересохшая клетка превращается в воздух
	if state.Level <= 0 {
		api.SetBlock(pos, block.AirBlockID)
		return true
	}

	changed := false
	below := pos.Add(downDirection)
	belowID := api.GetBlockID(below)

	canFlowDown := false
	flowedDown := false

	switch {
	case isOpen(belowID):
		// 2. Падение вниз на том же уровне
		displace(api, below, belowID)
		api.SetBlock(below, block.WaterBlockID)
		api.SetState(below, block.NewLiquidState(state.Level, false, tick))
		canFlowDown, flowedDown, changed = true, true, true

	case block.IsLiquid(belowID):
		// 3. Слияние с жидкостью снизу
		canFlowDown = true
		if mergeBelow(api, below, state) {
			changed = true
		}
	}

	// 4. Горизонтальное растекание
	spread := false
	if state.Source {
		spread = !canFlowDown || allNeighborsOpen(api, pos)
	} else {
		spread = !flowedDown && !isOpen(belowID) && !block.IsLiquid(belowID)
	}

	if !spread || state.Level <= 1 {
		return changed
	}

	for _, dir := range horizontalDirections {
		if b.spreadTo(api, pos.Add(dir), state, tick) {
			changed = true
		}
	}

	return changed
}

// spreadTo растекается в одну соседнюю клетку
func (b *WaterBehavior) spreadTo(api block.BlockAPI, target vec.Vec4Int, state *block.LiquidState, tick uint64) bool {
	targetID := api.GetBlockID(target)

	if isOpen(targetID) {
		displace(api, target, targetID)
		api.SetBlock(target, block.WaterBlockID)
		api.SetState(target, block.NewLiquidState(state.Level-1, false, tick))
		return true
	}

	if !block.IsLiquid(targetID) {
		return false
	}

	neighbor := liquidState(api, target)

	// Два полных источника рядом образуют источник
	if state.Source && neighbor.Source &&
		state.Level >= minSourceMergeLevel && neighbor.Level >= minSourceMergeLevel {
		if neighbor.Level == block.MaxLiquidLevel {
			return false
		}
		neighbor.SetLevel(block.MaxLiquidLevel)
		api.SetState(target, neighbor)
		return true
	}

	// Усреднение только с заметно более низкой клеткой: уровни монотонно растут,
	// поэтому растекание конечно
	if state.Level <= neighbor.Level+1 {
		return false
	}

	neighbor.SetLevel((state.Level + neighbor.Level) / 2)
	neighbor.Source = state.Source && neighbor.Source
	api.SetState(target, neighbor)
	return true
}

// mergeBelow сливает клетку с жидкостью под ней
func mergeBelow(api block.BlockAPI, below vec.Vec4Int, state *block.LiquidState) bool {
	belowState := liquidState(api, below)

	level := max(state.Level, belowState.Level)
	source := state.Source && belowState.Source &&
		state.Level >= minSourceMergeLevel && belowState.Level >= minSourceMergeLevel

	if belowState.Level == level && belowState.Source == source {
		return false
	}

	belowState.SetLevel(level)
	belowState.Source = source
	api.SetState(below, belowState)
	return true
}

// liquidState возвращает состояние жидкой клетки.
// Клетка без состояния считается полным источником.
func liquidState(api block.BlockAPI, pos vec.Vec4Int) *block.LiquidState {
	if state, ok := api.GetState(pos).(*block.LiquidState); ok && state != nil {
		return state
	}
	state := block.NewLiquidState(block.MaxLiquidLevel, true, 0)
	api.SetState(pos, state)
	return state
}

// isOpen — клетка пустая или мягкая
func isOpen(id block.BlockID) bool {
	return block.IsEmpty(id) || block.IsDisplaceable(id)
}

// displace разрушает мягкий блок и роняет его дроп в центре клетки
func displace(api block.BlockAPI, pos vec.Vec4Int, id block.BlockID) {
	if !block.IsDisplaceable(id) {
		return
	}
	if drops := api.BreakBlock(pos); len(drops) > 0 {
		api.DropItems(pos, drops)
	}
}

// allNeighborsOpen проверяет, что все шесть горизонтальных соседей пусты или мягкие
func allNeighborsOpen(api block.BlockAPI, pos vec.Vec4Int) bool {
	for _, dir := range horizontalDirections {
		if !isOpen(api.GetBlockID(pos.Add(dir))) {
			return false
		}
	}
	return true
}
