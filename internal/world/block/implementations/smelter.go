package implementations

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// SmeltTicks — длительность переплавки одного предмета в тиках
const SmeltTicks = 20

// Рецепты переплавки: руда → слиток
var smeltRecipes = map[block.BlockID]block.BlockID{
	block.IronOreBlockID: block.IronIngotItemID,
	block.GoldOreBlockID: block.GoldIngotItemID,
}

// Время горения топлива в тиках
var fuelTicks = map[block.BlockID]int{
	block.CoalItemID:     80,
	block.WoodLogBlockID: 30,
	block.StickItemID:    5,
}

// SmeltResult возвращает результат переплавки материала
func SmeltResult(id block.BlockID) (block.BlockID, bool) {
	out, ok := smeltRecipes[id]
	return out, ok
}

// FuelValue возвращает время горения материала (0 — не топливо)
func FuelValue(id block.BlockID) int {
	return fuelTicks[id]
}

// SmelterBehavior реализует плавильню.
// Powered-вариант работает без топлива.
type SmelterBehavior struct {
	Powered bool
}

func (b *SmelterBehavior) ID() block.BlockID {
	if b.Powered {
		return block.PoweredSmelterBlockID
	}
	return block.SmelterBlockID
}

func (b *SmelterBehavior) Name() string {
	if b.Powered {
		return "Powered Smelter"
	}
	return "Smelter"
}

func (b *SmelterBehavior) Properties() block.Properties {
	return block.Properties{
		Name:      b.Name(),
		Caps:      block.CapSolid | block.CapBreakable | block.CapTexture | block.CapPlaceable | block.CapStateful,
		BreakType: block.ToolPickaxe,
		BreakTier: 1,
	}
}

func (b *SmelterBehavior) NeedsTick() bool { return true }

func (b *SmelterBehavior) CreateState() block.State {
	return &block.SmelterState{Powered: b.Powered}
}

func (b *SmelterBehavior) OnPlace(api block.BlockAPI, pos vec.Vec4Int) {}

// OnBreak высыпает содержимое плавильни в мир
func (b *SmelterBehavior) OnBreak(api block.BlockAPI, pos vec.Vec4Int) {
	state, ok := api.GetState(pos).(*block.SmelterState)
	if !ok || state == nil {
		return
	}
	var contents []block.ItemStack
	for _, stack := range []block.ItemStack{state.Input, state.FuelSlot, state.Output} {
		if !stack.IsEmpty() {
			contents = append(contents, stack)
		}
	}
	if len(contents) > 0 {
		api.DropItems(pos, contents)
	}
}

// Drops — плавильня дропает сама себя
func (b *SmelterBehavior) Drops(tool block.ItemStack, rng *rand.Rand) []block.ItemStack {
	if !b.Properties().CanHarvest(tool) {
		return nil
	}
	return []block.ItemStack{block.NewStack(b.ID(), 1)}
}

// TickUpdate продвигает переплавку на один тик
func (b *SmelterBehavior) TickUpdate(api block.BlockAPI, pos vec.Vec4Int, tick uint64) bool {
	state, ok := api.GetState(pos).(*block.SmelterState)
	if !ok || state == nil {
		api.SetState(pos, b.CreateState())
		return true
	}

	if !b.canSmelt(state) {
		if state.Processing || state.Progress != 0 {
			state.Processing = false
			state.Progress = 0
			api.SetState(pos, state)
			return true
		}
		return false
	}

	// Подкидываем топливо, если печь не запитана
	if !state.Powered && state.Fuel <= 0 {
		if !consumeFuel(state) {
			if state.Processing {
				state.Processing = false
				api.SetState(pos, state)
				return true
			}
			return false
		}
	}

	state.Processing = true
	state.Progress++
	if !state.Powered {
		state.Fuel--
	}

	if state.Progress >= SmeltTicks {
		out, _ := SmeltResult(state.Input.ID)
		state.Input.Count--
		if state.Input.Count <= 0 {
			state.Input = block.ItemStack{}
		}
		if state.Output.IsEmpty() {
			state.Output = block.NewStack(out, 1)
		} else {
			state.Output.Count++
		}
		state.Progress = 0
		state.Processing = b.canSmelt(state)
	}

	api.SetState(pos, state)
	return true
}

// canSmelt проверяет, есть ли что плавить и куда положить результат
func (b *SmelterBehavior) canSmelt(state *block.SmelterState) bool {
	if state.Input.IsEmpty() {
		return false
	}
	out, ok := SmeltResult(state.Input.ID)
	if !ok {
		return false
	}
	if state.Output.IsEmpty() {
		return true
	}
	return state.Output.ID == out && state.Output.Count < block.PropertiesOf(out).StackLimit()
}

// consumeFuel забирает одну единицу топлива из слота
func consumeFuel(state *block.SmelterState) bool {
	value := FuelValue(state.FuelSlot.ID)
	if state.FuelSlot.IsEmpty() || value == 0 {
		return false
	}
	state.FuelSlot.Count--
	if state.FuelSlot.Count <= 0 {
		state.FuelSlot = block.ItemStack{}
	}
	state.Fuel += value
	return true
}

// SmelterSlot — слот плавильни, доступный для загрузки
type SmelterSlot uint8

const (
	SmelterInput SmelterSlot = iota
	SmelterFuel
)

// ParseSmelterSlot разбирает имя слота ("input" или "fuel")
func ParseSmelterSlot(name string) (SmelterSlot, bool) {
	switch name {
	case "input":
		return SmelterInput, true
	case "fuel":
		return SmelterFuel, true
	}
	return 0, false
}

func (s SmelterSlot) String() string {
	if s == SmelterFuel {
		return "fuel"
	}
	return "input"
}

// InsertIntoSmelter кладёт стак в слот плавильни и возвращает остаток.
// Во входной слот принимается только переплавляемое, в топливный только
// топливо; запитанная плавильня топлива не берёт.
func InsertIntoSmelter(state *block.SmelterState, slot SmelterSlot, stack block.ItemStack) block.ItemStack {
	if stack.IsEmpty() {
		return block.ItemStack{}
	}

	var target *block.ItemStack
	switch slot {
	case SmelterInput:
		if _, ok := SmeltResult(stack.ID); !ok {
			return stack
		}
		target = &state.Input
	case SmelterFuel:
		if state.Powered || FuelValue(stack.ID) == 0 {
			return stack
		}
		target = &state.FuelSlot
	default:
		return stack
	}

	if !target.IsEmpty() && !target.Stackable(stack) {
		return stack
	}

	if target.IsEmpty() {
		*target = block.ItemStack{ID: stack.ID}
	}
	moved := min(block.PropertiesOf(stack.ID).StackLimit()-target.Count, stack.Count)
	if moved <= 0 {
		return stack
	}

	target.Count += moved
	stack.Count -= moved
	if stack.Count <= 0 {
		return block.ItemStack{}
	}
	return stack
}

// TakeSmelterOutput забирает весь результат переплавки
func TakeSmelterOutput(state *block.SmelterState) block.ItemStack {
	out := state.Output
	state.Output = block.ItemStack{}
	return out
}
