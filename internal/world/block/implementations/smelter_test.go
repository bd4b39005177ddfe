package implementations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

func newSmelter(api *mockBlockAPI, pos vec.Vec4Int, powered bool) *block.SmelterState {
	b := &SmelterBehavior{Powered: powered}
	api.SetBlock(pos, b.ID())
	state := b.CreateState().(*block.SmelterState)
	api.SetState(pos, state)
	return state
}

func TestSmelter_SmeltsOreWithFuel(t *testing.T) {
	api := newMockBlockAPI()
	pos := vec.Vec4Int{X: 1, Y: 2, Z: 3, W: 4}
	behavior := &SmelterBehavior{}
	state := newSmelter(api, pos, false)
	state.Input = block.NewStack(block.IronOreBlockID, 2)
	state.FuelSlot = block.NewStack(block.CoalItemID, 1)

	for tick := uint64(1); tick <= SmeltTicks; tick++ {
		require.True(t, behavior.TickUpdate(api, pos, tick))
	}

	assert.Equal(t, block.IronIngotItemID, state.Output.ID)
	assert.Equal(t, 1, state.Output.Count)
	assert.Equal(t, 1, state.Input.Count)
	assert.True(t, state.FuelSlot.IsEmpty(), "уголь сгорел")
	assert.Equal(t, FuelValue(block.CoalItemID)-SmeltTicks, state.Fuel)
	assert.True(t, state.Processing, "осталась руда для переплавки")
}

func TestSmelter_StopsWithoutFuel(t *testing.T) {
	api := newMockBlockAPI()
	pos := vec.Vec4Int{}
	behavior := &SmelterBehavior{}
	state := newSmelter(api, pos, false)
	state.Input = block.NewStack(block.GoldOreBlockID, 1)

	assert.False(t, behavior.TickUpdate(api, pos, 1), "без топлива ничего не происходит")
	assert.False(t, state.Processing)
	assert.Zero(t, state.Progress)
}

func TestSmelter_PoweredNeedsNoFuel(t *testing.T) {
	api := newMockBlockAPI()
	pos := vec.Vec4Int{}
	behavior := &SmelterBehavior{Powered: true}
	state := newSmelter(api, pos, true)
	state.Input = block.NewStack(block.GoldOreBlockID, 1)

	for tick := uint64(1); tick <= SmeltTicks; tick++ {
		behavior.TickUpdate(api, pos, tick)
	}

	assert.Equal(t, block.NewStack(block.GoldIngotItemID, 1), state.Output)
	assert.True(t, state.Input.IsEmpty())
	assert.False(t, state.Processing)
	assert.Zero(t, state.Fuel)
}

func TestSmelter_IgnoresUnknownRecipe(t *testing.T) {
	api := newMockBlockAPI()
	pos := vec.Vec4Int{}
	behavior := &SmelterBehavior{Powered: true}
	state := newSmelter(api, pos, true)
	state.Input = block.NewStack(block.DirtBlockID, 3)

	assert.False(t, behavior.TickUpdate(api, pos, 1))
	assert.Equal(t, 3, state.Input.Count)
}

func TestSmelter_BreakDropsContents(t *testing.T) {
	api := newMockBlockAPI()
	pos := vec.Vec4Int{Y: 1}
	state := newSmelter(api, pos, false)
	state.Input = block.NewStack(block.IronOreBlockID, 3)
	state.Output = block.NewStack(block.IronIngotItemID, 2)

	drops := api.BreakBlock(pos)

	assert.Empty(t, drops, "без кирки плавильня не добывается")
	assert.ElementsMatch(t, []block.ItemStack{state.Input, state.Output}, api.dropped[pos])
	assert.Equal(t, block.AirBlockID, api.GetBlockID(pos))
}

func TestInsertIntoSmelter_SlotRules(t *testing.T) {
	state := &block.SmelterState{}

	rest := InsertIntoSmelter(state, SmelterInput, block.NewStack(block.CoalItemID, 3))
	assert.Equal(t, 3, rest.Count, "уголь не переплавляется")
	assert.True(t, state.Input.IsEmpty())

	rest = InsertIntoSmelter(state, SmelterInput, block.NewStack(block.IronOreBlockID, 5))
	assert.True(t, rest.IsEmpty())
	assert.Equal(t, block.NewStack(block.IronOreBlockID, 5), state.Input)

	rest = InsertIntoSmelter(state, SmelterInput, block.NewStack(block.GoldOreBlockID, 1))
	assert.Equal(t, 1, rest.Count, "слот занят другой рудой")

	rest = InsertIntoSmelter(state, SmelterFuel, block.NewStack(block.IronOreBlockID, 1))
	assert.Equal(t, 1, rest.Count, "руда не топливо")

	rest = InsertIntoSmelter(state, SmelterFuel, block.NewStack(block.CoalItemID, 2))
	assert.True(t, rest.IsEmpty())
	assert.Equal(t, 2, state.FuelSlot.Count)

	powered := &block.SmelterState{Powered: true}
	rest = InsertIntoSmelter(powered, SmelterFuel, block.NewStack(block.CoalItemID, 2))
	assert.Equal(t, 2, rest.Count, "запитанной плавильне топливо не нужно")
}

func TestInsertIntoSmelter_RespectsStackLimit(t *testing.T) {
	limit := block.PropertiesOf(block.IronOreBlockID).StackLimit()
	state := &block.SmelterState{Input: block.NewStack(block.IronOreBlockID, limit-2)}

	rest := InsertIntoSmelter(state, SmelterInput, block.NewStack(block.IronOreBlockID, 5))
	assert.Equal(t, limit, state.Input.Count)
	assert.Equal(t, 3, rest.Count)
}

func TestTakeSmelterOutput(t *testing.T) {
	state := &block.SmelterState{Output: block.NewStack(block.IronIngotItemID, 4)}

	out := TakeSmelterOutput(state)
	assert.Equal(t, block.NewStack(block.IronIngotItemID, 4), out)
	assert.True(t, state.Output.IsEmpty())
	assert.True(t, TakeSmelterOutput(state).IsEmpty())
}

func TestParseSmelterSlot(t *testing.T) {
	slot, ok := ParseSmelterSlot("fuel")
	require.True(t, ok)
	assert.Equal(t, SmelterFuel, slot)
	assert.Equal(t, "fuel", slot.String())

	slot, ok = ParseSmelterSlot("input")
	require.True(t, ok)
	assert.Equal(t, SmelterInput, slot)

	_, ok = ParseSmelterSlot("output")
	assert.False(t, ok)
}
