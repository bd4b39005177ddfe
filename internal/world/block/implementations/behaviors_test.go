package implementations

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/world/block"
)

func TestRegistry_AllMaterialsRegistered(t *testing.T) {
	ids := []block.BlockID{
		block.AirBlockID, block.StoneBlockID, block.DirtBlockID, block.GrassBlockID,
		block.LeavesBlockID, block.WoodLogBlockID, block.WaterBlockID,
		block.CoalOreBlockID, block.IronOreBlockID, block.GoldOreBlockID, block.DiamondOreBlockID,
		block.TallGrassBlockID, block.FlowerBlockID, block.SmelterBlockID, block.PoweredSmelterBlockID,
		block.StickItemID, block.CoalItemID, block.IronIngotItemID, block.GoldIngotItemID, block.DiamondItemID,
		block.WoodPickaxeItemID, block.StonePickaxeItemID, block.IronPickaxeItemID,
		block.WoodAxeItemID, block.WoodShovelItemID,
	}
	for _, id := range ids {
		behavior, ok := block.Get(id)
		require.True(t, ok, "материал %d должен быть зарегистрирован", id)
		assert.Equal(t, id, behavior.ID())
		assert.NotEmpty(t, behavior.Name())
	}
}

func TestCapabilities(t *testing.T) {
	assert.True(t, block.IsSolid(block.StoneBlockID))
	assert.False(t, block.IsSolid(block.WaterBlockID))
	assert.True(t, block.IsLiquid(block.WaterBlockID))
	assert.True(t, block.IsStateful(block.SmelterBlockID))
	assert.True(t, block.IsDisplaceable(block.TallGrassBlockID))
	assert.True(t, block.IsDisplaceable(block.FlowerBlockID))
	assert.False(t, block.IsPlaceable(block.StickItemID))
	assert.True(t, block.IsTool(block.IronPickaxeItemID))

	assert.False(t, block.IsOccupied(block.AirBlockID))
	assert.True(t, block.IsOccupied(block.WaterBlockID))
	assert.True(t, block.IsOccupied(block.FlowerBlockID))
	assert.True(t, block.IsOccupied(block.DirtBlockID))

	unknown := block.BlockID(60000)
	require.False(t, block.IsValidBlockID(unknown))
	assert.True(t, block.IsEmpty(block.AirBlockID))
	assert.True(t, block.IsEmpty(unknown), "незарегистрированный материал считается пустым")
	assert.False(t, block.IsEmpty(block.WaterBlockID))
}

func TestDrops(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	hand := block.ItemStack{}
	woodPick := block.NewStack(block.WoodPickaxeItemID, 1)
	stonePick := block.NewStack(block.StonePickaxeItemID, 1)

	assert.Equal(t, []block.ItemStack{block.NewStack(block.DirtBlockID, 1)},
		block.MustGet(block.GrassBlockID).Drops(hand, rng), "трава превращается в землю")

	assert.Empty(t, block.MustGet(block.StoneBlockID).Drops(hand, rng), "камень рукой не добывается")
	assert.Equal(t, []block.ItemStack{block.NewStack(block.StoneBlockID, 1)},
		block.MustGet(block.StoneBlockID).Drops(woodPick, rng))

	assert.Empty(t, block.MustGet(block.IronOreBlockID).Drops(woodPick, rng), "железу нужна каменная кирка")
	assert.Equal(t, []block.ItemStack{block.NewStack(block.IronOreBlockID, 1)},
		block.MustGet(block.IronOreBlockID).Drops(stonePick, rng))

	assert.Equal(t, []block.ItemStack{block.NewStack(block.CoalItemID, 1)},
		block.MustGet(block.CoalOreBlockID).Drops(woodPick, rng))

	assert.Empty(t, block.MustGet(block.TallGrassBlockID).Drops(hand, rng))
	assert.Len(t, block.MustGet(block.WoodLogBlockID).Drops(woodPick, rng), 1, "одно бревно")

	sticks := 0
	for i := 0; i < 1000; i++ {
		sticks += len(block.MustGet(block.LeavesBlockID).Drops(hand, rng))
	}
	assert.InDelta(t, 200, sticks, 60, "палка выпадает примерно в 20% случаев")
}

func TestNewStack_ToolDurability(t *testing.T) {
	pick := block.NewStack(block.IronPickaxeItemID, 1)
	assert.Equal(t, 251, pick.Durability)
	assert.False(t, pick.Stackable(pick), "инструменты не складываются")

	coal := block.NewStack(block.CoalItemID, 5)
	assert.Zero(t, coal.Durability)
	assert.True(t, coal.Stackable(block.NewStack(block.CoalItemID, 1)))
	assert.Equal(t, 1, block.PropertiesOf(block.IronPickaxeItemID).StackLimit())
	assert.Equal(t, 64, block.PropertiesOf(block.CoalItemID).StackLimit())
}
