package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// playerAt ставит игрока на расстоянии dist от центра клетки target по оси X
func playerAt(target vec.Vec4Int, dist float64) *Player {
	return NewPlayer(1, "tester", target.Center().Sub(vec.Vec4{X: dist}))
}

func TestPlaceBlock_Reach(t *testing.T) {
	target := vec.Vec4Int{X: 5, Y: 0, Z: 2, W: -3}

	tests := []struct {
		name string
		dist float64
		want bool
	}{
		{"в пределах досягаемости", 2.99, true},
		{"слишком далеко", 3.01, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world := flatWorld(8)
			p := playerAt(target, tt.dist)
			p.Inventory.Add(block.NewStack(block.DirtBlockID, 2))

			assert.Equal(t, tt.want, PlaceBlock(world, p, target, block.DirtBlockID))
			if tt.want {
				assert.Equal(t, block.DirtBlockID, world.GetBlockID(target))
				assert.Equal(t, 1, p.Inventory.Count(block.DirtBlockID), "один блок потрачен")
			} else {
				assert.Equal(t, block.AirBlockID, world.GetBlockID(target))
				assert.Equal(t, 2, p.Inventory.Count(block.DirtBlockID))
			}
		})
	}
}

func TestBreakBlock_Reach(t *testing.T) {
	target := vec.Vec4Int{X: -4, Y: -1, Z: 0, W: 1}

	for _, tc := range []struct {
		dist float64
		want bool
	}{{2.99, true}, {3.01, false}} {
		world := flatWorld(8)
		world.blocks[target] = block.GrassBlockID
		p := playerAt(target, tc.dist)

		_, ok := BreakBlock(world, p, target)
		assert.Equal(t, tc.want, ok, "дистанция %.2f", tc.dist)
	}
}

func TestPlaceBlock_Rejections(t *testing.T) {
	world := flatWorld(4)
	p := NewPlayer(1, "tester", vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.5})
	p.Inventory.Add(block.NewStack(block.StoneBlockID, 5))
	p.Inventory.Add(block.NewStack(block.StickItemID, 5))

	assert.False(t, PlaceBlock(world, p, vec.Vec4Int{X: 1, Y: -1}, block.StoneBlockID), "клетка занята")
	assert.False(t, PlaceBlock(world, p, vec.Vec4Int{X: 1}, block.DirtBlockID), "нет в инвентаре")
	assert.False(t, PlaceBlock(world, p, vec.Vec4Int{X: 1}, block.StickItemID), "предмет нельзя поставить")
	assert.False(t, PlaceBlock(world, p, vec.Vec4Int{}, block.StoneBlockID), "внутрь игрока")

	// Мягкие растения замещаются
	world.blocks[vec.Vec4Int{X: 1}] = block.FlowerBlockID
	assert.True(t, PlaceBlock(world, p, vec.Vec4Int{X: 1}, block.StoneBlockID))
	assert.Equal(t, 4, p.Inventory.Count(block.StoneBlockID))

	// Незарегистрированный материал считается пустой клеткой
	world.blocks[vec.Vec4Int{X: -1}] = block.BlockID(60000)
	assert.True(t, PlaceBlock(world, p, vec.Vec4Int{X: -1}, block.StoneBlockID))
	assert.Equal(t, block.StoneBlockID, world.GetBlockID(vec.Vec4Int{X: -1}))
}

func TestBreakBlock_CreditsDropsAndWearsTool(t *testing.T) {
	world := flatWorld(4)
	p := NewPlayer(1, "tester", vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.5})
	p.Inventory.Add(block.NewStack(block.WoodPickaxeItemID, 1))
	require.True(t, p.Select(0))

	target := vec.Vec4Int{X: 1, Y: -1}
	drops, ok := BreakBlock(world, p, target)
	require.True(t, ok)
	assert.Equal(t, []block.ItemStack{block.NewStack(block.StoneBlockID, 1)}, drops)
	assert.Equal(t, 1, p.Inventory.Count(block.StoneBlockID))
	assert.Equal(t, block.AirBlockID, world.GetBlockID(target))
	assert.Equal(t, block.PropertiesOf(block.WoodPickaxeItemID).MaxDurability-1, p.SelectedStack().Durability)

	// Последний удар ломает инструмент
	p.SelectedStack().Durability = 1
	_, ok = BreakBlock(world, p, vec.Vec4Int{X: -1, Y: -1})
	require.True(t, ok)
	assert.True(t, p.SelectedStack().IsEmpty(), "инструмент сломан")

	// Воздух и вода не разрушаются
	_, ok = BreakBlock(world, p, vec.Vec4Int{X: 1, Y: 1})
	assert.False(t, ok)
	world.blocks[vec.Vec4Int{Z: 1}] = block.WaterBlockID
	_, ok = BreakBlock(world, p, vec.Vec4Int{Z: 1})
	assert.False(t, ok)
}

func TestBreakBlock_HandOnStoneGivesNothing(t *testing.T) {
	world := flatWorld(2)
	p := NewPlayer(1, "tester", vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.5})

	drops, ok := BreakBlock(world, p, vec.Vec4Int{Y: -1})
	assert.True(t, ok, "блок разрушен")
	assert.Empty(t, drops, "но без кирки дропа нет")
	assert.Equal(t, block.AirBlockID, world.GetBlockID(vec.Vec4Int{Y: -1}))
}
