package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxel4d/internal/world/block"
)

func TestInventory_AddStacksUpToLimit(t *testing.T) {
	var inv Inventory

	rest := inv.Add(block.NewStack(block.DirtBlockID, 100))
	assert.True(t, rest.IsEmpty())
	assert.Equal(t, 64, inv.Slots[0].Count)
	assert.Equal(t, 36, inv.Slots[1].Count)

	inv.Add(block.NewStack(block.DirtBlockID, 30))
	assert.Equal(t, 64, inv.Slots[1].Count, "сначала докладываем в неполный стак")
	assert.Equal(t, 2, inv.Slots[2].Count)
	assert.Equal(t, 130, inv.Count(block.DirtBlockID))
}

func TestInventory_ToolsDoNotStack(t *testing.T) {
	var inv Inventory
	inv.Add(block.NewStack(block.WoodAxeItemID, 1))
	inv.Add(block.NewStack(block.WoodAxeItemID, 1))

	assert.Equal(t, 1, inv.Slots[0].Count)
	assert.Equal(t, 1, inv.Slots[1].Count)
}

func TestInventory_FullReturnsLeftover(t *testing.T) {
	var inv Inventory
	for i := range inv.Slots {
		inv.Slots[i] = block.NewStack(block.StoneBlockID, 64)
	}
	rest := inv.Add(block.NewStack(block.DirtBlockID, 3))
	assert.Equal(t, 3, rest.Count)
	assert.Equal(t, block.DirtBlockID, rest.ID)
}

func TestInventory_Remove(t *testing.T) {
	var inv Inventory
	inv.Add(block.NewStack(block.CoalItemID, 70))

	assert.False(t, inv.Remove(block.CoalItemID, 71), "не хватает")
	assert.Equal(t, 70, inv.Count(block.CoalItemID))

	assert.True(t, inv.Remove(block.CoalItemID, 66))
	assert.Equal(t, 4, inv.Count(block.CoalItemID))
	assert.True(t, inv.Slots[0].IsEmpty())
}

func TestPlayer_HealthAndSelection(t *testing.T) {
	p := NewPlayer(7, "tester", PlayerSize)
	assert.Equal(t, MaxHealth, p.Health)

	assert.False(t, p.Damage(5))
	p.Heal(100)
	assert.Equal(t, MaxHealth, p.Health, "не выше максимума")
	assert.True(t, p.Damage(MaxHealth+3))
	assert.Zero(t, p.Health, "не ниже нуля")
	assert.True(t, p.IsDead())

	assert.True(t, p.Select(8))
	assert.False(t, p.Select(9))
	assert.Equal(t, 8, p.Selected)
}
