package implementations

import "github.com/annel0/voxel4d/internal/world/block"

// Предметы, которые нельзя поставить в мир
func registerItems() {
	items := map[block.BlockID]string{
		block.StickItemID:     "Stick",
		block.CoalItemID:      "Coal",
		block.IronIngotItemID: "Iron Ingot",
		block.GoldIngotItemID: "Gold Ingot",
		block.DiamondItemID:   "Diamond",
	}
	for id, name := range items {
		block.Register(id, NewSimpleBehavior(id, block.Properties{Name: name, Caps: block.CapTexture}, nil))
	}

	tools := []struct {
		id         block.BlockID
		name       string
		toolType   block.ToolType
		tier       int
		durability int
	}{
		{block.WoodPickaxeItemID, "Wood Pickaxe", block.ToolPickaxe, 1, 60},
		{block.StonePickaxeItemID, "Stone Pickaxe", block.ToolPickaxe, 2, 132},
		{block.IronPickaxeItemID, "Iron Pickaxe", block.ToolPickaxe, 3, 251},
		{block.WoodAxeItemID, "Wood Axe", block.ToolAxe, 1, 60},
		{block.WoodShovelItemID, "Wood Shovel", block.ToolShovel, 1, 60},
	}
	for _, t := range tools {
		block.Register(t.id, NewSimpleBehavior(t.id, block.Properties{
			Name:          t.name,
			Caps:          block.CapTexture | block.CapTool,
			ToolType:      t.toolType,
			ToolTier:      t.tier,
			MaxDurability: t.durability,
			MaxStack:      1,
		}, nil))
	}
}
