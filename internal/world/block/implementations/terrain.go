package implementations

import "github.com/annel0/voxel4d/internal/world/block"

const terrainCaps = block.CapSolid | block.CapBreakable | block.CapTexture | block.CapPlaceable

// Камень, земля, трава, дерево и листва
func registerTerrain() {
	block.Register(block.StoneBlockID, NewSimpleBehavior(block.StoneBlockID, block.Properties{
		Name:      "Stone",
		Caps:      terrainCaps,
		BreakType: block.ToolPickaxe,
		BreakTier: 1,
	}, nil))

	block.Register(block.DirtBlockID, NewSimpleBehavior(block.DirtBlockID, block.Properties{
		Name:      "Dirt",
		Caps:      terrainCaps,
		BreakType: block.ToolShovel,
	}, nil))

	// Трава при разрушении превращается в землю
	block.Register(block.GrassBlockID, NewSimpleBehavior(block.GrassBlockID, block.Properties{
		Name:      "Grass Block",
		Caps:      terrainCaps,
		BreakType: block.ToolShovel,
	}, dropsOf(block.DirtBlockID, 1)))

	block.Register(block.WoodLogBlockID, NewSimpleBehavior(block.WoodLogBlockID, block.Properties{
		Name:      "Wood Log",
		Caps:      terrainCaps,
		BreakType: block.ToolAxe,
	}, nil))

	// Листва изредка роняет палку
	block.Register(block.LeavesBlockID, NewSimpleBehavior(block.LeavesBlockID, block.Properties{
		Name: "Leaves",
		Caps: terrainCaps,
	}, dropsChance(block.StickItemID, 0.2)))

	// Мягкие растения: вода их смывает, сущности проходят насквозь
	block.Register(block.TallGrassBlockID, NewSimpleBehavior(block.TallGrassBlockID, block.Properties{
		Name: "Tall Grass",
		Caps: block.CapBreakable | block.CapTexture | block.CapPlaceable | block.CapDisplaceable,
	}, noDrops))

	block.Register(block.FlowerBlockID, NewSimpleBehavior(block.FlowerBlockID, block.Properties{
		Name: "Flower",
		Caps: block.CapBreakable | block.CapTexture | block.CapPlaceable | block.CapDisplaceable,
	}, nil))
}

// Руды добываются киркой нужного уровня
func registerOres() {
	block.Register(block.CoalOreBlockID, NewSimpleBehavior(block.CoalOreBlockID, block.Properties{
		Name: "Coal Ore", Caps: terrainCaps, BreakType: block.ToolPickaxe, BreakTier: 1,
	}, dropsOf(block.CoalItemID, 1)))

	block.Register(block.IronOreBlockID, NewSimpleBehavior(block.IronOreBlockID, block.Properties{
		Name: "Iron Ore", Caps: terrainCaps, BreakType: block.ToolPickaxe, BreakTier: 2,
	}, nil))

	block.Register(block.GoldOreBlockID, NewSimpleBehavior(block.GoldOreBlockID, block.Properties{
		Name: "Gold Ore", Caps: terrainCaps, BreakType: block.ToolPickaxe, BreakTier: 3,
	}, nil))

	block.Register(block.DiamondOreBlockID, NewSimpleBehavior(block.DiamondOreBlockID, block.Properties{
		Name: "Diamond Ore", Caps: terrainCaps, BreakType: block.ToolPickaxe, BreakTier: 3,
	}, dropsOf(block.DiamondItemID, 1)))
}
