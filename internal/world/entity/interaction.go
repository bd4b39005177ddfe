package entity

import (
	"github.com/annel0/voxel4d/internal/physics"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// ReachDistance — максимальное расстояние до центра блока для установки и разрушения
const ReachDistance = 3.0

// Editor — изменяемое представление мира для взаимодействия игрока с блоками
type Editor interface {
	WorldView
	SetBlock(pos vec.Vec4Int, id block.BlockID) bool
	// BreakBlockWith разрушает блок инструментом и возвращает дроп
	BreakBlockWith(pos vec.Vec4Int, tool block.ItemStack) []block.ItemStack
	DropItems(pos vec.Vec4Int, items []block.ItemStack)
}

// InReach проверяет дистанцию от позиции игрока до центра клетки
func InReach(p *Player, target vec.Vec4Int) bool {
	return p.Position.DistanceTo(target.Center()) <= ReachDistance
}

// PlaceBlock ставит материал из инвентаря в клетку target
func PlaceBlock(world Editor, p *Player, target vec.Vec4Int, id block.BlockID) bool {
	if !InReach(p, target) || !block.IsPlaceable(id) {
		return false
	}

	current := world.GetBlockID(target)
	if !block.IsEmpty(current) && !block.IsDisplaceable(current) {
		return false
	}

	if p.Inventory.Count(id) < 1 {
		return false
	}

	// Блок нельзя поставить внутрь самого игрока
	origin := target.ToVec4()
	cell := physics.AABB4{Min: origin, Max: origin.Add(vec.Vec4{X: 1, Y: 1, Z: 1, W: 1})}
	if cell.Intersects(p.Box()) {
		return false
	}

	if !world.SetBlock(target, id) {
		return false
	}
	p.Inventory.Remove(id, 1)
	return true
}

// BreakBlock разрушает блок в клетке target выбранным инструментом.
// Дроп зачисляется в инвентарь; то, что не поместилось, выпадает в мир.
func BreakBlock(world Editor, p *Player, target vec.Vec4Int) ([]block.ItemStack, bool) {
	if !InReach(p, target) {
		return nil, false
	}

	id := world.GetBlockID(target)
	if id == block.AirBlockID || !block.IsBreakable(id) {
		return nil, false
	}

	tool := p.SelectedStack()
	drops := world.BreakBlockWith(target, *tool)

	var leftovers []block.ItemStack
	for _, stack := range drops {
		if rest := p.Inventory.Add(stack); !rest.IsEmpty() {
			leftovers = append(leftovers, rest)
		}
	}
	if len(leftovers) > 0 {
		world.DropItems(target, leftovers)
	}

	// Инструмент изнашивается и ломается на нуле
	if !tool.IsEmpty() && block.IsTool(tool.ID) {
		tool.Durability--
		if tool.Durability <= 0 {
			*tool = block.ItemStack{}
		}
	}

	return drops, true
}
