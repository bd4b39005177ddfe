package entity

import (
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	_ "github.com/annel0/voxel4d/internal/world/block/implementations"
)

// mapWorld — простой мир на карте для тестов физики и взаимодействия
type mapWorld struct {
	blocks  map[vec.Vec4Int]block.BlockID
	dropped []block.ItemStack
}

func newMapWorld() *mapWorld {
	return &mapWorld{blocks: make(map[vec.Vec4Int]block.BlockID)}
}

// flatWorld возвращает мир с полом из камня на y = -1 в квадрате радиуса r
func flatWorld(r int) *mapWorld {
	w := newMapWorld()
	for x := -r; x <= r; x++ {
		for z := -r; z <= r; z++ {
			for ww := -r; ww <= r; ww++ {
				w.blocks[vec.Vec4Int{X: x, Y: -1, Z: z, W: ww}] = block.StoneBlockID
			}
		}
	}
	return w
}

func (w *mapWorld) GetBlockID(pos vec.Vec4Int) block.BlockID {
	return w.blocks[pos]
}

func (w *mapWorld) SetBlock(pos vec.Vec4Int, id block.BlockID) bool {
	if id == block.AirBlockID {
		delete(w.blocks, pos)
	} else {
		w.blocks[pos] = id
	}
	return true
}

func (w *mapWorld) BreakBlockWith(pos vec.Vec4Int, tool block.ItemStack) []block.ItemStack {
	id := w.GetBlockID(pos)
	drops := block.MustGet(id).Drops(tool, nil)
	delete(w.blocks, pos)
	return drops
}

func (w *mapWorld) DropItems(pos vec.Vec4Int, items []block.ItemStack) {
	w.dropped = append(w.dropped, items...)
}
