package world

import (
	"errors"
	"fmt"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/block/implementations"
)

// ErrNotSmelter возвращается, если в клетке нет плавильни
var ErrNotSmelter = errors.New("в клетке нет плавильни")

// smelterAt возвращает состояние плавильни, создавая его при отсутствии
func (w *World) smelterAt(pos vec.Vec4Int) (*block.SmelterState, error) {
	id := w.GetBlock(pos)
	if id != block.SmelterBlockID && id != block.PoweredSmelterBlockID {
		return nil, fmt.Errorf("%w: %s", ErrNotSmelter, pos)
	}
	if state, ok := w.GetState(pos).(*block.SmelterState); ok && state != nil {
		return state, nil
	}
	state := block.MustGet(id).CreateState().(*block.SmelterState)
	w.SetState(pos, state)
	return state, nil
}

// SmelterInsert кладёт стак в слот плавильни и возвращает то, что не поместилось
func (w *World) SmelterInsert(pos vec.Vec4Int, slot implementations.SmelterSlot, stack block.ItemStack) (block.ItemStack, error) {
	state, err := w.smelterAt(pos)
	if err != nil {
		return stack, err
	}
	rest := implementations.InsertIntoSmelter(state, slot, stack)
	if rest.Count != stack.Count || rest.IsEmpty() {
		w.SetState(pos, state)
	}
	return rest, nil
}

// SmelterTake забирает результат переплавки
func (w *World) SmelterTake(pos vec.Vec4Int) (block.ItemStack, error) {
	state, err := w.smelterAt(pos)
	if err != nil {
		return block.ItemStack{}, err
	}
	out := implementations.TakeSmelterOutput(state)
	if !out.IsEmpty() {
		w.SetState(pos, state)
	}
	return out, nil
}
