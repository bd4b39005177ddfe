package entity

import "github.com/annel0/voxel4d/internal/world/block"

const (
	InventorySize = 36
	HotbarSize    = 9
)

// Inventory — слоты игрока; первые HotbarSize слотов образуют хотбар
type Inventory struct {
	Slots [InventorySize]block.ItemStack
}

// Add кладёт стак в инвентарь: сначала докладывает в подходящие стаки,
// затем в пустые слоты. Возвращает то, что не поместилось.
func (inv *Inventory) Add(stack block.ItemStack) block.ItemStack {
	if stack.IsEmpty() {
		return block.ItemStack{}
	}
	limit := block.PropertiesOf(stack.ID).StackLimit()

	for i := range inv.Slots {
		slot := &inv.Slots[i]
		if slot.IsEmpty() || !slot.Stackable(stack) || slot.Count >= limit {
			continue
		}
		moved := min(limit-slot.Count, stack.Count)
		slot.Count += moved
		stack.Count -= moved
		if stack.Count == 0 {
			return block.ItemStack{}
		}
	}

	for i := range inv.Slots {
		slot := &inv.Slots[i]
		if !slot.IsEmpty() {
			continue
		}
		moved := min(limit, stack.Count)
		*slot = stack
		slot.Count = moved
		stack.Count -= moved
		if stack.Count == 0 {
			return block.ItemStack{}
		}
	}

	return stack
}

// Remove забирает n единиц материала; при нехватке инвентарь не меняется
func (inv *Inventory) Remove(id block.BlockID, n int) bool {
	if n <= 0 {
		return true
	}
	if inv.Count(id) < n {
		return false
	}
	for i := range inv.Slots {
		slot := &inv.Slots[i]
		if slot.IsEmpty() || slot.ID != id {
			continue
		}
		taken := min(slot.Count, n)
		slot.Count -= taken
		n -= taken
		if slot.Count == 0 {
			*slot = block.ItemStack{}
		}
		if n == 0 {
			break
		}
	}
	return true
}

// Count возвращает количество материала во всех слотах
func (inv *Inventory) Count(id block.BlockID) int {
	total := 0
	for _, slot := range inv.Slots {
		if !slot.IsEmpty() && slot.ID == id {
			total += slot.Count
		}
	}
	return total
}
