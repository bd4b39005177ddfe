package implementations

import (
	"math/rand"
	"sort"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// mockBlockAPI реализует block.BlockAPI для тестирования
type mockBlockAPI struct {
	blocks  map[vec.Vec4Int]block.BlockID
	states  map[vec.Vec4Int]block.State
	dropped map[vec.Vec4Int][]block.ItemStack
	writes  int
	rng     *rand.Rand
}

func newMockBlockAPI() *mockBlockAPI {
	return &mockBlockAPI{
		blocks:  make(map[vec.Vec4Int]block.BlockID),
		states:  make(map[vec.Vec4Int]block.State),
		dropped: make(map[vec.Vec4Int][]block.ItemStack),
		rng:     rand.New(rand.NewSource(1)),
	}
}

func (m *mockBlockAPI) GetBlockID(pos vec.Vec4Int) block.BlockID {
	if id, exists := m.blocks[pos]; exists {
		return id
	}
	return block.AirBlockID
}

func (m *mockBlockAPI) SetBlock(pos vec.Vec4Int, id block.BlockID) {
	m.writes++
	delete(m.states, pos)
	if id == block.AirBlockID {
		delete(m.blocks, pos)
		return
	}
	m.blocks[pos] = id
}

func (m *mockBlockAPI) GetState(pos vec.Vec4Int) block.State {
	return m.states[pos]
}

func (m *mockBlockAPI) SetState(pos vec.Vec4Int, state block.State) {
	m.writes++
	m.states[pos] = state
}

func (m *mockBlockAPI) BreakBlock(pos vec.Vec4Int) []block.ItemStack {
	id := m.GetBlockID(pos)
	behavior := block.MustGet(id)
	behavior.OnBreak(m, pos)
	drops := behavior.Drops(block.ItemStack{}, m.rng)
	m.SetBlock(pos, block.AirBlockID)
	return drops
}

func (m *mockBlockAPI) DropItems(pos vec.Vec4Int, items []block.ItemStack) {
	m.dropped[pos] = append(m.dropped[pos], items...)
}

func (m *mockBlockAPI) Rand() *rand.Rand {
	return m.rng
}

// fill заполняет параллелепипед материалом (границы включительно)
func (m *mockBlockAPI) fill(from, to vec.Vec4Int, id block.BlockID) {
	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				for w := from.W; w <= to.W; w++ {
					m.SetBlock(vec.Vec4Int{X: x, Y: y, Z: z, W: w}, id)
				}
			}
		}
	}
}

// level возвращает уровень жидкости в клетке (-1 — не жидкость)
func (m *mockBlockAPI) level(pos vec.Vec4Int) int {
	if m.GetBlockID(pos) != block.WaterBlockID {
		return -1
	}
	if state, ok := m.states[pos].(*block.LiquidState); ok {
		return state.Level
	}
	return -1
}

// runLiquids прогоняет все жидкие клетки в детерминированном порядке
func (m *mockBlockAPI) runLiquids(b *WaterBehavior, tick uint64) int {
	var positions []vec.Vec4Int
	for pos, id := range m.blocks {
		if id == block.WaterBlockID {
			positions = append(positions, pos)
		}
	}
	sortPositions(positions)

	changed := 0
	for _, pos := range positions {
		if m.GetBlockID(pos) != block.WaterBlockID {
			continue
		}
		if b.TickUpdate(m, pos, tick) {
			changed++
		}
	}
	return changed
}

func sortPositions(p []vec.Vec4Int) {
	sort.Slice(p, func(i, j int) bool {
		a, b := p[i], p[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.W < b.W
	})
}
