package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/voxel4d/internal/vec"
)

func TestBoxAt(t *testing.T) {
	box := BoxAt(vec.Vec4{X: 1, Y: 2, Z: 3, W: 4}, vec.Vec4{X: 0.6, Y: 1.8, Z: 0.6, W: 0.6})

	assert.InDelta(t, 0.7, box.Min.X, 1e-9)
	assert.InDelta(t, 1.3, box.Max.X, 1e-9)
	assert.InDelta(t, 2.0, box.Min.Y, 1e-9, "по Y коллайдер начинается от ног")
	assert.InDelta(t, 3.8, box.Max.Y, 1e-9)
	assert.InDelta(t, 3.7, box.Min.W, 1e-9)
}

func TestCellsSpanned(t *testing.T) {
	box := BoxAt(vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.5}, vec.Vec4{X: 0.6, Y: 1.8, Z: 0.6, W: 0.6})

	var cells []vec.Vec4Int
	CellsSpanned(box, func(c vec.Vec4Int) bool {
		cells = append(cells, c)
		return true
	})

	// Стоящий в центре клетки игрок занимает две клетки по высоте
	assert.Equal(t, []vec.Vec4Int{{}, {Y: 1}}, cells)

	// Коллайдер на границе клеток задевает обе стороны по каждой оси
	wide := BoxAt(vec.Vec4{X: 1, Y: 0, Z: 1, W: 1}, vec.Vec4{X: 0.6, Y: 0.5, Z: 0.6, W: 0.6})
	count := 0
	CellsSpanned(wide, func(vec.Vec4Int) bool {
		count++
		return true
	})
	assert.Equal(t, 8, count, "2×1×2×2 клеток")
}

func TestCellsSpanned_EarlyStop(t *testing.T) {
	box := BoxAt(vec.Vec4{X: 1, Y: 0, Z: 1, W: 1}, vec.Vec4{X: 1.5, Y: 1.5, Z: 1.5, W: 1.5})
	calls := 0
	ok := CellsSpanned(box, func(vec.Vec4Int) bool {
		calls++
		return false
	})
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestCanOccupy(t *testing.T) {
	floor := func(c vec.Vec4Int) bool { return c.Y < 0 }
	size := vec.Vec4{X: 0.6, Y: 1.8, Z: 0.6, W: 0.6}

	assert.True(t, CanOccupy(BoxAt(vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.5}, size), floor), "стоит на полу")
	assert.False(t, CanOccupy(BoxAt(vec.Vec4{X: 0.5, Y: -0.1, Z: 0.5, W: 0.5}, size), floor), "провалился в пол")

	// Стена по оси W
	wall := func(c vec.Vec4Int) bool { return c.W == 1 }
	assert.False(t, CanOccupy(BoxAt(vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.8}, size), wall))
	assert.True(t, CanOccupy(BoxAt(vec.Vec4{X: 0.5, Y: 0, Z: 0.5, W: 0.7}, size), wall), "касание грани не считается")
}

func TestIntersects(t *testing.T) {
	a := AABB4{Max: vec.Vec4{X: 1, Y: 1, Z: 1, W: 1}}
	b := a.Translate(vec.Vec4{W: 0.5})
	c := a.Translate(vec.Vec4{W: 1})

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c), "соприкосновение по W не пересечение")
	assert.True(t, a.Contains(vec.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5}))
}
