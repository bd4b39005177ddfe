package physics

import (
	"math"

	"github.com/annel0/voxel4d/internal/vec"
)

// skin — зазор, исключающий касание грани из пересечения
const skin = 1e-6

// AABB4 представляет выровненный по осям параллелепипед в 4D
type AABB4 struct {
	Min vec.Vec4
	Max vec.Vec4
}

// BoxAt строит коллайдер сущности: по X/Z/W центрирован на позиции,
// по Y начинается от ног.
func BoxAt(pos, size vec.Vec4) AABB4 {
	half := vec.Vec4{X: size.X / 2, Z: size.Z / 2, W: size.W / 2}
	return AABB4{
		Min: vec.Vec4{X: pos.X - half.X, Y: pos.Y, Z: pos.Z - half.Z, W: pos.W - half.W},
		Max: vec.Vec4{X: pos.X + half.X, Y: pos.Y + size.Y, Z: pos.Z + half.Z, W: pos.W + half.W},
	}
}

// Translate возвращает коллайдер, сдвинутый на d
func (b AABB4) Translate(d vec.Vec4) AABB4 {
	return AABB4{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Intersects проверяет строгое пересечение двух коллайдеров
func (b AABB4) Intersects(o AABB4) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y &&
		b.Min.Z < o.Max.Z && b.Max.Z > o.Min.Z &&
		b.Min.W < o.Max.W && b.Max.W > o.Min.W
}

// Contains проверяет, лежит ли точка внутри коллайдера
func (b AABB4) Contains(p vec.Vec4) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z &&
		p.W >= b.Min.W && p.W < b.Max.W
}

// cellRange возвращает диапазон целых клеток, которые задевает отрезок [lo, hi)
func cellRange(lo, hi float64) (int, int) {
	return int(math.Floor(lo + skin)), int(math.Floor(hi - skin))
}

// CellsSpanned вызывает fn для каждой целой клетки, которую задевает коллайдер.
// Если fn возвращает false, обход прекращается и результат false.
func CellsSpanned(b AABB4, fn func(cell vec.Vec4Int) bool) bool {
	x0, x1 := cellRange(b.Min.X, b.Max.X)
	y0, y1 := cellRange(b.Min.Y, b.Max.Y)
	z0, z1 := cellRange(b.Min.Z, b.Max.Z)
	w0, w1 := cellRange(b.Min.W, b.Max.W)

	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			for z := z0; z <= z1; z++ {
				for w := w0; w <= w1; w++ {
					if !fn(vec.Vec4Int{X: x, Y: y, Z: z, W: w}) {
						return false
					}
				}
			}
		}
	}
	return true
}

// CanOccupy проверяет, что коллайдер не задевает ни одной занятой клетки.
// isSolid сообщает, блокирует ли клетка движение.
func CanOccupy(b AABB4, isSolid func(vec.Vec4Int) bool) bool {
	return CellsSpanned(b, func(cell vec.Vec4Int) bool {
		return !isSolid(cell)
	})
}
