package vec

import (
	"fmt"
	"math"
)

// ChunkSize — длина ребра чанка в блоках (S). Объём чанка — S^4.
const ChunkSize = 16

// Vec4Int представляет целочисленные 4D координаты блока или чанка
type Vec4Int struct {
	X, Y, Z, W int
}

// Add складывает два вектора
func (v Vec4Int) Add(other Vec4Int) Vec4Int {
	return Vec4Int{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z, W: v.W + other.W}
}

// Sub вычитает вектор
func (v Vec4Int) Sub(other Vec4Int) Vec4Int {
	return Vec4Int{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z, W: v.W - other.W}
}

// Mul умножает вектор на целое
func (v Vec4Int) Mul(k int) Vec4Int {
	return Vec4Int{X: v.X * k, Y: v.Y * k, Z: v.Z * k, W: v.W * k}
}

// Equals проверяет равенство векторов
func (v Vec4Int) Equals(other Vec4Int) bool {
	return v == other
}

// ManhattanTo возвращает манхэттенское расстояние
func (v Vec4Int) ManhattanTo(other Vec4Int) int {
	d := v.Sub(other)
	return abs(d.X) + abs(d.Y) + abs(d.Z) + abs(d.W)
}

// ChebyshevTo возвращает максимум модулей разностей по осям
func (v Vec4Int) ChebyshevTo(other Vec4Int) int {
	d := v.Sub(other)
	return max(abs(d.X), abs(d.Y), abs(d.Z), abs(d.W))
}

// DistanceTo вычисляет евклидово расстояние до другой точки
func (v Vec4Int) DistanceTo(other Vec4Int) float64 {
	d := v.Sub(other)
	return math.Sqrt(float64(d.X*d.X + d.Y*d.Y + d.Z*d.Z + d.W*d.W))
}

// Mod возвращает покомпонентный остаток, всегда неотрицательный
func (v Vec4Int) Mod(m int) Vec4Int {
	return Vec4Int{X: FloorMod(v.X, m), Y: FloorMod(v.Y, m), Z: FloorMod(v.Z, m), W: FloorMod(v.W, m)}
}

// FloorDiv делит покомпонентно с округлением к минус бесконечности
func (v Vec4Int) FloorDiv(m int) Vec4Int {
	return Vec4Int{X: FloorDiv(v.X, m), Y: FloorDiv(v.Y, m), Z: FloorDiv(v.Z, m), W: FloorDiv(v.W, m)}
}

// ToChunkCoords преобразует глобальные координаты в координаты чанка
func (v Vec4Int) ToChunkCoords() Vec4Int {
	return v.FloorDiv(ChunkSize)
}

// LocalInChunk возвращает локальные координаты внутри чанка, каждая в [0, ChunkSize)
func (v Vec4Int) LocalInChunk() Vec4Int {
	return v.Mod(ChunkSize)
}

// ChunkOrigin возвращает мировые координаты нулевого блока чанка с координатами v
func (v Vec4Int) ChunkOrigin() Vec4Int {
	return v.Mul(ChunkSize)
}

// ToVec4 преобразует в вещественный вектор
func (v Vec4Int) ToVec4() Vec4 {
	return Vec4{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z), W: float64(v.W)}
}

// Center возвращает центр клетки
func (v Vec4Int) Center() Vec4 {
	return v.ToVec4().Add(Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5})
}

// String возвращает строковое представление
func (v Vec4Int) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", v.X, v.Y, v.Z, v.W)
}

// FloorDiv — целочисленное деление с округлением вниз
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod — остаток, согласованный с FloorDiv
func FloorMod(a, m int) int {
	return ((a % m) + m) % m
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
