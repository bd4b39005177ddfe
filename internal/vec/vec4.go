package vec

import (
	"fmt"
	"math"
)

// Epsilon — допуск при сравнении вещественных векторов
const Epsilon = 1e-9

// normalizeThreshold — ниже этой длины вектор считается нулевым
const normalizeThreshold = 1e-10

// Vec4 представляет 4D координаты с плавающей точкой (X, Y — вертикаль, Z, W)
type Vec4 struct {
	X, Y, Z, W float64
}

// Add складывает два вектора
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z, W: v.W + other.W}
}

// Sub вычитает вектор
func (v Vec4) Sub(other Vec4) Vec4 {
	return Vec4{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z, W: v.W - other.W}
}

// Mul умножает вектор на скаляр
func (v Vec4) Mul(scalar float64) Vec4 {
	return Vec4{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar, W: v.W * scalar}
}

// Dot возвращает скалярное произведение
func (v Vec4) Dot(other Vec4) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z + v.W*other.W
}

// LengthSquared возвращает квадрат длины вектора
func (v Vec4) LengthSquared() float64 {
	return v.Dot(v)
}

// Length возвращает длину вектора
func (v Vec4) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// Normalized возвращает нормализованный вектор.
// Для почти нулевых векторов возвращается нулевой вектор.
func (v Vec4) Normalized() Vec4 {
	length := v.Length()
	if length < normalizeThreshold {
		return Vec4{}
	}
	return v.Mul(1 / length)
}

// DistanceSquaredTo возвращает квадрат расстояния до другой точки
func (v Vec4) DistanceSquaredTo(other Vec4) float64 {
	return v.Sub(other).LengthSquared()
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec4) DistanceTo(other Vec4) float64 {
	return math.Sqrt(v.DistanceSquaredTo(other))
}

// Floor округляет все компоненты вниз
func (v Vec4) Floor() Vec4 {
	return Vec4{X: math.Floor(v.X), Y: math.Floor(v.Y), Z: math.Floor(v.Z), W: math.Floor(v.W)}
}

// ToVec4Int преобразует в целочисленные координаты (floor, затем приведение)
func (v Vec4) ToVec4Int() Vec4Int {
	f := v.Floor()
	return Vec4Int{X: int(f.X), Y: int(f.Y), Z: int(f.Z), W: int(f.W)}
}

// Equals сравнивает векторы с допуском Epsilon
func (v Vec4) Equals(other Vec4) bool {
	return math.Abs(v.X-other.X) < Epsilon &&
		math.Abs(v.Y-other.Y) < Epsilon &&
		math.Abs(v.Z-other.Z) < Epsilon &&
		math.Abs(v.W-other.W) < Epsilon
}

// Key возвращает ключ для использования в картах.
// Компоненты квантуются по сетке Epsilon, поэтому точно совпадающие векторы
// всегда дают одинаковый ключ.
func (v Vec4) Key() [4]int64 {
	q := func(f float64) int64 { return int64(math.Round(f / Epsilon)) }
	return [4]int64{q(v.X), q(v.Y), q(v.Z), q(v.W)}
}

// String возвращает строковое представление
func (v Vec4) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f, %.3f)", v.X, v.Y, v.Z, v.W)
}
