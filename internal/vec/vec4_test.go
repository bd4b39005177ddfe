package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec4Int_ChunkSplitRoundTrip(t *testing.T) {
	// Разбиение на чанк и локальные координаты должно быть обратимым, включая отрицательные координаты
	for x := -40; x <= 40; x += 3 {
		for _, y := range []int{-17, -16, -15, -1, 0, 1, 15, 16, 17} {
			p := Vec4Int{X: x, Y: y, Z: -x, W: x * 7}
			chunk := p.ToChunkCoords()
			local := p.LocalInChunk()

			assert.Equal(t, p, chunk.Mul(ChunkSize).Add(local), "разбиение %v", p)
			for _, c := range []int{local.X, local.Y, local.Z, local.W} {
				assert.GreaterOrEqual(t, c, 0)
				assert.Less(t, c, ChunkSize)
			}
		}
	}
}

func TestFloorDivAndMod(t *testing.T) {
	assert.Equal(t, -1, FloorDiv(-1, 16))
	assert.Equal(t, -1, FloorDiv(-16, 16))
	assert.Equal(t, -2, FloorDiv(-17, 16))
	assert.Equal(t, 0, FloorDiv(15, 16))
	assert.Equal(t, 15, FloorMod(-1, 16))
	assert.Equal(t, 0, FloorMod(-16, 16))
	assert.Equal(t, 3, FloorMod(19, 16))
}

func TestVec4_Normalized(t *testing.T) {
	v := Vec4{X: 3, Z: 4}
	n := v.Normalized()
	assert.InDelta(t, 1.0, n.Length(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)

	// Почти нулевой вектор нормализуется в ноль без деления на ноль
	tiny := Vec4{X: 1e-12}
	assert.Equal(t, Vec4{}, tiny.Normalized())
}

func TestVec4_ToVec4IntFloors(t *testing.T) {
	v := Vec4{X: -0.5, Y: 1.99, Z: -2.0, W: 0}
	assert.Equal(t, Vec4Int{X: -1, Y: 1, Z: -2, W: 0}, v.ToVec4Int())
}

func TestVec4_EqualsAndKey(t *testing.T) {
	a := Vec4{X: 1, Y: 2, Z: 3, W: 4}
	b := Vec4{X: 1 + 1e-12, Y: 2, Z: 3, W: 4}
	assert.True(t, a.Equals(b))
	assert.Equal(t, a.Key(), a.Key())
	assert.False(t, a.Equals(Vec4{X: 1.1, Y: 2, Z: 3, W: 4}))
}

func TestVec4Int_Distances(t *testing.T) {
	a := Vec4Int{X: 1, Y: -2, Z: 3, W: 0}
	b := Vec4Int{X: -1, Y: 2, Z: 3, W: 5}
	assert.Equal(t, 11, a.ManhattanTo(b))
	assert.Equal(t, 5, a.ChebyshevTo(b))
	assert.InDelta(t, 6.7082, a.DistanceTo(b), 1e-4)
	assert.Equal(t, Vec4{X: 1.5, Y: -1.5, Z: 3.5, W: 0.5}, a.Center())
}
