package world

import (
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// Generator заполняет новый чанк содержимым
type Generator interface {
	Generate(c *Chunk)
}

// FlatGenerator генерирует плоский мир: y < 0 — камень, y == 0 — трава, выше — воздух.
// Результат зависит только от мировых координат.
type FlatGenerator struct{}

// NewFlatGenerator создаёт генератор плоского мира
func NewFlatGenerator() *FlatGenerator {
	return &FlatGenerator{}
}

// BlockAt возвращает материал плоского мира в мировой позиции
func (g *FlatGenerator) BlockAt(pos vec.Vec4Int) block.BlockID {
	switch {
	case pos.Y < 0:
		return block.StoneBlockID
	case pos.Y == 0:
		return block.GrassBlockID
	default:
		return block.AirBlockID
	}
}

// Generate заполняет чанк по правилу плоского мира
func (g *FlatGenerator) Generate(c *Chunk) {
	switch {
	case c.Coords.Y < 0:
		c.Fill(block.StoneBlockID)
	case c.Coords.Y > 0:
		c.Fill(block.AirBlockID)
	default:
		// Чанк с поверхностью: трава на локальном y = 0, над ней воздух
		c.Fill(block.AirBlockID)
		for x := 0; x < ChunkSize; x++ {
			for z := 0; z < ChunkSize; z++ {
				for w := 0; w < ChunkSize; w++ {
					c.SetBlock(vec.Vec4Int{X: x, Y: 0, Z: z, W: w}, block.GrassBlockID)
				}
			}
		}
	}
}
