// Package blueprint holds the structure placement routines that run against freshly generated terrain,
// such as trees, vegetation and ore veins. Blueprints only see the chunk being generated through a View
// and a Surface, and draw all randomness from the per-chunk random source they are handed, so that their
// output is a pure function of the chunk's inputs.
package blueprint

import (
	"math/rand/v2"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
)

// Blueprint places a structure in a chunk. Construct is called once per chunk for every blueprint of the
// chunk's biome, in the order the biome lists them. origin is the world position of the chunk's lowest
// corner; all positions passed to the View are chunk-local.
type Blueprint interface {
	Construct(origin cube.Pos, v View, s *Surface, r *rand.Rand)
}

// View is a bounds-checked mutable view over the blocks of a single chunk. Reads and writes outside the
// chunk are ignored.
type View struct {
	c *chunk.Chunk
}

// NewView returns a View over the chunk passed.
func NewView(c *chunk.Chunk) View {
	return View{c: c}
}

// Contains reports if the chunk-local position passed lies inside the chunk.
func (v View) Contains(x, y, z int) bool {
	return x >= 0 && x < chunk.Size && y >= 0 && y < chunk.Size && z >= 0 && z < chunk.Size
}

// Block returns the block at a chunk-local position. The bool is false if the position is outside the
// chunk.
func (v View) Block(x, y, z int) (uint32, bool) {
	if !v.Contains(x, y, z) {
		return 0, false
	}
	return v.c.Block(x, y, z), true
}

// SetBlock sets the block at a chunk-local position and reports if the position was inside the chunk.
func (v View) SetBlock(x, y, z int, id uint32) bool {
	if !v.Contains(x, y, z) {
		return false
	}
	v.c.SetBlock(x, y, z, id)
	return true
}

// Surface records the ground level of every column of a chunk: the highest non-air block that has air
// directly above it.
type Surface struct {
	heights [chunk.Size * chunk.Size]int8
	blocks  [chunk.Size * chunk.Size]uint32
}

// NewSurface computes the Surface of the chunk passed.
func NewSurface(c *chunk.Chunk, air uint32) *Surface {
	s := &Surface{}
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			i := x*chunk.Size + z
			s.heights[i] = -1
			for y := chunk.Size - 2; y >= 0; y-- {
				b := c.Block(x, y, z)
				if b != air && c.Block(x, y+1, z) == air {
					s.heights[i], s.blocks[i] = int8(y), b
					break
				}
			}
		}
	}
	return s
}

// Height returns the chunk-local y of the surface block of a column. The bool is false if the column has
// no surface inside the chunk.
func (s *Surface) Height(x, z int) (int, bool) {
	if x < 0 || x >= chunk.Size || z < 0 || z >= chunk.Size {
		return 0, false
	}
	h := s.heights[x*chunk.Size+z]
	return int(h), h >= 0
}

// Block returns the surface block of a column, as it was when the Surface was computed.
func (s *Surface) Block(x, z int) uint32 {
	if x < 0 || x >= chunk.Size || z < 0 || z >= chunk.Size {
		return 0
	}
	return s.blocks[x*chunk.Size+z]
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
