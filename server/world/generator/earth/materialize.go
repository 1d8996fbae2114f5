package earth

import (
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
)

// materialize turns the density Volume of the chunk at origin into blocks of biome b. Chunks made up of
// air only are returned as uniform chunks.
func materialize(v *Volume, origin cube.Pos, b *biome.Biome) *chunk.Chunk {
	// Stays uniform until the first block that is not air is set.
	c := chunk.NewUniform(b.Air)

	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			layer := haloDepth(v, origin, x, z)

			for y := chunk.Size - 1; y >= 0; y-- {
				height := origin.Y() + y
				var id uint32
				switch {
				case v.At(x, y, z) <= 0:
					switch {
					case height == 0:
						id, layer = b.SurfaceLiquid, 1
					case height < 0:
						id, layer = b.SubSurfaceLiquid, 1
					default:
						id, layer = b.Air, 0
					}
				case layer > 3:
					id = b.Bottom
					layer++
				case height < 2:
					id = b.Sand
					layer++
				default:
					switch {
					case layer < 1:
						id = b.Top
					case layer < 3:
						id = b.Mid
					default:
						id = b.Bottom
					}
					layer++
				}
				if id != b.Air {
					c.SetBlock(x, y, z, id)
				}
			}
		}
	}
	return c
}

// haloDepth returns the depth counter a column starts with at the top of the chunk: the amount of solid
// blocks directly above the chunk, or 1 if the first empty block above it holds liquid.
func haloDepth(v *Volume, origin cube.Pos, x, z int) int {
	layer := 0
	for y := chunk.Size; y < v.Height(); y++ {
		if v.At(x, y, z) <= 0 {
			if origin.Y()+y <= 0 {
				layer = 1
			}
			break
		}
		layer++
	}
	return layer
}
