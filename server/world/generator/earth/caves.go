package earth

import (
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
	"github.com/df-mc/earthgen/server/world/generator/noise"
)

const (
	// caveDecayPoint is the height above which caves are increasingly pushed closed.
	caveDecayPoint = -32
	// caveThreshold is the halved density below which a block is carved out.
	caveThreshold = 0.001
)

// carveCaves samples field at every block of the chunk at origin and replaces blocks where the biased
// density is low enough with air. Liquids of the biome are never carved.
func carveCaves(c *chunk.Chunk, field noise.Noise, origin cube.Pos, b *biome.Biome) {
	densities := field.Generate3D(float64(origin.X()), float64(origin.Y()), float64(origin.Z()), chunk.Size, chunk.Size, chunk.Size)
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				density := densities[chunk.Index(x, y, z)] + float64(max(origin.Y()+y-caveDecayPoint, 0))/64
				if density/2 >= caveThreshold {
					continue
				}
				if id := c.Block(x, y, z); id != b.SurfaceLiquid && id != b.SubSurfaceLiquid {
					c.SetBlock(x, y, z, b.Air)
				}
			}
		}
	}
	if c.Filled(b.Air) {
		c.MakeUniform(b.Air)
	}
}
