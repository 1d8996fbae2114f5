package earth

import (
	"math/rand/v2"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
	"github.com/df-mc/earthgen/server/world/generator/earth/blueprint"
)

// featureSeed returns the seed of the random source of the chunk at origin: x in the upper 32 bits, z in
// the lower 32 bits, multiplied by the world seed. Chunks above each other share a seed.
func featureSeed(origin cube.Pos, seed uint64) uint64 {
	return (uint64(origin.X())<<32 | uint64(uint32(origin.Z()))) * seed
}

// placeFeatures runs the blueprints of biome b against the chunk at origin in order.
func placeFeatures(c *chunk.Chunk, origin cube.Pos, seed uint64, b *biome.Biome) {
	if len(b.Blueprints) == 0 {
		return
	}
	r := rand.New(rand.NewPCG(featureSeed(origin, seed), 0))
	v, s := blueprint.NewView(c), blueprint.NewSurface(c, b.Air)
	for _, bp := range b.Blueprints {
		bp.Construct(origin, v, s, r)
	}
}
