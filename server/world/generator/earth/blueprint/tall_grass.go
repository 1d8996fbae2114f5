package blueprint

import (
	"math/rand/v2"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
)

// TallGrass scatters plants on top of soil blocks.
type TallGrass struct {
	Amount    int
	Plant     uint32
	Soil, Air uint32
}

// Construct places Amount or Amount+1 plants on random soil columns with air above them.
func (t TallGrass) Construct(_ cube.Pos, v View, s *Surface, r *rand.Rand) {
	amount := r.IntN(2) + t.Amount
	for i := 0; i < amount; i++ {
		x, z := r.IntN(chunk.Size), r.IntN(chunk.Size)
		y, ok := s.Height(x, z)
		if !ok || s.Block(x, z) != t.Soil {
			continue
		}
		if b, ok := v.Block(x, y+1, z); ok && b == t.Air {
			v.SetBlock(x, y+1, z, t.Plant)
		}
	}
}
