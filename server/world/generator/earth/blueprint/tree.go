package blueprint

import (
	"math/rand/v2"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
)

// Tree grows trees of a single type on soil blocks at the surface.
type Tree struct {
	BaseAmount int
	Type       TreeType
	// Soil is the surface block trees may grow on.
	Soil uint32
	Air  uint32
}

// Construct picks BaseAmount or BaseAmount+1 random columns and grows a tree on those whose surface block
// is soil.
func (t Tree) Construct(_ cube.Pos, v View, s *Surface, r *rand.Rand) {
	amount := r.IntN(2) + t.BaseAmount
	for i := 0; i < amount; i++ {
		x, z := r.IntN(chunk.Size), r.IntN(chunk.Size)
		y, ok := s.Height(x, z)
		if !ok || s.Block(x, z) != t.Soil {
			continue
		}
		// An earlier tree may have covered the soil since the surface was computed.
		if b, _ := v.Block(x, y, z); b != t.Soil {
			continue
		}
		treeType := t.Type
		if birch, ok := treeType.(BirchTree); ok && r.IntN(39) == 0 {
			birch.Super = true
			treeType = birch
		}
		treeType.Grow(v, cube.Pos{x, y + 1, z}, t.Air, r)
	}
}

// TreeType grows a single tree with its trunk starting at pos.
type TreeType interface {
	Grow(v View, pos cube.Pos, air uint32, r *rand.Rand)
}

// Wood holds the blocks a tree is made of.
type Wood struct {
	Log, Leaves uint32
}

// SpruceTree is a conical tree with layered leaves.
type SpruceTree struct {
	Wood
}

func (t SpruceTree) Grow(v View, pos cube.Pos, air uint32, r *rand.Rand) {
	if !canGrow(v, pos, 10, air, t.Leaves) {
		return
	}
	treeHeight := r.IntN(4) + 6

	topSize := treeHeight - (1 + r.IntN(2))
	lr := 2 + r.IntN(2)

	trunk(v, pos, t.Wood, treeHeight-r.IntN(3), air)

	radius := r.IntN(2)
	minR, maxR := 0, 1

	for y := 0; y <= topSize; y++ {
		yy := pos[1] + treeHeight - y
		for x := pos[0] - radius; x <= pos[0]+radius; x++ {
			xOff := abs(x - pos[0])
			for z := pos[2] - radius; z <= pos[2]+radius; z++ {
				zOff := abs(z - pos[2])
				if xOff == radius && zOff == radius && radius > 0 {
					continue
				}
				if b, ok := v.Block(x, yy, z); ok && b == air {
					v.SetBlock(x, yy, z, t.Leaves)
				}
			}
		}

		if radius >= maxR {
			radius = minR
			minR = 1
			if maxR++; maxR > lr {
				maxR = lr
			}
		} else {
			radius++
		}
	}
}

// OakTree is a small tree with a round canopy.
type OakTree struct {
	Wood
}

func (t OakTree) Grow(v View, pos cube.Pos, air uint32, r *rand.Rand) {
	if !canGrow(v, pos, 7, air, t.Leaves) {
		return
	}
	treeHeight := r.IntN(3) + 4
	basicTop(v, pos, r, t.Leaves, treeHeight, air)
	trunk(v, pos, t.Wood, treeHeight-1, air)
}

// BirchTree is like OakTree with a taller trunk. Super birches are five blocks taller still.
type BirchTree struct {
	Wood
	Super bool
}

func (t BirchTree) Grow(v View, pos cube.Pos, air uint32, r *rand.Rand) {
	if !canGrow(v, pos, 7, air, t.Leaves) {
		return
	}
	treeHeight := r.IntN(3) + 5
	if t.Super {
		treeHeight += 5
	}
	basicTop(v, pos, r, t.Leaves, treeHeight, air)
	trunk(v, pos, t.Wood, treeHeight-1, air)
}

func basicTop(v View, pos cube.Pos, r *rand.Rand, leaves uint32, treeHeight int, air uint32) {
	for yy := pos[1] - 3 + treeHeight; yy <= pos[1]+treeHeight; yy++ {
		yOff := yy - (pos[1] + treeHeight)
		mid := 1 - yOff/2
		for xx := pos[0] - mid; xx <= pos[0]+mid; xx++ {
			xOff := abs(xx - pos[0])
			for zz := pos[2] - mid; zz <= pos[2]+mid; zz++ {
				zOff := abs(zz - pos[2])
				if xOff == mid && zOff == mid && (yOff == 0 || r.IntN(2) == 0) {
					continue
				}
				if b, ok := v.Block(xx, yy, zz); ok && b == air {
					v.SetBlock(xx, yy, zz, leaves)
				}
			}
		}
	}
}

func trunk(v View, pos cube.Pos, wood Wood, trunkHeight int, air uint32) {
	for y := 0; y < trunkHeight; y++ {
		p := pos.Add(cube.Pos{0, y})
		if b, ok := v.Block(p[0], p[1], p[2]); ok && (b == air || b == wood.Leaves) {
			v.SetBlock(p[0], p[1], p[2], wood.Log)
		}
	}
}

// canGrow checks that the space a tree of treeHeight would occupy inside the chunk holds only air and
// leaves.
func canGrow(v View, pos cube.Pos, treeHeight int, air, leaves uint32) bool {
	radiusToCheck := 0
	for yy := 0; yy < treeHeight+3; yy++ {
		if yy == 1 || yy == treeHeight {
			radiusToCheck++
		}
		for xx := -radiusToCheck; xx <= radiusToCheck; xx++ {
			for zz := -radiusToCheck; zz <= radiusToCheck; zz++ {
				b, ok := v.Block(pos[0]+xx, pos[1]+yy, pos[2]+zz)
				if ok && b != air && b != leaves {
					return false
				}
			}
		}
	}
	return true
}
