package blueprint

import (
	"math"
	"math/rand/v2"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/go-gl/mathgl/mgl64"
)

// Ore scatters veins of ore through a host block.
type Ore struct {
	Types []OreType
}

// OreType describes one kind of vein. MinHeight and MaxHeight are world heights and may be passed in
// either order.
type OreType struct {
	Material, Replaces        uint32
	ClusterCount, ClusterSize int
	MinHeight, MaxHeight      int
}

// Construct attempts to place ClusterCount veins of every OreType, each starting at a random position of
// the chunk that holds the host block.
func (o Ore) Construct(origin cube.Pos, v View, _ *Surface, r *rand.Rand) {
	for _, ore := range o.Types {
		lo, hi := min(ore.MinHeight, ore.MaxHeight), max(ore.MinHeight, ore.MaxHeight)
		for i := 0; i < ore.ClusterCount; i++ {
			p := cube.Pos{
				r.IntN(chunk.Size),
				lo + r.IntN(hi-lo+1) - origin.Y(),
				r.IntN(chunk.Size),
			}
			if b, ok := v.Block(p[0], p[1], p[2]); ok && b == ore.Replaces {
				ore.Place(v, p, r)
			}
		}
	}
}

// Place grows a single vein around the chunk-local position passed. Parts of the vein outside the chunk
// are dropped.
func (o OreType) Place(v View, pos cube.Pos, r *rand.Rand) {
	clusterSize := float64(o.ClusterSize)
	vec := pos.Vec3()
	angle := r.Float64() * math.Pi
	offset := mgl64.Vec2{math.Cos(angle), math.Sin(angle)}.Mul(clusterSize / 8)
	x1, x2 := vec[0]+offset[0], vec[0]-offset[0]
	z1, z2 := vec[2]+offset[1], vec[2]-offset[1]
	y1, y2 := vec[1]+float64(r.IntN(3))-1, vec[1]+float64(r.IntN(3))-1

	for i := float64(0); i <= clusterSize; i++ {
		seedX := x1 + (x2-x1)*i/clusterSize
		seedY := y1 + (y2-y1)*i/clusterSize
		seedZ := z1 + (z2-z1)*i/clusterSize
		size := ((math.Sin(i*(math.Pi/clusterSize))+1)*r.Float64()*clusterSize/16 + 1) / 2

		startX, endX := math.Floor(seedX-size), math.Floor(seedX+size)
		startY, endY := math.Floor(seedY-size), math.Floor(seedY+size)
		startZ, endZ := math.Floor(seedZ-size), math.Floor(seedZ+size)

		for xx := startX; xx <= endX; xx++ {
			sizeX := (xx + 0.5 - seedX) / size
			sizeX *= sizeX
			if sizeX >= 1 {
				continue
			}
			for yy := startY; yy <= endY; yy++ {
				sizeY := (yy + 0.5 - seedY) / size
				sizeY *= sizeY
				if sizeX+sizeY >= 1 {
					continue
				}
				for zz := startZ; zz <= endZ; zz++ {
					sizeZ := (zz + 0.5 - seedZ) / size
					sizeZ *= sizeZ

					x, y, z := int(xx), int(yy), int(zz)
					if b, ok := v.Block(x, y, z); ok && sizeX+sizeY+sizeZ < 1 && b == o.Replaces {
						v.SetBlock(x, y, z, o.Material)
					}
				}
			}
		}
	}
}
