package pregen

import (
	"iter"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
)

// Region returns the origins of all chunks within radius chunks of the chunk containing centre on the x
// and z axes, and between the heights minY and maxY (inclusive, in blocks). Chunks are yielded column by
// column, starting at the lowest x and z, from the top of each column down.
func Region(centre cube.Pos, radius, minY, maxY int) iter.Seq[cube.Pos] {
	origin := centre.Align(chunk.Size)
	radius = max(radius, 0)
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	bottom := cube.FloorDiv(minY, chunk.Size) * chunk.Size
	top := cube.FloorDiv(maxY, chunk.Size) * chunk.Size

	return func(yield func(cube.Pos) bool) {
		for x := -radius; x <= radius; x++ {
			for z := -radius; z <= radius; z++ {
				for y := top; y >= bottom; y -= chunk.Size {
					if !yield(cube.Pos{origin.X() + x*chunk.Size, y, origin.Z() + z*chunk.Size}) {
						return
					}
				}
			}
		}
	}
}

// RegionSize returns the amount of chunks yielded by Region with the same arguments.
func RegionSize(radius, minY, maxY int) int {
	radius = max(radius, 0)
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	side := 2*radius + 1
	return side * side * (cube.FloorDiv(maxY, chunk.Size) - cube.FloorDiv(minY, chunk.Size) + 1)
}
