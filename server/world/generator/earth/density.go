package earth

import (
	"fmt"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
)

const (
	// decrement is the amount the density decreases per block above the base height.
	decrement = 0.015
	// minHeightScale keeps the compression denominator away from zero.
	minHeightScale = 1e-3
)

// Lattice is the spacing of the coarse grid the terrain shape is sampled on before it is interpolated to
// full resolution. Width is the horizontal spacing in blocks and Height the vertical spacing.
type Lattice struct {
	Width, Height int
}

// DefaultLattice samples the terrain once every 4 blocks horizontally and once every 8 blocks vertically.
var DefaultLattice = Lattice{Width: 4, Height: 8}

// Validate checks that the spacing of the Lattice is positive and divides the chunk size.
func (l Lattice) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("lattice spacing must be positive, got %dx%d", l.Width, l.Height)
	}
	if chunk.Size%l.Width != 0 || chunk.Size%l.Height != 0 {
		return fmt.Errorf("lattice spacing %dx%d does not divide chunk size %d", l.Width, l.Height, chunk.Size)
	}
	return nil
}

// columns is the amount of lattice points along the x and z axes.
func (l Lattice) columns() int {
	return chunk.Size/l.Width + 1
}

// rows is the amount of lattice points along the y axis. One extra cell covers the halo above the chunk.
func (l Lattice) rows() int {
	return chunk.Size/l.Height + 2
}

// Volume is the interpolated density of a chunk and of the Lattice.Height blocks above it. Positive
// densities are solid.
type Volume struct {
	height    int
	densities []float64
}

// Height returns the vertical extent of the Volume in blocks.
func (v *Volume) Height() int {
	return v.height
}

// At returns the density at the chunk-local position passed. y may range up to Height()-1.
func (v *Volume) At(x, y, z int) float64 {
	return v.densities[x*chunk.Size*v.height+z*v.height+y]
}

// Density samples the terrain shape on the lattice around the chunk at origin and interpolates it into a
// Volume. origin must be chunk aligned and l valid.
func (s *Shape) Density(origin cube.Pos, l Lattice) *Volume {
	return interpolate(s.sampleLattice(origin, l), l)
}

// sampleLattice evaluates the terrain shape at every lattice point and biases it towards air above the
// base height and towards solid below it. The result is indexed x*columns*rows + z*rows + y.
func (s *Shape) sampleLattice(origin cube.Pos, l Lattice) []float64 {
	cols, rows := l.columns(), l.rows()
	lx := float64(cube.FloorDiv(origin.X(), l.Width))
	ly := float64(cube.FloorDiv(origin.Y(), l.Height))
	lz := float64(cube.FloorDiv(origin.Z(), l.Width))

	terrain := s.terrainShape.Generate3D(lx, ly, lz, cols, rows, cols)
	base := s.continents.Generate2D(lx, lz, cols, cols)
	scale := s.terrainHeight.Generate2D(lx, lz, cols, cols)

	for x := 0; x < cols; x++ {
		for z := 0; z < cols; z++ {
			i := x*cols + z
			baseHeight, heightScale := base[i], max(scale[i], minHeightScale)
			for y := 0; y < rows; y++ {
				compression := (float64(origin.Y()+y*l.Height) - baseHeight) * decrement / heightScale
				if compression < 0 {
					// Steeper below the base height, keeping overhangs compact.
					compression = float64(compression * 4)
				}
				terrain[x*cols*rows+z*rows+y] -= compression
			}
		}
	}
	return terrain
}

// interpolate trilinearly resamples the lattice to one density per block. Every lattice cell is filled
// by stepping its corner values by constant increments, starting from the exact corner samples.
func interpolate(samples []float64, l Lattice) *Volume {
	cols, rows := l.columns(), l.rows()
	cells, layers := cols-1, rows-1
	height := layers * l.Height
	w, h := float64(l.Width), float64(l.Height)

	sample := func(x, y, z int) float64 {
		return samples[x*cols*rows+z*rows+y]
	}
	v := &Volume{height: height, densities: make([]float64, chunk.Size*height*chunk.Size)}

	for cx := 0; cx < cells; cx++ {
		for cz := 0; cz < cells; cz++ {
			for cy := 0; cy < layers; cy++ {
				backLeft, frontLeft := sample(cx, cy, cz), sample(cx, cy, cz+1)
				backRight, frontRight := sample(cx+1, cy, cz), sample(cx+1, cy, cz+1)
				backLeftInc := (sample(cx, cy+1, cz) - backLeft) / h
				frontLeftInc := (sample(cx, cy+1, cz+1) - frontLeft) / h
				backRightInc := (sample(cx+1, cy+1, cz) - backRight) / h
				frontRightInc := (sample(cx+1, cy+1, cz+1) - frontRight) / h

				for yi := 0; yi < l.Height; yi++ {
					y := cy*l.Height + yi
					backInc := (backRight - backLeft) / w
					frontInc := (frontRight - frontLeft) / w
					back, front := backLeft, frontLeft

					for xi := 0; xi < l.Width; xi++ {
						x := cx*l.Width + xi
						zInc := (front - back) / w
						density := back
						for zi := 0; zi < l.Width; zi++ {
							z := cz*l.Width + zi
							v.densities[x*chunk.Size*height+z*height+y] = density
							density += zInc
						}
						back += backInc
						front += frontInc
					}
					backLeft += backLeftInc
					frontLeft += frontLeftInc
					backRight += backRightInc
					frontRight += frontRightInc
				}
			}
		}
	}
	return v
}
