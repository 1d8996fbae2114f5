package earth

import (
	"github.com/df-mc/earthgen/server/world/generator/noise"
)

// Offsets added to the world seed to derive the seed of every field, so that fields sampled at the same
// position are independent.
const (
	continentsSeed = 429340
	terrainLowSeed = 2239482
	terrainHiSeed  = 1239480234
	shapeSeed      = 3923480239
	tunnelSeedA    = 5
	tunnelSeedB    = 6
)

// Shape is the set of noise fields that make up the terrain of a world. A Shape is immutable once created
// and may be used by any number of goroutines at the same time.
type Shape struct {
	seed uint64

	continents    noise.Noise
	terrainHeight noise.Noise
	terrainShape  noise.Noise
	caves         noise.Noise
}

// NewShape builds the fields of the world with the seed passed. Fields are seeded with the lower 32 bits
// of seed plus a per-field offset.
func NewShape(seed uint64) *Shape {
	s := uint32(seed)

	// Base elevation. Positive values are land, negative values ocean.
	continents := noise.Perlin(noise.Frequency{3.0 / 512, 0, 3.0 / 512}).
		Seed(s + continentsSeed).
		Fbm(4, 0.5, 2).
		Abs().
		MulConst(120).
		AddConst(-12).
		Clamp(-10, 10)

	// Relief multiplier, flat close to coastlines.
	terrainHeight := continents.
		Range(-2, 2,
			noise.Constant(0),
			noise.Perlin(noise.Uniform(0.002189)).Seed(s).Fbm(10, 0.5, 2).MulConst(2).AddConst(1),
		).
		AddConst(0.5).
		Clamp(0.5, 1.5)

	const f = 0.0313
	freq := noise.Frequency{f, f * 1.5, f}
	low := noise.Perlin(freq).Seed(s+terrainLowSeed).Fbm(6, 0.5, 2)
	high := noise.Perlin(freq).Seed(s+terrainHiSeed).Fbm(6, 0.5, 2)
	// Lattice samples are spread out by the interpolation, so these frequencies are in lattice units.
	terrainShape := noise.Simplex(noise.Frequency{freq[0] * 1.5, freq[1] * 1.5 * 0.5, freq[2] * 1.5}).
		Seed(s+shapeSeed).
		Fbm(8, 0.5, 2).
		Range(0, 0.02, low, high)

	return &Shape{
		seed:          seed,
		continents:    continents,
		terrainHeight: terrainHeight,
		terrainShape:  terrainShape,
		caves:         continents.Range(0.049, 0.049, noise.Constant(1), noise.Constant(1)),
	}
}

// CaveTunnels returns a cave field of winding tunnels for the world seed passed. It is the sum of two
// squared fractal fields, close to zero only where both are.
func CaveTunnels(seed uint64) noise.Noise {
	s := uint32(seed)
	freq := noise.Frequency{0.01, 0.02, 0.01}
	a := noise.Perlin(freq).Seed(s+tunnelSeedA).Fbm(3, 0.5, 2).Square()
	b := noise.Perlin(freq).Seed(s+tunnelSeedB).Fbm(3, 0.5, 2).Square()
	return a.Add(b)
}

// Seed returns the world seed the Shape was built with.
func (s *Shape) Seed() uint64 {
	return s.seed
}

// Continents returns the 2D base elevation field.
func (s *Shape) Continents() noise.Noise {
	return s.continents
}

// TerrainHeight returns the 2D relief multiplier field, always within [0.5, 1.5].
func (s *Shape) TerrainHeight() noise.Noise {
	return s.terrainHeight
}

// TerrainShape returns the 3D density field sampled on the lattice.
func (s *Shape) TerrainShape() noise.Noise {
	return s.terrainShape
}

// Caves returns the placeholder cave field. It is 1 everywhere, so it never carves anything.
func (s *Shape) Caves() noise.Noise {
	return s.caves
}
