// Package earth implements a deterministic terrain generator for cubic chunks. The terrain of a chunk is
// a pure function of the world seed, the chunk position, the biome table and the block registry: it
// never depends on neighbouring chunks, so chunks may be generated in any order and on any goroutine.
package earth

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/df-mc/earthgen/server/block"
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
	"github.com/df-mc/earthgen/server/world/generator/noise"
)

// DefaultMaxHeight is the default height above which chunks are air without being sampled.
const DefaultMaxHeight = 120

// Names of the cave fields that may be selected through Config.CaveField.
const (
	CaveFieldPlaceholder = "placeholder"
	CaveFieldTunnels     = "tunnels"
)

// Config holds the settings of a Generator.
type Config struct {
	// Log is the Logger used to log information about the Generator. If nil,
	// Log is set to slog.Default().
	Log *slog.Logger
	// Seed is the world seed.
	Seed uint64
	// Registry resolves block names to IDs. If nil, block.DefaultRegistry()
	// is used.
	Registry *block.Registry
	// Biomes selects the biome of every chunk. If nil, the built-in biome
	// table resolved against Registry is used.
	Biomes biome.Selector
	// Lattice is the spacing of the coarse sampling grid. If left empty,
	// DefaultLattice is used.
	Lattice Lattice
	// MaxHeight is the height above which chunks are always air. Chunks with
	// an origin above MaxHeight are returned as uniform air without sampling
	// any noise. If 0, DefaultMaxHeight is used.
	MaxHeight int
	// Caves specifies if caves should be carved out of generated terrain.
	Caves bool
	// CaveField selects the cave field used when Caves is true: either
	// CaveFieldPlaceholder (default), which never carves, or
	// CaveFieldTunnels.
	CaveField string
	// Cave, if not the zero Noise, is used as cave field instead of the one
	// named by CaveField.
	Cave noise.Noise
}

// New creates a Generator using the settings in the Config.
func (conf Config) New() (*Generator, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Registry == nil {
		conf.Registry = block.DefaultRegistry()
	}
	if conf.Lattice == (Lattice{}) {
		conf.Lattice = DefaultLattice
	}
	if err := conf.Lattice.Validate(); err != nil {
		return nil, fmt.Errorf("earth generator: %w", err)
	}
	if conf.MaxHeight == 0 {
		conf.MaxHeight = DefaultMaxHeight
	}
	if conf.Biomes == nil {
		t, err := biome.Default(conf.Registry)
		if err != nil {
			return nil, fmt.Errorf("earth generator: %w", err)
		}
		conf.Biomes = t
	}
	shape := NewShape(conf.Seed)

	caves := conf.Cave
	if caves.IsZero() {
		switch strings.ToLower(strings.TrimSpace(conf.CaveField)) {
		case "", CaveFieldPlaceholder:
			caves = shape.Caves()
		case CaveFieldTunnels:
			caves = CaveTunnels(conf.Seed)
		default:
			return nil, fmt.Errorf("earth generator: unknown cave field %q", conf.CaveField)
		}
	}
	conf.Log.Debug("earth generator created", "seed", conf.Seed, "lattice", fmt.Sprintf("%dx%d", conf.Lattice.Width, conf.Lattice.Height), "caves", conf.Caves)
	return &Generator{conf: conf, shape: shape, caves: caves}, nil
}

// Generator generates the terrain of chunks. It holds no mutable state and may be used by multiple
// goroutines at the same time.
type Generator struct {
	conf  Config
	shape *Shape
	caves noise.Noise
}

// GenerateChunk generates the chunk at pos. pos is aligned down to the chunk grid if it is not aligned
// already. The returned Chunk is owned by the caller.
func (g *Generator) GenerateChunk(pos cube.Pos) *chunk.Chunk {
	origin := pos.Align(chunk.Size)
	b := g.conf.Biomes.Select(origin)
	if origin.Y() > g.conf.MaxHeight {
		return chunk.NewUniform(b.Air)
	}

	c := materialize(g.shape.Density(origin, g.conf.Lattice), origin, b)
	if _, ok := c.Uniform(); ok {
		// Nothing to carve or build on.
		return c
	}
	if g.conf.Caves {
		carveCaves(c, g.caves, origin, b)
		if _, ok := c.Uniform(); ok {
			return c
		}
	}
	placeFeatures(c, origin, g.conf.Seed, b)
	return c
}

// Seed returns the world seed of the Generator.
func (g *Generator) Seed() uint64 {
	return g.conf.Seed
}

// Shape returns the noise fields of the Generator.
func (g *Generator) Shape() *Shape {
	return g.shape
}

// Lattice returns the sampling lattice of the Generator.
func (g *Generator) Lattice() Lattice {
	return g.conf.Lattice
}

// Registry returns the block registry of the Generator.
func (g *Generator) Registry() *block.Registry {
	return g.conf.Registry
}
