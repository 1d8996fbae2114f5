// Package biome holds the biome tables used by the earth generator. A biome names the blocks used for
// every layer role of a column and the ordered list of blueprints run against chunks of that biome.
package biome

import (
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/generator/earth/blueprint"
)

// Biome is a resolved biome descriptor. All block fields hold registry IDs.
type Biome struct {
	Name string

	// Top is the first solid block below air or liquid, Mid the two blocks below it and Bottom
	// everything deeper.
	Top, Mid, Bottom uint32
	// Sand replaces Top and Mid close to sea level.
	Sand uint32
	// SurfaceLiquid fills empty space at sea level, SubSurfaceLiquid empty space below it.
	SurfaceLiquid, SubSurfaceLiquid uint32
	Air                             uint32

	// Blueprints are run in order against every chunk of the biome.
	Blueprints []blueprint.Blueprint
}

// Selector selects the biome of the chunk at origin.
type Selector interface {
	Select(origin cube.Pos) *Biome
}

// SelectorFunc is a Selector implemented by a function.
type SelectorFunc func(origin cube.Pos) *Biome

// Select calls f(origin).
func (f SelectorFunc) Select(origin cube.Pos) *Biome {
	return f(origin)
}

// Table is an immutable set of biomes with a default biome. It implements Selector by returning the
// default biome for every chunk.
type Table struct {
	biomes []*Biome
	byName map[string]*Biome
	def    *Biome
}

// Select returns the default biome of the Table.
func (t *Table) Select(cube.Pos) *Biome {
	return t.def
}

// Default returns the default biome of the Table.
func (t *Table) Default() *Biome {
	return t.def
}

// Biome looks up a biome by its name.
func (t *Table) Biome(name string) (*Biome, bool) {
	b, ok := t.byName[name]
	return b, ok
}

// Names returns the names of all biomes in the order they were defined.
func (t *Table) Names() []string {
	names := make([]string, len(t.biomes))
	for i, b := range t.biomes {
		names[i] = b.Name
	}
	return names
}
