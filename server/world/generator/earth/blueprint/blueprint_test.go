package blueprint_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/df-mc/earthgen/server/block"
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth/blueprint"
)

// layered returns a chunk with fill below y=height, top at y=height and air above.
func layered(fill, top, air uint32, height int) *chunk.Chunk {
	c := chunk.New(air)
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < height; y++ {
				c.SetBlock(x, y, z, fill)
			}
			c.SetBlock(x, height, z, top)
		}
	}
	return c
}

func TestViewClipsOutsideChunk(t *testing.T) {
	t.Parallel()
	c := chunk.NewUniform(0)
	v := blueprint.NewView(c)

	for _, p := range []cube.Pos{{-1, 0, 0}, {0, chunk.Size, 0}, {0, 0, -3}, {chunk.Size, 5, 5}} {
		if v.SetBlock(p[0], p[1], p[2], 7) {
			t.Fatalf("SetBlock(%v) reported a write outside the chunk", p)
		}
		if _, ok := v.Block(p[0], p[1], p[2]); ok {
			t.Fatalf("Block(%v) reported a position outside the chunk as readable", p)
		}
	}
	if _, ok := c.Uniform(); !ok {
		t.Fatalf("writes outside the chunk modified it")
	}
	if !v.SetBlock(3, 4, 5, 7) {
		t.Fatalf("SetBlock inside the chunk was rejected")
	}
	if got := c.Block(3, 4, 5); got != 7 {
		t.Fatalf("expected block 7 after write, got %d", got)
	}
}

func TestSurface(t *testing.T) {
	t.Parallel()
	const air, stone, grass = 0, 1, 3
	c := layered(stone, grass, air, 5)
	// A column without air above it has no surface inside the chunk.
	for y := 0; y < chunk.Size; y++ {
		c.SetBlock(2, y, 2, stone)
	}
	// A column of air has no surface either.
	for y := 0; y < chunk.Size; y++ {
		c.SetBlock(4, y, 4, air)
	}
	s := blueprint.NewSurface(c, air)

	if y, ok := s.Height(0, 0); !ok || y != 5 {
		t.Fatalf("expected surface at y=5, got %d (%v)", y, ok)
	}
	if b := s.Block(0, 0); b != grass {
		t.Fatalf("expected surface block %d, got %d", grass, b)
	}
	if _, ok := s.Height(2, 2); ok {
		t.Fatalf("solid column reported a surface")
	}
	if _, ok := s.Height(4, 4); ok {
		t.Fatalf("air column reported a surface")
	}
	if _, ok := s.Height(-1, 0); ok {
		t.Fatalf("column outside the chunk reported a surface")
	}
}

func TestTreeOnlyGrowsOnSoil(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	air, stone := reg.MustID(block.Air), reg.MustID(block.Stone)
	grass, sand := reg.MustID(block.Grass), reg.MustID(block.Sand)
	log := reg.MustID(block.OakLog)

	bp, err := blueprint.Build(blueprint.Config{Kind: "tree", Tree: "oak", Amount: 4}, reg)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	sandy := layered(stone, sand, air, 3)
	before := sandy.Clone()
	bp.Construct(cube.Pos{}, blueprint.NewView(sandy), blueprint.NewSurface(sandy, air), rand.New(rand.NewPCG(1, 2)))
	if !sandy.Equal(before) {
		t.Fatalf("tree grew on a surface without soil")
	}

	grassy := layered(stone, grass, air, 3)
	bp.Construct(cube.Pos{}, blueprint.NewView(grassy), blueprint.NewSurface(grassy, air), rand.New(rand.NewPCG(1, 2)))
	logs := 0
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				if grassy.Block(x, y, z) != log {
					continue
				}
				logs++
				if y < 4 {
					t.Fatalf("log placed below the surface at %v", cube.Pos{x, y, z})
				}
			}
		}
	}
	if logs == 0 {
		t.Fatalf("expected at least one tree on a grass surface")
	}
}

func TestTallGrassNeedsAirAboveSoil(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	air, dirt, grass := reg.MustID(block.Air), reg.MustID(block.Dirt), reg.MustID(block.Grass)
	plant := reg.MustID(block.TallGrass)

	bp, err := blueprint.Build(blueprint.Config{Kind: "tall_grass", Amount: 40}, reg)
	if err != nil {
		t.Fatalf("build tall grass: %v", err)
	}
	c := layered(dirt, grass, air, 7)
	bp.Construct(cube.Pos{}, blueprint.NewView(c), blueprint.NewSurface(c, air), rand.New(rand.NewPCG(3, 4)))

	plants := 0
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				if c.Block(x, y, z) == plant {
					plants++
					if y != 8 {
						t.Fatalf("plant placed at y=%d, expected only y=8", y)
					}
				}
			}
		}
	}
	if plants == 0 {
		t.Fatalf("expected plants on a grass surface")
	}
}

func TestOreReplacesOnlyHostBlock(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	air, stone, dirt := reg.MustID(block.Air), reg.MustID(block.Stone), reg.MustID(block.Dirt)
	coal := reg.MustID(block.CoalOre)

	bp, err := blueprint.Build(blueprint.Config{Kind: "ore", Ores: []blueprint.OreConfig{
		{Block: block.CoalOre, ClusterCount: 20, ClusterSize: 8, MinHeight: 23, MaxHeight: 16},
	}}, reg)
	if err != nil {
		t.Fatalf("build ore: %v", err)
	}
	// World y 16..31: stone in the lower half of the chunk, dirt above.
	c := layered(stone, dirt, air, 8)
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 9; y < chunk.Size; y++ {
				c.SetBlock(x, y, z, dirt)
			}
		}
	}
	before := c.Clone()
	bp.Construct(cube.Pos{0, 16, 0}, blueprint.NewView(c), nil, rand.New(rand.NewPCG(5, 6)))

	ores := 0
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				got, was := c.Block(x, y, z), before.Block(x, y, z)
				if got == was {
					continue
				}
				if got != coal || was != stone {
					t.Fatalf("ore changed %d into %d at %v", was, got, cube.Pos{x, y, z})
				}
				ores++
			}
		}
	}
	if ores == 0 {
		t.Fatalf("expected ore veins in stone")
	}
}

func TestOreHeightsInEitherOrder(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	stone, coal := reg.MustID(block.Stone), reg.MustID(block.CoalOre)

	c := chunk.NewUniform(stone)
	ore := blueprint.Ore{Types: []blueprint.OreType{
		{Material: coal, Replaces: stone, ClusterCount: 30, ClusterSize: 4, MinHeight: 20, MaxHeight: 18},
	}}
	ore.Construct(cube.Pos{0, 16, 0}, blueprint.NewView(c), nil, rand.New(rand.NewPCG(1, 2)))

	ores := 0
	for x := 0; x < chunk.Size; x++ {
		for z := 0; z < chunk.Size; z++ {
			for y := 0; y < chunk.Size; y++ {
				if c.Block(x, y, z) != coal {
					continue
				}
				// Veins start at world y 18-20 and reach at most two blocks further.
				if y > 6 {
					t.Fatalf("ore at %v is outside the configured heights", cube.Pos{x, y, z})
				}
				ores++
			}
		}
	}
	if ores == 0 {
		t.Fatalf("expected ore veins between the configured heights")
	}
}

func TestBuildErrors(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()

	tests := []struct {
		name string
		conf blueprint.Config
		want error
	}{
		{name: "unknown kind", conf: blueprint.Config{Kind: "ruins"}, want: blueprint.ErrUnknownKind},
		{name: "unknown ore", conf: blueprint.Config{Kind: "ore", Ores: []blueprint.OreConfig{{Block: "mithril"}}}, want: block.ErrUnknown},
		{name: "unknown soil", conf: blueprint.Config{Kind: "tree", Soil: "moss"}, want: block.ErrUnknown},
		{name: "unknown plant", conf: blueprint.Config{Kind: "tall_grass", Plant: "fern"}, want: block.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := blueprint.Build(tt.conf, reg); !errors.Is(err, tt.want) {
				t.Fatalf("expected error %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := blueprint.Build(blueprint.Config{Kind: "tree", Tree: "baobab"}, reg); err == nil {
		t.Fatalf("expected error for unknown tree type")
	}
}

func TestBuildTreeDefaults(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	bp, err := blueprint.Build(blueprint.Config{Kind: " Tree ", Tree: "birch", Amount: 2}, reg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tree, ok := bp.(blueprint.Tree)
	if !ok {
		t.Fatalf("expected blueprint.Tree, got %T", bp)
	}
	birch, ok := tree.Type.(blueprint.BirchTree)
	if !ok {
		t.Fatalf("expected birch tree type, got %T", tree.Type)
	}
	if birch.Log != reg.MustID(block.BirchLog) || birch.Leaves != reg.MustID(block.BirchLeaves) {
		t.Fatalf("unexpected birch wood %+v", birch.Wood)
	}
	if tree.Soil != reg.MustID(block.Grass) || tree.BaseAmount != 2 {
		t.Fatalf("unexpected tree %+v", tree)
	}
}
