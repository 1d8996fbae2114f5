package biome_test

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/df-mc/earthgen/server/block"
	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/generator/earth/biome"
	"github.com/df-mc/earthgen/server/world/generator/earth/blueprint"
)

func TestDefaultTable(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	table, err := biome.Default(reg)
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	if got, want := table.Names(), []string{"plains", "desert", "taiga", "ocean"}; !slices.Equal(got, want) {
		t.Fatalf("expected biomes %v, got %v", want, got)
	}
	plains := table.Select(cube.Pos{160, -32, 48})
	if plains == nil || plains.Name != "plains" {
		t.Fatalf("expected plains to be selected, got %+v", plains)
	}
	if plains.Top != reg.MustID(block.Grass) || plains.Bottom != reg.MustID(block.Stone) {
		t.Fatalf("unexpected plains layers %+v", plains)
	}
	if plains.Air != reg.MustID(block.Air) {
		t.Fatalf("expected air role to default to air")
	}
	if len(plains.Blueprints) != 3 {
		t.Fatalf("expected 3 plains blueprints, got %d", len(plains.Blueprints))
	}
	// Blueprints keep the order they are configured in.
	if _, ok := plains.Blueprints[0].(blueprint.Ore); !ok {
		t.Fatalf("expected ore first, got %T", plains.Blueprints[0])
	}
	if _, ok := plains.Blueprints[2].(blueprint.TallGrass); !ok {
		t.Fatalf("expected tall grass last, got %T", plains.Blueprints[2])
	}
	if desert, ok := table.Biome("desert"); !ok || desert.Top != reg.MustID(block.Sand) {
		t.Fatalf("unexpected desert biome %+v", desert)
	}
}

const yamlTable = `
default: dunes
biomes:
  - name: dunes
    top: sand
    mid: sand
    bottom: sandstone
    sand: sand
    surface_liquid: surface_water
    sub_surface_liquid: water
    blueprints:
      - kind: tall_grass
        amount: 2
`

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	path := filepath.Join(t.TempDir(), "biomes.yml")
	if err := os.WriteFile(path, []byte(yamlTable), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	table, err := biome.Load(path, reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b := table.Default()
	if b.Name != "dunes" || b.Bottom != reg.MustID(block.Sandstone) {
		t.Fatalf("unexpected biome %+v", b)
	}
	if len(b.Blueprints) != 1 {
		t.Fatalf("expected 1 blueprint, got %d", len(b.Blueprints))
	}
}

func TestLoadTOML(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	path := filepath.Join(t.TempDir(), "biomes.toml")
	data := []byte(`
[[biome]]
name = "barren"
top = "stone"
mid = "stone"
bottom = "stone"
sand = "gravel"
surface_liquid = "surface_water"
sub_surface_liquid = "water"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}
	table, err := biome.Load(path, reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if b := table.Default(); b.Name != "barren" || b.Sand != reg.MustID(block.Gravel) {
		t.Fatalf("unexpected biome %+v", b)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	t.Parallel()
	if _, err := biome.Load(filepath.Join(t.TempDir(), "biomes.json"), block.DefaultRegistry()); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestTableErrors(t *testing.T) {
	t.Parallel()
	reg := block.DefaultRegistry()
	valid := biome.Config{
		Name: "a", Top: "grass", Mid: "dirt", Bottom: "stone", Sand: "sand",
		SurfaceLiquid: "surface_water", SubSurfaceLiquid: "water",
	}
	missing := valid
	missing.Mid = ""
	unknown := valid
	unknown.Top = "purple_grass"
	badBlueprint := valid
	badBlueprint.Blueprints = []blueprint.Config{{Kind: "volcano"}}

	tests := []struct {
		name string
		file biome.File
		want error
	}{
		{name: "missing role", file: biome.File{Biomes: []biome.Config{missing}}, want: biome.ErrMissingRole},
		{name: "unknown block", file: biome.File{Biomes: []biome.Config{unknown}}, want: block.ErrUnknown},
		{name: "unknown blueprint", file: biome.File{Biomes: []biome.Config{badBlueprint}}, want: blueprint.ErrUnknownKind},
		{name: "duplicate", file: biome.File{Biomes: []biome.Config{valid, valid}}, want: biome.ErrDuplicate},
		{name: "no default", file: biome.File{Default: "b", Biomes: []biome.Config{valid}}, want: biome.ErrNoDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.file.Table(reg); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := (biome.File{}).Table(reg); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

func TestSelectorFunc(t *testing.T) {
	t.Parallel()
	cold, warm := &biome.Biome{Name: "cold"}, &biome.Biome{Name: "warm"}
	sel := biome.SelectorFunc(func(origin cube.Pos) *biome.Biome {
		if origin.X() < 0 {
			return cold
		}
		return warm
	})
	if sel.Select(cube.Pos{-16, 0, 0}) != cold || sel.Select(cube.Pos{16, 0, 0}) != warm {
		t.Fatalf("SelectorFunc did not forward to the function")
	}
}
