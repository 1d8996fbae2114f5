package biome

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df-mc/earthgen/server/world/generator/earth/blueprint"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingRole is returned when a biome does not name a block for one of its layer roles.
	ErrMissingRole = errors.New("missing block role")
	// ErrDuplicate is returned when two biomes share a name.
	ErrDuplicate = errors.New("duplicate biome")
	// ErrNoDefault is returned when the default biome of a table does not exist.
	ErrNoDefault = errors.New("default biome not found")
)

//go:embed default.toml
var defaultTable []byte

// Format is the encoding of a biome table.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// File is the serialised form of a Table.
type File struct {
	// Default is the name of the biome returned by Table.Select. If empty, the first biome is used.
	Default string   `toml:"default" yaml:"default"`
	Biomes  []Config `toml:"biome" yaml:"biomes"`
}

// Config is the serialised form of a Biome. Blocks are referred to by name.
type Config struct {
	Name             string             `toml:"name" yaml:"name"`
	Top              string             `toml:"top" yaml:"top"`
	Mid              string             `toml:"mid" yaml:"mid"`
	Bottom           string             `toml:"bottom" yaml:"bottom"`
	Sand             string             `toml:"sand" yaml:"sand"`
	SurfaceLiquid    string             `toml:"surface_liquid" yaml:"surface_liquid"`
	SubSurfaceLiquid string             `toml:"sub_surface_liquid" yaml:"sub_surface_liquid"`
	Air              string             `toml:"air" yaml:"air"`
	Blueprints       []blueprint.Config `toml:"blueprint" yaml:"blueprints"`
}

// Default returns the built-in biome table resolved against blocks.
func Default(blocks blueprint.Lookup) (*Table, error) {
	t, err := Decode(defaultTable, FormatTOML, blocks)
	if err != nil {
		return nil, fmt.Errorf("default biome table: %w", err)
	}
	return t, nil
}

// Load reads the biome table at path. The format is picked by the file extension: .toml, .yaml or .yml.
func Load(path string, blocks blueprint.Lookup) (*Table, error) {
	var format Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		format = FormatTOML
	case ".yaml", ".yml":
		format = FormatYAML
	default:
		return nil, fmt.Errorf("load biome table %v: unsupported extension %q", path, ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read biome table: %w", err)
	}
	t, err := Decode(data, format, blocks)
	if err != nil {
		return nil, fmt.Errorf("load biome table %v: %w", path, err)
	}
	return t, nil
}

// Decode decodes a biome table in the format passed and resolves it against blocks.
func Decode(data []byte, format Format, blocks blueprint.Lookup) (*Table, error) {
	var f File
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown biome table format %q", format)
	}
	return f.Table(blocks)
}

// Table resolves the File into a Table.
func (f File) Table(blocks blueprint.Lookup) (*Table, error) {
	if len(f.Biomes) == 0 {
		return nil, errors.New("biome table holds no biomes")
	}
	t := &Table{byName: make(map[string]*Biome, len(f.Biomes))}
	for _, c := range f.Biomes {
		b, err := c.Biome(blocks)
		if err != nil {
			return nil, err
		}
		if _, ok := t.byName[b.Name]; ok {
			return nil, fmt.Errorf("%w %q", ErrDuplicate, b.Name)
		}
		t.byName[b.Name] = b
		t.biomes = append(t.biomes, b)
	}
	t.def = t.biomes[0]
	if name := strings.TrimSpace(f.Default); name != "" {
		def, ok := t.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoDefault, name)
		}
		t.def = def
	}
	return t, nil
}

// Biome resolves the Config into a Biome.
func (c Config) Biome(blocks blueprint.Lookup) (*Biome, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, errors.New("biome without a name")
	}
	b := &Biome{Name: name}
	air := c.Air
	if strings.TrimSpace(air) == "" {
		air = "air"
	}
	for _, role := range []struct {
		name  string
		block string
		dst   *uint32
	}{
		{"top", c.Top, &b.Top},
		{"mid", c.Mid, &b.Mid},
		{"bottom", c.Bottom, &b.Bottom},
		{"sand", c.Sand, &b.Sand},
		{"surface_liquid", c.SurfaceLiquid, &b.SurfaceLiquid},
		{"sub_surface_liquid", c.SubSurfaceLiquid, &b.SubSurfaceLiquid},
		{"air", air, &b.Air},
	} {
		if strings.TrimSpace(role.block) == "" {
			return nil, fmt.Errorf("biome %v: %w %v", name, ErrMissingRole, role.name)
		}
		id, err := blocks.Lookup(role.block)
		if err != nil {
			return nil, fmt.Errorf("biome %v: %v: %w", name, role.name, err)
		}
		*role.dst = id
	}
	for i, bc := range c.Blueprints {
		bp, err := blueprint.Build(bc, blocks)
		if err != nil {
			return nil, fmt.Errorf("biome %v: blueprint %d: %w", name, i, err)
		}
		b.Blueprints = append(b.Blueprints, bp)
	}
	return b, nil
}
