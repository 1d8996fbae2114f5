package blueprint

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// ErrUnknownKind is returned by Build for a Config with a kind that no blueprint implements.
var ErrUnknownKind = errors.New("unknown blueprint kind")

// Config is the serialised form of a Blueprint as found in biome tables. Which fields are used depends on
// Kind: "ore" uses Ores, "tree" uses Tree, Amount, Log, Leaves and Soil, and "tall_grass" uses Amount,
// Plant and Soil.
type Config struct {
	Kind   string      `toml:"kind" yaml:"kind"`
	Amount int         `toml:"amount" yaml:"amount"`
	Tree   string      `toml:"tree" yaml:"tree"`
	Log    string      `toml:"log" yaml:"log"`
	Leaves string      `toml:"leaves" yaml:"leaves"`
	Soil   string      `toml:"soil" yaml:"soil"`
	Plant  string      `toml:"plant" yaml:"plant"`
	Ores   []OreConfig `toml:"ore" yaml:"ores"`
}

// OreConfig is the serialised form of an OreType.
type OreConfig struct {
	Block        string `toml:"block" yaml:"block"`
	Replaces     string `toml:"replaces" yaml:"replaces"`
	ClusterCount int    `toml:"cluster_count" yaml:"cluster_count"`
	ClusterSize  int    `toml:"cluster_size" yaml:"cluster_size"`
	MinHeight    int    `toml:"min_height" yaml:"min_height"`
	MaxHeight    int    `toml:"max_height" yaml:"max_height"`
}

// Lookup resolves block names to IDs. *block.Registry implements it.
type Lookup interface {
	Lookup(name string) (uint32, error)
}

// Build turns a Config into a Blueprint, resolving all block names through blocks.
func Build(c Config, blocks Lookup) (Blueprint, error) {
	air, err := blocks.Lookup("air")
	if err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(c.Kind))
	switch kind {
	case "ore":
		return buildOre(c, blocks)
	case "tree":
		return buildTree(c, blocks, air)
	case "tall_grass":
		plant, soil, err := lookup2(blocks, or(c.Plant, "tall_grass"), or(c.Soil, "grass"))
		if err != nil {
			return nil, fmt.Errorf("tall_grass: %w", err)
		}
		return TallGrass{Amount: clamp(c.Amount, 0, 256), Plant: plant, Soil: soil, Air: air}, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, c.Kind)
}

func buildOre(c Config, blocks Lookup) (Blueprint, error) {
	o := Ore{Types: make([]OreType, 0, len(c.Ores))}
	for _, oc := range c.Ores {
		material, replaces, err := lookup2(blocks, oc.Block, or(oc.Replaces, "stone"))
		if err != nil {
			return nil, fmt.Errorf("ore: %w", err)
		}
		minY, maxY := oc.MinHeight, oc.MaxHeight
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		o.Types = append(o.Types, OreType{
			Material:     material,
			Replaces:     replaces,
			ClusterCount: clamp(oc.ClusterCount, 0, 256),
			ClusterSize:  clamp(oc.ClusterSize, 1, 64),
			MinHeight:    minY,
			MaxHeight:    maxY,
		})
	}
	return o, nil
}

func buildTree(c Config, blocks Lookup, air uint32) (Blueprint, error) {
	kind := strings.ToLower(or(c.Tree, "oak"))
	switch kind {
	case "oak", "birch", "spruce":
	default:
		return nil, fmt.Errorf("tree: unknown tree type %q", c.Tree)
	}
	log, leaves, err := lookup2(blocks, or(c.Log, kind+"_log"), or(c.Leaves, kind+"_leaves"))
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	soil, err := blocks.Lookup(or(c.Soil, "grass"))
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	wood := Wood{Log: log, Leaves: leaves}
	t := Tree{BaseAmount: clamp(c.Amount, 0, 64), Soil: soil, Air: air}
	switch kind {
	case "oak":
		t.Type = OakTree{Wood: wood}
	case "birch":
		t.Type = BirchTree{Wood: wood}
	case "spruce":
		t.Type = SpruceTree{Wood: wood}
	}
	return t, nil
}

func lookup2(blocks Lookup, a, b string) (uint32, uint32, error) {
	idA, err := blocks.Lookup(a)
	if err != nil {
		return 0, 0, err
	}
	idB, err := blocks.Lookup(b)
	if err != nil {
		return 0, 0, err
	}
	return idA, idB, nil
}

func or(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
