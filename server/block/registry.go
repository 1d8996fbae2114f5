package block

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/brentp/intintmap"
	"github.com/segmentio/fasthash/fnv1a"
)

var (
	// ErrUnknown is returned when a block name is not present in a Registry.
	ErrUnknown = errors.New("unknown block")
	// ErrDuplicate is returned when a block name is registered twice.
	ErrDuplicate = errors.New("block already registered")
	// ErrHashCollision is returned when two different block names hash to the same key.
	ErrHashCollision = errors.New("block name hash collision")
)

// Names of the blocks registered by DefaultRegistry.
const (
	Air          = "air"
	Stone        = "stone"
	Dirt         = "dirt"
	Grass        = "grass"
	Sand         = "sand"
	Sandstone    = "sandstone"
	Gravel       = "gravel"
	Snow         = "snow"
	SurfaceWater = "surface_water"
	Water        = "water"
	OakLog       = "oak_log"
	OakLeaves    = "oak_leaves"
	BirchLog     = "birch_log"
	BirchLeaves  = "birch_leaves"
	SpruceLog    = "spruce_log"
	SpruceLeaves = "spruce_leaves"
	TallGrass    = "tall_grass"
	CoalOre      = "coal_ore"
	IronOre      = "iron_ore"
	GoldOre      = "gold_ore"
	DiamondOre   = "diamond_ore"
)

// Registry maps block names to the numeric IDs stored in chunks and back. IDs are handed out sequentially
// in registration order, so two registries built with the same sequence of Register calls are identical.
// A Registry is passed explicitly to everything that needs to resolve names; there is no global instance.
type Registry struct {
	mu    sync.RWMutex
	names []string
	ids   *intintmap.Map
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ids: intintmap.New(64, 0.6)}
}

// DefaultRegistry returns a Registry holding the standard terrain blocks. Air is always registered
// first and therefore has ID 0.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, name := range []string{
		Air, Stone, Dirt, Grass, Sand, Sandstone, Gravel, Snow, SurfaceWater, Water,
		OakLog, OakLeaves, BirchLog, BirchLeaves, SpruceLog, SpruceLeaves, TallGrass,
		CoalOre, IronOre, GoldOre, DiamondOre,
	} {
		if _, err := r.Register(name); err != nil {
			panic(fmt.Sprintf("register default block %v: %v", name, err))
		}
	}
	return r
}

// Register adds a block with the name passed and returns its newly assigned ID.
func (r *Registry) Register(name string) (uint32, error) {
	name = normalizeName(name)
	if name == "" {
		return 0, fmt.Errorf("register block: empty name")
	}
	key := hashName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids.Get(key); ok {
		if r.names[id] == name {
			return 0, fmt.Errorf("register block %v: %w", name, ErrDuplicate)
		}
		return 0, fmt.Errorf("register block %v (collides with %v): %w", name, r.names[id], ErrHashCollision)
	}
	id := uint32(len(r.names))
	r.names = append(r.names, name)
	r.ids.Put(key, int64(id))
	return id, nil
}

// ID looks up the ID of the block with the name passed.
func (r *Registry) ID(name string) (uint32, bool) {
	name = normalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids.Get(hashName(name))
	if !ok || r.names[id] != name {
		return 0, false
	}
	return uint32(id), true
}

// Lookup is like ID, but returns an error wrapping ErrUnknown if the block does not exist.
func (r *Registry) Lookup(name string) (uint32, error) {
	id, ok := r.ID(name)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return id, nil
}

// MustID is like ID, but panics if the block is not registered.
func (r *Registry) MustID(name string) uint32 {
	id, ok := r.ID(name)
	if !ok {
		panic(fmt.Sprintf("block %q is not registered", name))
	}
	return id
}

// Name returns the name of the block with the ID passed.
func (r *Registry) Name(id uint32) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}

// Valid reports if id was handed out by the Registry.
func (r *Registry) Valid(id uint32) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int(id) < len(r.names)
}

// Len returns the amount of registered blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

func hashName(name string) int64 {
	return int64(fnv1a.HashString64(name))
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
