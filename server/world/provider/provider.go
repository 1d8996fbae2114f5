// Package provider defines how generated chunks and world settings are persisted. Implementations live
// in the subpackages chunkdb (LevelDB) and sqlitedb (SQLite).
package provider

import (
	"errors"
	"io"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/google/uuid"
)

// ErrNotFound is returned by a Provider if the chunk or settings requested are not stored.
var ErrNotFound = errors.New("not found")

// Settings holds the world-wide data stored next to the chunks of a world.
type Settings struct {
	// ID uniquely identifies the world.
	ID uuid.UUID
	// Name is the name of the world.
	Name string
	// Seed is the seed the chunks of the world were generated with.
	Seed uint64
}

// NewSettings returns Settings with a new random ID.
func NewSettings(name string, seed uint64) Settings {
	return Settings{ID: uuid.New(), Name: name, Seed: seed}
}

// Provider stores chunks and settings of a world. Implementations must be safe for concurrent use.
type Provider interface {
	io.Closer
	// Settings loads the Settings of the world. If none are stored, ErrNotFound is returned.
	Settings() (Settings, error)
	// SaveSettings stores the Settings of the world.
	SaveSettings(s Settings) error
	// LoadChunk loads the chunk with the origin passed. If the chunk is not stored, ErrNotFound is
	// returned.
	LoadChunk(pos cube.Pos) (*chunk.Chunk, error)
	// StoreChunk stores the chunk with the origin passed.
	StoreChunk(pos cube.Pos, c *chunk.Chunk) error
}

// NopProvider implements a Provider that does not store anything.
type NopProvider struct{}

// Compile time check to make sure NopProvider implements Provider.
var _ Provider = NopProvider{}

func (NopProvider) Settings() (Settings, error) { return Settings{}, ErrNotFound }
func (NopProvider) SaveSettings(Settings) error { return nil }
func (NopProvider) LoadChunk(cube.Pos) (*chunk.Chunk, error) { return nil, ErrNotFound }
func (NopProvider) StoreChunk(cube.Pos, *chunk.Chunk) error { return nil }
func (NopProvider) Close() error { return nil }
