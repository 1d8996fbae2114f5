// Package chunkdb implements a provider.Provider storing chunks in a LevelDB database.
package chunkdb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
)

var (
	keySettings = []byte("settings")
	// keyChunkPrefix precedes the provider.ChunkKey of every stored chunk.
	keyChunkPrefix = byte('c')
)

// Config holds the settings of a DB.
type Config struct {
	// Log is the Logger used to log errors and information. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// ReadOnly opens the database without write access. StoreChunk and
	// SaveSettings return an error if set.
	ReadOnly bool
}

// DB implements a provider.Provider using a LevelDB database.
type DB struct {
	conf Config
	ldb  *leveldb.DB
	dir  string
}

// Compile time check to make sure DB implements provider.Provider.
var _ provider.Provider = (*DB)(nil)

// Open opens the database in the directory passed with the default Config.
func Open(dir string) (*DB, error) {
	return Config{}.Open(dir)
}

// Open opens the database in the directory passed, creating it if it does not exist.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if !conf.ReadOnly {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	// Chunks are compressed with zstd before they are stored.
	ldb, err := leveldb.OpenFile(dir, &opt.Options{Compression: opt.NoCompression, ReadOnly: conf.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conf.Log.Debug("chunk database opened", "dir", dir, "read-only", conf.ReadOnly)
	return &DB{conf: conf, ldb: ldb, dir: dir}, nil
}

// Settings loads the settings stored in the database.
func (db *DB) Settings() (provider.Settings, error) {
	data, err := db.ldb.Get(keySettings, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return provider.Settings{}, provider.ErrNotFound
	} else if err != nil {
		return provider.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return provider.DecodeSettings(data)
}

// SaveSettings stores the settings passed.
func (db *DB) SaveSettings(s provider.Settings) error {
	if db.conf.ReadOnly {
		return errors.New("save settings: database is read-only")
	}
	data, err := provider.EncodeSettings(s)
	if err != nil {
		return err
	}
	if err := db.ldb.Put(keySettings, data, nil); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadChunk loads the chunk with the origin passed.
func (db *DB) LoadChunk(pos cube.Pos) (*chunk.Chunk, error) {
	data, err := db.ldb.Get(chunkKey(pos), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, provider.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("read chunk %v: %w", pos, err)
	}
	c, err := provider.DecodeChunk(data)
	if err != nil {
		return nil, fmt.Errorf("load chunk %v: %w", pos, err)
	}
	return c, nil
}

// StoreChunk stores the chunk with the origin passed, replacing any chunk stored there before.
func (db *DB) StoreChunk(pos cube.Pos, c *chunk.Chunk) error {
	if db.conf.ReadOnly {
		return fmt.Errorf("store chunk %v: database is read-only", pos)
	}
	data, err := provider.EncodeChunk(c)
	if err != nil {
		return fmt.Errorf("store chunk %v: %w", pos, err)
	}
	if err := db.ldb.Put(chunkKey(pos), data, nil); err != nil {
		return fmt.Errorf("store chunk %v: %w", pos, err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	db.conf.Log.Debug("closing chunk database", "dir", db.dir)
	if err := db.ldb.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func chunkKey(pos cube.Pos) []byte {
	return append([]byte{keyChunkPrefix}, provider.ChunkKey(pos)...)
}
