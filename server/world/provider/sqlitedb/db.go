// Package sqlitedb implements a provider.Provider storing chunks in a SQLite database.
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
	_ "modernc.org/sqlite"
)

// Config holds the settings of a DB.
type Config struct {
	// Log is the Logger used to log errors and information. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
}

// DB implements a provider.Provider using a SQLite database file.
type DB struct {
	conf Config
	db   *sql.DB
	path string
}

// Compile time check to make sure DB implements provider.Provider.
var _ provider.Provider = (*DB)(nil)

// Open opens the database file at path with the default Config.
func Open(path string) (*DB, error) {
	return Config{}.Open(path)
}

// Open opens the database file at path, creating it and its tables if they do not exist.
func (conf Config) Open(path string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if path == "" {
		return nil, errors.New("open db: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (x, y, z)
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 0),
			data BLOB NOT NULL
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	conf.Log.Debug("chunk database opened", "path", path)
	return &DB{conf: conf, db: db, path: path}, nil
}

// Settings loads the settings stored in the database.
func (db *DB) Settings() (provider.Settings, error) {
	var data []byte
	err := db.db.QueryRow("SELECT data FROM settings WHERE id = 0").Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return provider.Settings{}, provider.ErrNotFound
	} else if err != nil {
		return provider.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	return provider.DecodeSettings(data)
}

// SaveSettings stores the settings passed.
func (db *DB) SaveSettings(s provider.Settings) error {
	data, err := provider.EncodeSettings(s)
	if err != nil {
		return err
	}
	if _, err := db.db.Exec("INSERT INTO settings (id, data) VALUES (0, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data", data); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// LoadChunk loads the chunk with the origin passed.
func (db *DB) LoadChunk(pos cube.Pos) (*chunk.Chunk, error) {
	x, y, z := coords(pos)
	var data []byte
	err := db.db.QueryRow("SELECT data FROM chunks WHERE x = ? AND y = ? AND z = ?", x, y, z).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
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
	data, err := provider.EncodeChunk(c)
	if err != nil {
		return fmt.Errorf("store chunk %v: %w", pos, err)
	}
	x, y, z := coords(pos)
	_, err = db.db.Exec(`INSERT INTO chunks (x, y, z, data) VALUES (?, ?, ?, ?)
		ON CONFLICT(x, y, z) DO UPDATE SET data = excluded.data`, x, y, z, data)
	if err != nil {
		return fmt.Errorf("store chunk %v: %w", pos, err)
	}
	return nil
}

// Close closes the database.
func (db *DB) Close() error {
	db.conf.Log.Debug("closing chunk database", "path", db.path)
	if err := db.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// coords returns the chunk coordinates of the chunk with the origin passed.
func coords(pos cube.Pos) (x, y, z int) {
	return cube.FloorDiv(pos.X(), chunk.Size), cube.FloorDiv(pos.Y(), chunk.Size), cube.FloorDiv(pos.Z(), chunk.Size)
}
