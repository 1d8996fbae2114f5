package chunkdb

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
)

func openTestDB(t *testing.T, dir string, readOnly bool) *DB {
	t.Helper()
	db, err := Config{Log: slog.New(slog.NewTextHandler(io.Discard, nil)), ReadOnly: readOnly}.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func TestDBChunkRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	db := openTestDB(t, dir, false)

	dense := chunk.New(1)
	dense.SetBlock(4, 5, 6, 2)
	chunks := map[cube.Pos]*chunk.Chunk{
		{0, 0, 0}:       dense,
		{-16, 32, 48}:   chunk.NewUniform(0),
		{160, -64, -16}: chunk.NewUniform(3),
	}
	for pos, c := range chunks {
		if err := db.StoreChunk(pos, c); err != nil {
			t.Fatalf("store %v: %v", pos, err)
		}
	}
	if _, err := db.LoadChunk(cube.Pos{16, 0, 0}); !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chunk, got %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db = openTestDB(t, dir, true)
	t.Cleanup(func() { _ = db.Close() })
	for pos, want := range chunks {
		got, err := db.LoadChunk(pos)
		if err != nil {
			t.Fatalf("load %v: %v", pos, err)
		}
		if !got.Equal(want) {
			t.Fatalf("chunk %v changed after reopening", pos)
		}
	}
	if err := db.StoreChunk(cube.Pos{}, dense); err == nil {
		t.Fatalf("expected error storing into a read-only database")
	}
}

func TestDBSettings(t *testing.T) {
	t.Parallel()
	db := openTestDB(t, t.TempDir(), false)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Settings(); !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before settings are saved, got %v", err)
	}
	s := provider.NewSettings("world", 8)
	if err := db.SaveSettings(s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := db.Settings()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != s {
		t.Fatalf("expected %+v, got %+v", s, got)
	}
}
