// Package server ties the terrain generator to world storage. A Server loads chunks from its provider,
// generates the ones that are missing and pregenerates regions of the world ahead of time.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/generator/earth"
	"github.com/df-mc/earthgen/server/world/pregen"
	"github.com/df-mc/earthgen/server/world/provider"
)

// ErrSeedMismatch is returned by Config.New if the stored world was generated with a different seed.
var ErrSeedMismatch = errors.New("world seed mismatch")

// Server serves the chunks of a single world. A Server may be used by multiple goroutines at the same
// time.
type Server struct {
	conf     Config
	gen      *earth.Generator
	settings provider.Settings

	closeOnce sync.Once
	closeErr  error
}

// Settings returns the settings of the world.
func (srv *Server) Settings() provider.Settings {
	return srv.settings
}

// Generator returns the terrain generator of the Server.
func (srv *Server) Generator() *earth.Generator {
	return srv.gen
}

// Chunk returns the chunk containing pos. Chunks stored in the provider are returned as stored, other
// chunks are generated and stored.
func (srv *Server) Chunk(pos cube.Pos) (*chunk.Chunk, error) {
	origin := pos.Align(chunk.Size)
	c, err := srv.conf.Provider.LoadChunk(origin)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, provider.ErrNotFound) {
		srv.conf.Log.Warn("load chunk: "+err.Error()+", regenerating", "pos", origin.String())
	}
	c = srv.gen.GenerateChunk(origin)
	if err := srv.conf.Provider.StoreChunk(origin, c); err != nil {
		return c, fmt.Errorf("store chunk %v: %w", origin, err)
	}
	return c, nil
}

// Pregenerate generates and stores all chunks within radius chunks of centre horizontally and between
// minY and maxY vertically. It blocks until all chunks are processed or ctx is cancelled.
func (srv *Server) Pregenerate(ctx context.Context, centre cube.Pos, radius, minY, maxY int) (pregen.MetricsSnapshot, error) {
	p, err := pregen.Config{
		Log:       srv.conf.Log,
		Generator: srv.gen,
		Provider:  srv.conf.Provider,
		Workers:   srv.conf.Workers,
		QueueSize: srv.conf.QueueSize,
	}.New()
	if err != nil {
		return pregen.MetricsSnapshot{}, err
	}
	srv.conf.Log.Info("pregenerating chunks", "centre", centre.String(), "radius", radius, "chunks", pregen.RegionSize(radius, minY, maxY))
	err = p.Run(ctx, pregen.Region(centre, radius, minY, maxY))
	return p.Metrics().Snapshot(), err
}

// Close closes the provider of the Server. Calling Close more than once returns the result of the first
// call.
func (srv *Server) Close() error {
	srv.closeOnce.Do(func() {
		srv.conf.Log.Debug("closing provider")
		if err := srv.conf.Provider.Close(); err != nil {
			srv.closeErr = fmt.Errorf("close world provider: %w", err)
		}
	})
	return srv.closeErr
}
