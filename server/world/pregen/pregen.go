// Package pregen generates and stores regions of chunks ahead of time using a pool of workers.
package pregen

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
	"golang.org/x/sync/errgroup"
)

// Generator generates the chunk with the origin passed. *earth.Generator implements it.
type Generator interface {
	GenerateChunk(pos cube.Pos) *chunk.Chunk
}

// Config holds the settings of a Pregenerator.
type Config struct {
	// Log is the Logger used to log progress and failures. If nil, Log is set
	// to slog.Default().
	Log *slog.Logger
	// Generator generates the chunks. It must not be nil.
	Generator Generator
	// Provider stores generated chunks. Chunks it already holds are not
	// generated again. If nil, provider.NopProvider is used.
	Provider provider.Provider
	// Workers is the amount of goroutines generating chunks. If 0 or lower,
	// the amount of usable CPUs is used.
	Workers int
	// QueueSize limits how many chunks may wait for a worker. If 0 or lower,
	// four times the worker count is used.
	QueueSize int
	// Metrics receives the counters of every run. If nil, a new Metrics is
	// created.
	Metrics *Metrics
	// ProgressInterval is the interval at which progress is logged. If 0,
	// progress is logged every 10 seconds. If negative, progress is never
	// logged.
	ProgressInterval time.Duration
}

// New creates a Pregenerator using the settings in the Config.
func (conf Config) New() (*Pregenerator, error) {
	if conf.Generator == nil {
		return nil, errors.New("pregen: generator must not be nil")
	}
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Provider == nil {
		conf.Provider = provider.NopProvider{}
	}
	if conf.Workers <= 0 {
		conf.Workers = runtime.GOMAXPROCS(0)
	}
	if conf.QueueSize <= 0 {
		conf.QueueSize = conf.Workers * 4
	}
	if conf.Metrics == nil {
		conf.Metrics = NewMetrics()
	}
	if conf.ProgressInterval == 0 {
		conf.ProgressInterval = 10 * time.Second
	}
	return &Pregenerator{conf: conf}, nil
}

// Pregenerator generates chunks concurrently and stores them in a provider.Provider.
type Pregenerator struct {
	conf Config

	lastSaturationLog atomic.Int64
}

// Metrics returns the Metrics the Pregenerator records its counters in.
func (p *Pregenerator) Metrics() *Metrics {
	return p.conf.Metrics
}

// Run generates every chunk in positions that the provider does not hold yet. It blocks until all chunks
// are processed or ctx is cancelled, in which case the context error is returned. Failures to generate or
// store single chunks are logged and counted, but do not stop the run.
func (p *Pregenerator) Run(ctx context.Context, positions iter.Seq[cube.Pos]) error {
	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan cube.Pos, p.conf.QueueSize)

	g.Go(func() error {
		defer close(queue)
		for pos := range positions {
			if err := p.enqueue(ctx, queue, pos); err != nil {
				return err
			}
		}
		return nil
	})
	for i := 0; i < p.conf.Workers; i++ {
		g.Go(func() error {
			return p.worker(ctx, queue)
		})
	}
	if p.conf.ProgressInterval > 0 {
		done := make(chan struct{})
		defer close(done)
		go p.logProgress(done, p.conf.ProgressInterval)
	}

	err := g.Wait()
	s := p.conf.Metrics.Snapshot()
	p.conf.Log.Info("pregeneration finished", "generated", s.Generated, "uniform", s.Uniform, "cached", s.Cached, "failed", s.Failed, "backpressure", s.Backpressure)
	return err
}

// enqueue adds a position to the queue, waiting for space if it is full.
func (p *Pregenerator) enqueue(ctx context.Context, queue chan<- cube.Pos, pos cube.Pos) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case queue <- pos:
		return nil
	default:
		p.handleBackpressure(cap(queue))
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case queue <- pos:
		return nil
	}
}

// worker processes positions from the queue until it is closed or ctx is cancelled.
func (p *Pregenerator) worker(ctx context.Context, queue <-chan cube.Pos) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pos, ok := <-queue:
			if !ok {
				return nil
			}
			p.runTask(pos)
		}
	}
}

// runTask generates and stores a single chunk. Panics in the generator are recovered so that a single
// chunk cannot stop a worker.
func (p *Pregenerator) runTask(pos cube.Pos) {
	defer func() {
		if r := recover(); r != nil {
			p.conf.Metrics.IncFailed()
			p.conf.Log.Error("generate chunk: panic", "error", fmt.Sprint(r), "pos", pos.String())
		}
	}()

	if _, err := p.conf.Provider.LoadChunk(pos); err == nil {
		p.conf.Metrics.IncCached()
		return
	} else if !errors.Is(err, provider.ErrNotFound) {
		p.conf.Log.Warn("load chunk: "+err.Error()+", regenerating", "pos", pos.String())
	}

	c := p.conf.Generator.GenerateChunk(pos)
	if err := p.conf.Provider.StoreChunk(pos, c); err != nil {
		p.conf.Metrics.IncFailed()
		p.conf.Log.Error("store chunk: "+err.Error(), "pos", pos.String())
		return
	}
	_, uniform := c.Uniform()
	p.conf.Metrics.IncGenerated(uniform)
}

// handleBackpressure counts a full queue and emits a warning at most once a minute.
func (p *Pregenerator) handleBackpressure(queueSize int) {
	count := p.conf.Metrics.IncBackpressure()
	now := time.Now().UnixNano()
	last := p.lastSaturationLog.Load()

	if last != 0 && time.Duration(now-last) < time.Minute {
		return
	}
	if !p.lastSaturationLog.CompareAndSwap(last, now) {
		return
	}
	p.conf.Log.Warn(
		"pregeneration queue saturated: workers cannot keep up.",
		"saturations", count,
		"queue_size", queueSize,
		"workers", p.conf.Workers,
	)
}

func (p *Pregenerator) logProgress(done <-chan struct{}, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			s := p.conf.Metrics.Snapshot()
			p.conf.Log.Info("pregeneration progress", "processed", s.Total(), "generated", s.Generated, "cached", s.Cached, "failed", s.Failed)
		}
	}
}
