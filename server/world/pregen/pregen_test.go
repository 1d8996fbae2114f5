package pregen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/df-mc/earthgen/server/block/cube"
	"github.com/df-mc/earthgen/server/world/chunk"
	"github.com/df-mc/earthgen/server/world/provider"
)

// memProvider is a provider.Provider keeping chunks in memory.
type memProvider struct {
	provider.NopProvider
	mu     sync.Mutex
	chunks map[cube.Pos]*chunk.Chunk
}

func newMemProvider() *memProvider {
	return &memProvider{chunks: make(map[cube.Pos]*chunk.Chunk)}
}

func (m *memProvider) LoadChunk(pos cube.Pos) (*chunk.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[pos]
	if !ok {
		return nil, provider.ErrNotFound
	}
	return c, nil
}

func (m *memProvider) StoreChunk(pos cube.Pos, c *chunk.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[pos] = c
	return nil
}

func (m *memProvider) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks)
}

// countingGenerator returns uniform chunks above y=0 and dense chunks below it. It panics for the
// position in panicAt, if set.
type countingGenerator struct {
	calls   atomic.Int64
	panicAt *cube.Pos
}

func (g *countingGenerator) GenerateChunk(pos cube.Pos) *chunk.Chunk {
	g.calls.Add(1)
	if g.panicAt != nil && *g.panicAt == pos {
		panic("broken chunk")
	}
	if pos.Y() >= 0 {
		return chunk.NewUniform(0)
	}
	return chunk.New(1)
}

func newTestPregenerator(t *testing.T, conf Config) *Pregenerator {
	t.Helper()
	conf.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	conf.ProgressInterval = -1
	p, err := conf.New()
	if err != nil {
		t.Fatalf("new pregenerator: %v", err)
	}
	return p
}

func TestRunStoresAndCaches(t *testing.T) {
	t.Parallel()
	gen, prov := &countingGenerator{}, newMemProvider()
	p := newTestPregenerator(t, Config{Generator: gen, Provider: prov, Workers: 3, QueueSize: 1})

	if err := p.Run(context.Background(), Region(cube.Pos{}, 1, -16, 31)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := RegionSize(1, -16, 31)
	if prov.len() != want {
		t.Fatalf("expected %d stored chunks, got %d", want, prov.len())
	}
	s := p.Metrics().Snapshot()
	if s.Generated != uint64(want) || s.Uniform != uint64(want/3*2) || s.Cached != 0 || s.Failed != 0 {
		t.Fatalf("unexpected metrics after first run: %+v", s)
	}

	if err := p.Run(context.Background(), Region(cube.Pos{}, 1, -16, 31)); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := gen.calls.Load(); got != int64(want) {
		t.Fatalf("expected stored chunks not to be generated again, got %d calls", got)
	}
	if s := p.Metrics().Snapshot(); s.Cached != uint64(want) {
		t.Fatalf("expected %d cache hits, got %+v", want, s)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	t.Parallel()
	broken := cube.Pos{16, 0, -16}
	gen, prov := &countingGenerator{panicAt: &broken}, newMemProvider()
	p := newTestPregenerator(t, Config{Generator: gen, Provider: prov, Workers: 2})

	if err := p.Run(context.Background(), Region(cube.Pos{}, 1, 0, 15)); err != nil {
		t.Fatalf("run: %v", err)
	}
	s := p.Metrics().Snapshot()
	if s.Failed != 1 || s.Generated != 8 {
		t.Fatalf("expected 1 failure and 8 generated chunks, got %+v", s)
	}
	if _, err := prov.LoadChunk(broken); !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("chunk that failed to generate was stored")
	}
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newTestPregenerator(t, Config{Generator: &countingGenerator{}, Workers: 1})
	if err := p.Run(ctx, Region(cube.Pos{}, 8, -64, 64)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// gatedGenerator blocks every call until release is closed.
type gatedGenerator struct {
	release chan struct{}
}

func (g gatedGenerator) GenerateChunk(cube.Pos) *chunk.Chunk {
	<-g.release
	return chunk.NewUniform(0)
}

func TestRunCountsFullQueue(t *testing.T) {
	t.Parallel()
	gen := gatedGenerator{release: make(chan struct{})}
	prov := newMemProvider()
	p := newTestPregenerator(t, Config{Generator: gen, Provider: prov, Workers: 1, QueueSize: 1})

	done := make(chan error, 1)
	go func() {
		done <- p.Run(context.Background(), Region(cube.Pos{}, 1, 0, 15))
	}()
	deadline := time.After(5 * time.Second)
	for p.Metrics().Snapshot().Backpressure == 0 {
		select {
		case <-deadline:
			close(gen.release)
			t.Fatalf("full queue was never counted")
		case <-time.After(time.Millisecond):
		}
	}
	close(gen.release)
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if s := p.Metrics().Snapshot(); s.Generated != 9 || prov.len() != 9 {
		t.Fatalf("expected all 9 chunks after the queue drained, got %+v", s)
	}
}

func TestBackpressureWarningThrottled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	p, err := Config{
		Log:       slog.New(slog.NewTextHandler(&buf, nil)),
		Generator: &countingGenerator{},
		Workers:   2,
	}.New()
	if err != nil {
		t.Fatalf("new pregenerator: %v", err)
	}
	for i := 0; i < 5; i++ {
		p.handleBackpressure(8)
	}
	if n := strings.Count(buf.String(), "queue saturated"); n != 1 {
		t.Fatalf("expected 1 warning within a minute, got %d", n)
	}
	if !strings.Contains(buf.String(), "saturations=1") || !strings.Contains(buf.String(), "queue_size=8") {
		t.Fatalf("warning misses counters: %s", buf.String())
	}

	p.lastSaturationLog.Store(time.Now().Add(-2 * time.Minute).UnixNano())
	p.handleBackpressure(8)
	if n := strings.Count(buf.String(), "queue saturated"); n != 2 {
		t.Fatalf("expected a second warning after a minute, got %d", n)
	}
	if !strings.Contains(buf.String(), "saturations=6") {
		t.Fatalf("second warning misses count: %s", buf.String())
	}
	if got := p.Metrics().Snapshot().Backpressure; got != 6 {
		t.Fatalf("expected 6 counted saturations, got %d", got)
	}
}

func TestConfigRequiresGenerator(t *testing.T) {
	t.Parallel()
	if _, err := (Config{}).New(); err == nil {
		t.Fatalf("expected error without generator")
	}
}

func TestRegion(t *testing.T) {
	t.Parallel()
	seen := make(map[cube.Pos]struct{})
	var first cube.Pos
	for pos := range Region(cube.Pos{20, 0, -3}, 2, -20, 40) {
		if len(seen) == 0 {
			first = pos
		}
		if !pos.Aligned(chunk.Size) {
			t.Fatalf("position %v is not chunk aligned", pos)
		}
		if _, ok := seen[pos]; ok {
			t.Fatalf("position %v yielded twice", pos)
		}
		seen[pos] = struct{}{}
	}
	if want := RegionSize(2, -20, 40); len(seen) != want || want != 5*5*5 {
		t.Fatalf("expected %d positions, got %d", want, len(seen))
	}
	if want := (cube.Pos{-16, 32, -48}); first != want {
		t.Fatalf("expected first position %v, got %v", want, first)
	}

	n := 0
	for range Region(cube.Pos{}, 3, 0, 0) {
		if n++; n == 4 {
			break
		}
	}
	if n != 4 {
		t.Fatalf("region did not stop after break")
	}
}

func TestMetricsNil(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.IncGenerated(true)
	m.IncCached()
	m.IncFailed()
	if m.IncBackpressure() != 0 || m.Snapshot() != (MetricsSnapshot{}) {
		t.Fatalf("nil metrics recorded values")
	}
}
