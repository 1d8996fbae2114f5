package pregen

import (
	"sync"
)

// Metrics tracks counters of a pregeneration run. A nil *Metrics discards all updates.
type Metrics struct {
	mu sync.Mutex

	generated    uint64
	uniform      uint64
	cached       uint64
	failed       uint64
	backpressure uint64
}

// MetricsSnapshot is a copy of the counters of a Metrics at one point in time.
type MetricsSnapshot struct {
	// Generated is the amount of chunks generated and stored, Uniform the
	// part of those that consisted of a single block.
	Generated, Uniform uint64
	// Cached is the amount of chunks skipped because the provider already
	// held them.
	Cached uint64
	// Failed is the amount of chunks that could not be generated or stored.
	Failed uint64
	// Backpressure is the amount of times the task queue was full.
	Backpressure uint64
}

// NewMetrics creates an empty metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncGenerated increments the generated counter, and the uniform counter if uniform is true.
func (m *Metrics) IncGenerated(uniform bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.generated++
	if uniform {
		m.uniform++
	}
	m.mu.Unlock()
}

// IncCached increments the cache hit counter.
func (m *Metrics) IncCached() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.cached++
	m.mu.Unlock()
}

// IncFailed increments the failure counter.
func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()
}

// IncBackpressure increments the backpressure counter and returns its new value.
func (m *Metrics) IncBackpressure() uint64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backpressure++
	return m.backpressure
}

// Snapshot returns the current values of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return MetricsSnapshot{
		Generated:    m.generated,
		Uniform:      m.uniform,
		Cached:       m.cached,
		Failed:       m.failed,
		Backpressure: m.backpressure,
	}
}

// Total returns the amount of chunks processed, successfully or not.
func (s MetricsSnapshot) Total() uint64 {
	return s.Generated + s.Cached + s.Failed
}
