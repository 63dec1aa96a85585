package observability

import (
	"context"
	"expvar"
	"fmt"
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq atomic.Uint64

// ExpvarRecorder publishes aggregate timings, outcome counters and
// diagnostic counts via expvar.
type ExpvarRecorder struct {
	name        string
	mu          sync.Mutex
	durations   map[string]float64
	results     map[string]map[string]int64
	diagnostics map[string]int64
}

// ExpvarSnapshot is a read-only copy of the recorded metrics.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Diagnostics map[string]int64            `json:"diagnostics_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder publishes a recorder under name, or under a generated
// name when empty. expvar names are process-global, so name must be unique.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		name = fmt.Sprintf("extframe_metrics_%d", expvarSeq.Add(1))
	}
	rec := &ExpvarRecorder{
		name:        name,
		durations:   make(map[string]float64),
		results:     make(map[string]map[string]int64),
		diagnostics: make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot copies the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make(map[string]map[string]int64, len(r.results))
	for op, counts := range r.results {
		results[op] = maps.Clone(counts)
	}
	return ExpvarSnapshot{
		DurationsMS: maps.Clone(r.durations),
		Results:     results,
		Diagnostics: maps.Clone(r.diagnostics),
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe implements diag.MetricsRecorder.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	status := resultLabel(success)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[operation] += ms
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 2)
	}
	r.results[operation][status]++
}

// ParseFailure implements diag.MetricsRecorder.
func (r *ExpvarRecorder) ParseFailure(kind string) {
	r.mu.Lock()
	r.diagnostics[kind]++
	r.mu.Unlock()
}
