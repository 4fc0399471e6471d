// Package profiling collects per-route call counts and timings on demand.
//
// The profiler is an explicit middleware value composed around handlers at
// startup. Recording is gated by a toggle so it can run in production and be
// switched on only while diagnosing; enabled or not, it never changes what the
// wrapped handler returns.
package profiling

import (
	"net/http"
	"sync"
	"time"
)

// RouteStats is an accumulated view of one wrapped route.
type RouteStats struct {
	Calls       int64         `json:"calls"`
	TotalTime   time.Duration `json:"total_ns"`
	MinTime     time.Duration `json:"min_ns"`
	MaxTime     time.Duration `json:"max_ns"`
	LastTime    time.Duration `json:"last_ns"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Snapshot is a point-in-time copy of all recorded stats.
type Snapshot struct {
	Enabled bool                  `json:"enabled"`
	Routes  map[string]RouteStats `json:"routes"`
}

// Profiler accumulates timings for wrapped handlers while enabled.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	routes  map[string]*RouteStats
}

// New constructs a disabled profiler.
func New() *Profiler {
	return &Profiler{routes: make(map[string]*RouteStats)}
}

// Start enables recording.
func (p *Profiler) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = true
}

// Stop disables recording. Accumulated stats are kept for inspection.
func (p *Profiler) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = false
}

// Enabled reports whether recording is active.
func (p *Profiler) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Wrap returns a handler that times next under the given route name.
// The wrapped handler's output is passed through untouched.
func (p *Profiler) Wrap(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !p.Enabled() {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		p.record(route, time.Since(start))
	})
}

// Snapshot returns a copy of the current state.
func (p *Profiler) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	routes := make(map[string]RouteStats, len(p.routes))
	for name, st := range p.routes {
		routes[name] = *st
	}
	return Snapshot{Enabled: p.enabled, Routes: routes}
}

func (p *Profiler) record(route string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	st, ok := p.routes[route]
	if !ok {
		st = &RouteStats{MinTime: elapsed}
		p.routes[route] = st
	}
	st.Calls++
	st.TotalTime += elapsed
	if elapsed < st.MinTime {
		st.MinTime = elapsed
	}
	if elapsed > st.MaxTime {
		st.MaxTime = elapsed
	}
	st.LastTime = elapsed
	st.LastUpdated = time.Now()
}
