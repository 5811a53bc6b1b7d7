package observability

import (
	"sort"
	"sync"
	"time"
)

// Metrics aggregates per-route request counters and per-code error
// counters in memory. The tracker runs as a single instance inside the
// school network, so a process-local snapshot is the whole picture.
type Metrics struct {
	mu     sync.Mutex
	start  time.Time
	routes map[string]*routeStats
	errors map[string]int64
}

type routeStats struct {
	count    int64
	failures int64
	elapsed  time.Duration
}

// RouteSnapshot is one route's aggregated counters.
type RouteSnapshot struct {
	Route     string  `json:"route"`
	Requests  int64   `json:"requests"`
	Failures  int64   `json:"failures"`
	AvgMillis float64 `json:"avg_ms"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	UptimeSeconds float64          `json:"uptime_seconds"`
	Routes        []RouteSnapshot  `json:"routes"`
	Errors        map[string]int64 `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		start:  time.Now(),
		routes: make(map[string]*routeStats),
		errors: make(map[string]int64),
	}
}

// RecordRequest counts a finished request under its method and route.
// Status codes of 500 and above count as failures.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := method + " " + path
	m.mu.Lock()
	defer m.mu.Unlock()
	stats, ok := m.routes[key]
	if !ok {
		stats = &routeStats{}
		m.routes[key] = stats
	}
	stats.count++
	stats.elapsed += duration
	if status >= 500 {
		stats.failures++
	}
}

// RecordError counts a request that ended in a domain error, keyed by
// the error code (VALIDATION_FAILED, FORBIDDEN, ...).
func (m *Metrics) RecordError(_, _, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[code]++
}

// Snapshot copies the counters for the stats endpoint, routes sorted
// by name.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Routes: []RouteSnapshot{}, Errors: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(m.start).Seconds(),
		Routes:        make([]RouteSnapshot, 0, len(m.routes)),
		Errors:        make(map[string]int64, len(m.errors)),
	}
	for route, stats := range m.routes {
		avg := 0.0
		if stats.count > 0 {
			avg = float64(stats.elapsed.Milliseconds()) / float64(stats.count)
		}
		snap.Routes = append(snap.Routes, RouteSnapshot{
			Route:     route,
			Requests:  stats.count,
			Failures:  stats.failures,
			AvgMillis: avg,
		})
	}
	sort.Slice(snap.Routes, func(i, j int) bool { return snap.Routes[i].Route < snap.Routes[j].Route })
	for code, count := range m.errors {
		snap.Errors[code] = count
	}
	return snap
}
