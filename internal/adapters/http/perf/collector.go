package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes inbound requests from outbound backend calls.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindBackend
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for both kinds
	StatusCode int    // 0 for backend calls that never got a response
	DurationMs float64
	Timestamp  time.Time
}

// Failed reports whether the entry ended in an error status or no response.
func (e Entry) Failed() bool {
	return e.StatusCode == 0 || e.StatusCode >= 400
}

// Collector is a fixed-size ring buffer for timing entries.
// Writes are non-blocking; when full, oldest entries are overwritten.
// Aggregation happens only on read (Snapshot).
type Collector struct {
	mu       sync.Mutex
	entries  []Entry
	size     int
	pos      int
	requests int64
	backend  int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// PRE: e is a valid Entry
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	if e.Kind == KindBackend {
		atomic.AddInt64(&c.backend, 1)
		return
	}
	atomic.AddInt64(&c.requests, 1)
}

// TotalRecorded returns the total number of entries ever recorded.
// PRE: none
// POST: returns count >= 0
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.requests) + atomic.LoadInt64(&c.backend)
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRequests       int64
	TotalBackendCalls   int64
	RequestP50Ms        float64
	RequestP95Ms        float64
	RequestP99Ms        float64
	BackendP95Ms        float64
	BackendFailures     int
	SlowestPaths        []PathStat
	SlowestBackendCalls []PathStat
}

// PathStat aggregates timing for a single route or backend endpoint.
type PathStat struct {
	Path     string
	AvgMs    float64
	MaxMs    float64
	Count    int
	Failures int
	TotalMs  float64
}

type stats map[string]*PathStat

func (s stats) add(e Entry) {
	st, ok := s[e.Path]
	if !ok {
		st = &PathStat{Path: e.Path}
		s[e.Path] = st
	}
	st.Count++
	st.TotalMs += e.DurationMs
	if e.DurationMs > st.MaxMs {
		st.MaxMs = e.DurationMs
	}
	if e.Failed() {
		st.Failures++
	}
}

// Snapshot computes aggregated stats from the ring buffer.
// Sorts on every call; only the perf page calls it.
// PRE: none
// POST: Returns a Snapshot with percentiles and top-N lists
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations, backendDurations []float64
	requestStats := stats{}
	backendStats := stats{}
	backendFailures := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			requestDurations = append(requestDurations, e.DurationMs)
			requestStats.add(e)
		case KindBackend:
			backendDurations = append(backendDurations, e.DurationMs)
			backendStats.add(e)
			if e.Failed() {
				backendFailures++
			}
		}
	}

	snap := Snapshot{
		TotalRequests:       atomic.LoadInt64(&c.requests),
		TotalBackendCalls:   atomic.LoadInt64(&c.backend),
		BackendFailures:     backendFailures,
		SlowestPaths:        topByAvg(requestStats, topN),
		SlowestBackendCalls: topByAvg(backendStats, topN),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}
	if len(backendDurations) > 0 {
		sort.Float64s(backendDurations)
		snap.BackendP95Ms = percentile(backendDurations, 95)
	}

	return snap
}

// percentile returns the p-th percentile from a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the top N entries sorted by average duration (descending).
func topByAvg(s stats, n int) []PathStat {
	list := make([]PathStat, 0, len(s))
	for _, st := range s {
		st.AvgMs = st.TotalMs / float64(st.Count)
		list = append(list, *st)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs == list[j].AvgMs {
			return list[i].Path < list[j].Path
		}
		return list[i].AvgMs > list[j].AvgMs
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
