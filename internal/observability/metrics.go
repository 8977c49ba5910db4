package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	scan         ScanCounters
}

// ScanCounters accumulates deadline scanner outcomes.
type ScanCounters struct {
	Runs       int64     `json:"runs"`
	Processed  int64     `json:"processed"`
	Skipped    int64     `json:"skipped"`
	Failed     int64     `json:"failed"`
	LastRunAt  time.Time `json:"last_run_at"`
	LastRunErr string    `json:"last_run_error,omitempty"`
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Requests map[string]int64 `json:"requests"`
	Errors   map[string]int64 `json:"errors"`
	Scan     ScanCounters     `json:"scan"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordScan adds the outcome of one scanner run. runErr is set when the
// run failed before processing any question.
func (m *Metrics) RecordScan(processed, skipped, failed int, runErr error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scan.Runs++
	m.scan.Processed += int64(processed)
	m.scan.Skipped += int64(skipped)
	m.scan.Failed += int64(failed)
	m.scan.LastRunAt = time.Now()
	m.scan.LastRunErr = ""
	if runErr != nil {
		m.scan.LastRunErr = runErr.Error()
	}
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{Requests: map[string]int64{}, Errors: map[string]int64{}}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Requests: make(map[string]int64, len(m.requestCount)),
		Errors:   make(map[string]int64, len(m.errorCount)),
		Scan:     m.scan,
	}
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	return snap
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
