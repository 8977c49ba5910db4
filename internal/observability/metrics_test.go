package observability

import (
	"errors"
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/questions/:id/status", "PATCH", 200, time.Millisecond)
	m.RecordRequest("/questions/:id/status", "PATCH", 200, time.Millisecond)
	m.RecordError("/questions/x/status", "PATCH", "FORBIDDEN")
	m.RecordScan(2, 1, 0, nil)
	m.RecordScan(0, 0, 1, errors.New("db down"))

	snap := m.Snapshot()
	if got := snap.Requests["/questions/:id/status|PATCH|200"]; got != 2 {
		t.Errorf("requests = %d", got)
	}
	if got := snap.Errors["/questions/x/status|PATCH|FORBIDDEN"]; got != 1 {
		t.Errorf("errors = %d", got)
	}
	if snap.Scan.Runs != 2 || snap.Scan.Processed != 2 || snap.Scan.Skipped != 1 || snap.Scan.Failed != 1 {
		t.Errorf("scan counters = %+v", snap.Scan)
	}
	if snap.Scan.LastRunErr != "db down" {
		t.Errorf("last error = %q", snap.Scan.LastRunErr)
	}

	snap.Requests["mutated"] = 1
	if _, ok := m.Snapshot().Requests["mutated"]; ok {
		t.Error("snapshot must be a copy")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordScan(1, 0, 0, nil)
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Error("nil metrics should produce empty snapshot")
	}
}
