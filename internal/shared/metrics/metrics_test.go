package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderCounters(t *testing.T) {
	IncUpdatesReceived()
	IncUpdatesReceived()
	IncSubmissionsStarted()

	out := Render()
	for _, want := range []string{
		"intake_updates_received_total 2",
		"intake_submissions_started_total 1",
		"# TYPE intake_updates_received_total counter",
		"# TYPE intake_append_duration_ms histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100, 1000})
	h.Observe(5)
	h.Observe(50)
	h.Observe(51)
	h.Observe(5000)

	snap := h.Snapshot()
	if snap.count != 4 {
		t.Fatalf("count = %d", snap.count)
	}
	// Per-bucket counts stay raw; the renderer accumulates them.
	if snap.counts[0] != 1 || snap.counts[1] != 2 || snap.counts[2] != 0 {
		t.Fatalf("bucket counts = %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "test", "test histogram", snap)
	out := buf.String()
	for _, want := range []string{
		`test_bucket{le="10"} 1`,
		`test_bucket{le="100"} 3`,
		`test_bucket{le="1000"} 3`,
		`test_bucket{le="+Inf"} 4`,
		"test_sum 5106",
		"test_count 4",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("histogram render missing %q:\n%s", want, out)
		}
	}
}
