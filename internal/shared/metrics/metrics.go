package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	updatesReceivedTotal      atomic.Uint64
	submissionsStartedTotal   atomic.Uint64
	submissionsCompletedTotal atomic.Uint64
	submissionsCancelledTotal atomic.Uint64
	appendFailedTotal         atomic.Uint64
	appendRejectedTotal       atomic.Uint64
	notifyFailedTotal         atomic.Uint64

	appendDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000})
)

// IncUpdatesReceived increments the webhook updates counter.
func IncUpdatesReceived() {
	updatesReceivedTotal.Add(1)
}

// IncSubmissionsStarted increments the started counter.
func IncSubmissionsStarted() {
	submissionsStartedTotal.Add(1)
}

// IncSubmissionsCompleted increments the completed counter.
func IncSubmissionsCompleted() {
	submissionsCompletedTotal.Add(1)
}

// IncSubmissionsCancelled increments the cancelled counter.
func IncSubmissionsCancelled() {
	submissionsCancelledTotal.Add(1)
}

// IncAppendFailed increments the sheet append failure counter.
func IncAppendFailed() {
	appendFailedTotal.Add(1)
}

// IncAppendRejected increments the queue backpressure counter.
func IncAppendRejected() {
	appendRejectedTotal.Add(1)
}

// IncNotifyFailed increments the operator notification failure counter.
func IncNotifyFailed() {
	notifyFailedTotal.Add(1)
}

// ObserveAppendDurationMs records a sheet append duration in milliseconds.
func ObserveAppendDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	appendDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "intake_updates_received_total", "Total webhook updates received", updatesReceivedTotal.Load())
	writeCounter(&buf, "intake_submissions_started_total", "Total submissions started", submissionsStartedTotal.Load())
	writeCounter(&buf, "intake_submissions_completed_total", "Total submissions completed", submissionsCompletedTotal.Load())
	writeCounter(&buf, "intake_submissions_cancelled_total", "Total submissions cancelled", submissionsCancelledTotal.Load())
	writeCounter(&buf, "intake_append_failed_total", "Total sheet appends failed", appendFailedTotal.Load())
	writeCounter(&buf, "intake_append_rejected_total", "Total sheet appends rejected by backpressure", appendRejectedTotal.Load())
	writeCounter(&buf, "intake_notify_failed_total", "Total operator notifications failed", notifyFailedTotal.Load())
	writeHistogram(&buf, "intake_append_duration_ms", "Sheet append duration in milliseconds", appendDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
