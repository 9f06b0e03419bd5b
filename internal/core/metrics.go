package core

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder observes service operation outcomes.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// NopMetricsRecorder discards all observations.
type NopMetricsRecorder struct{}

// Observe implements MetricsRecorder.
func (NopMetricsRecorder) Observe(context.Context, string, bool, time.Duration) {}

// PrometheusRecorder publishes operation counters and latency histograms to a
// Prometheus registry.
type PrometheusRecorder struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheusRecorder constructs a recorder and registers its collectors
// with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sporely",
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sporely",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.latency} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

// Observe implements MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

var _ MetricsRecorder = (*PrometheusRecorder)(nil)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and result counters via
// expvar for deployments that prefer process-local metrics without a scrape
// endpoint.
type ExpvarMetricsRecorder struct {
	mu       sync.Mutex
	name     string
	total    int64
	failures int64
	totalDur time.Duration
	byOp     map[string]int64
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder and publishes
// it under name (auto-generated when empty).
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("sporely_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{name: name, byOp: make(map[string]int64)}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// ExpvarMetricsSnapshot is the exported aggregate view.
type ExpvarMetricsSnapshot struct {
	Total       int64            `json:"total"`
	Failures    int64            `json:"failures"`
	TotalMillis int64            `json:"total_millis"`
	ByOperation map[string]int64 `json:"by_operation"`
}

// Snapshot returns the current aggregate counters.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	byOp := make(map[string]int64, len(r.byOp))
	for k, v := range r.byOp {
		byOp[k] = v
	}
	return ExpvarMetricsSnapshot{
		Total:       r.total,
		Failures:    r.failures,
		TotalMillis: r.totalDur.Milliseconds(),
		ByOperation: byOp,
	}
}

// Observe implements MetricsRecorder.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if !success {
		r.failures++
	}
	r.totalDur += duration
	r.byOp[operation]++
}

var _ MetricsRecorder = (*ExpvarMetricsRecorder)(nil)
