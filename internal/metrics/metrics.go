// Package metrics records estimation runs as Prometheus metrics. The
// collector uses its own registry and is written out as a node-exporter
// textfile rather than served over HTTP.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/montecarlo"
)

const namespace = "picalc"

// Collector implements montecarlo.Recorder and records per-run results.
type Collector struct {
	registry *prometheus.Registry

	batches       *prometheus.CounterVec
	points        *prometheus.CounterVec
	hits          *prometheus.CounterVec
	retries       *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec
	runDuration   *prometheus.GaugeVec
	estimate      *prometheus.GaugeVec
	absError      *prometheus.GaugeVec
	runs          *prometheus.CounterVec
	heapAlloc     prometheus.Gauge
	goroutines    prometheus.Gauge
}

var _ montecarlo.Recorder = (*Collector)(nil)

// NewCollector creates a collector whose series all carry run_id.
func NewCollector(runID string) *Collector {
	constLabels := prometheus.Labels{"run_id": runID}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "batches_total",
			Help: "Batches completed.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "points_total",
			Help: "Points sampled by completed batches.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "circle_points_total",
			Help: "Sampled points inside the unit circle.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "batch_retries_total",
			Help: "Batch attempts that failed and were retried.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "batch_duration_seconds",
			Help:        "Wall time of one batch.",
			Buckets:     prometheus.ExponentialBuckets(1e-6, 4, 12),
			ConstLabels: constLabels,
		}, []string{"estimator"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help: "Wall time of the last run.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		estimate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "estimate",
			Help: "Last estimate of pi.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		absError: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "absolute_error",
			Help: "Absolute error of the last estimate.", ConstLabels: constLabels,
		}, []string{"estimator"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total",
			Help: "Estimation runs by outcome.", ConstLabels: constLabels,
		}, []string{"estimator", "status"}),
		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "heap_alloc_bytes",
			Help: "Heap in use when metrics were written.", ConstLabels: constLabels,
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "goroutines",
			Help: "Goroutines alive when metrics were written.", ConstLabels: constLabels,
		}),
	}
	c.registry.MustRegister(
		c.batches, c.points, c.hits, c.retries, c.batchDuration,
		c.runDuration, c.estimate, c.absError, c.runs,
		c.heapAlloc, c.goroutines,
	)
	return c
}

// Registry exposes the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// BatchCompleted records one successful batch.
func (c *Collector) BatchCompleted(estimator string, res montecarlo.BatchResult, elapsed time.Duration) {
	c.batches.WithLabelValues(estimator).Inc()
	c.points.WithLabelValues(estimator).Add(float64(res.Total))
	c.hits.WithLabelValues(estimator).Add(float64(res.Hits))
	c.batchDuration.WithLabelValues(estimator).Observe(elapsed.Seconds())
}

// BatchRetried records a failed attempt that will be retried.
func (c *Collector) BatchRetried(estimator string) {
	c.retries.WithLabelValues(estimator).Inc()
}

// RunFinished records the outcome of an estimation run.
func (c *Collector) RunFinished(estimator string, res montecarlo.Result, elapsed time.Duration, err error) {
	c.runDuration.WithLabelValues(estimator).Set(elapsed.Seconds())
	if err != nil {
		c.runs.WithLabelValues(estimator, statusOf(err)).Inc()
		return
	}
	c.runs.WithLabelValues(estimator, "ok").Inc()
	c.estimate.WithLabelValues(estimator).Set(res.Pi)
	c.absError.WithLabelValues(estimator).Set(res.AbsError())
}

// WriteTextfile snapshots runtime memory and writes every metric to path in
// the Prometheus text format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	mem := ReadMemory()
	c.heapAlloc.Set(float64(mem.HeapAlloc))
	c.goroutines.Set(float64(mem.Goroutines))
	return prometheus.WriteToTextfile(path, c.registry)
}

func statusOf(err error) string {
	var workerErr apperrors.WorkerFailureError
	switch {
	case apperrors.IsContextError(err):
		return "canceled"
	case errors.As(err, &workerErr):
		return "worker_failure"
	default:
		return "error"
	}
}
