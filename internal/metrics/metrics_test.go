package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/montecarlo"
)

func TestCollector_BatchCounters(t *testing.T) {
	t.Parallel()

	c := NewCollector("run-1")
	c.BatchCompleted("parallel", montecarlo.BatchResult{Hits: 3, Total: 4}, time.Millisecond)
	c.BatchCompleted("parallel", montecarlo.BatchResult{Hits: 1, Total: 4}, time.Millisecond)
	c.BatchRetried("parallel")

	if got := testutil.ToFloat64(c.batches.WithLabelValues("parallel")); got != 2 {
		t.Errorf("batches_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.points.WithLabelValues("parallel")); got != 8 {
		t.Errorf("points_total = %v, want 8", got)
	}
	if got := testutil.ToFloat64(c.hits.WithLabelValues("parallel")); got != 4 {
		t.Errorf("circle_points_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(c.retries.WithLabelValues("parallel")); got != 1 {
		t.Errorf("batch_retries_total = %v, want 1", got)
	}
}

func TestCollector_RunFinished(t *testing.T) {
	t.Parallel()

	c := NewCollector("run-2")
	c.RunFinished("sequential", montecarlo.Result{Pi: 3.14}, 2*time.Second, nil)
	c.RunFinished("parallel", montecarlo.Result{}, time.Second, apperrors.WorkerFailureError{Cause: errors.New("x")})
	c.RunFinished("pointwise", montecarlo.Result{}, time.Second, context.Canceled)

	if got := testutil.ToFloat64(c.estimate.WithLabelValues("sequential")); got != 3.14 {
		t.Errorf("estimate = %v, want 3.14", got)
	}
	if got := testutil.ToFloat64(c.runs.WithLabelValues("sequential", "ok")); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.runs.WithLabelValues("parallel", "worker_failure")); got != 1 {
		t.Errorf("worker_failure runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.runs.WithLabelValues("pointwise", "canceled")); got != 1 {
		t.Errorf("canceled runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.runDuration.WithLabelValues("sequential")); got != 2 {
		t.Errorf("run_duration_seconds = %v, want 2", got)
	}
}

func TestCollector_RecordsEngineEvents(t *testing.T) {
	t.Parallel()

	c := NewCollector("run-3")
	_, err := montecarlo.EstimateParallel(context.Background(), 100, 1000,
		montecarlo.Options{Seed: 1, Workers: 2, Recorder: c})
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(c.points.WithLabelValues("parallel")); got != 10000 {
		t.Errorf("points_total = %v, want 10000", got)
	}
	if n := testutil.CollectAndCount(c.batchDuration); n != 1 {
		t.Errorf("expected one histogram series, got %d", n)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	t.Parallel()

	c := NewCollector("run-4")
	c.RunFinished("sequential", montecarlo.Result{Pi: 3.1}, time.Second, nil)

	path := filepath.Join(t.TempDir(), "picalc.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		`picalc_estimate{estimator="sequential",run_id="run-4"} 3.1`,
		"# TYPE picalc_runs_total counter",
		"picalc_heap_alloc_bytes",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestReadMemory(t *testing.T) {
	t.Parallel()

	snap := ReadMemory()
	if snap.HeapAlloc == 0 || snap.Sys == 0 {
		t.Errorf("expected non-zero memory stats, got %+v", snap)
	}
	if snap.Goroutines < 1 {
		t.Errorf("Goroutines = %d", snap.Goroutines)
	}
}
