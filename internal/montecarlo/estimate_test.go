package montecarlo

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/progress"
)

type recordingRecorder struct {
	mu        sync.Mutex
	completed int
	points    int64
	retried   int
}

func (r *recordingRecorder) BatchCompleted(_ string, res BatchResult, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	r.points += res.Total
}

func (r *recordingRecorder) BatchRetried(string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retried++
}

func TestEstimateSequential_Converges(t *testing.T) {
	t.Parallel()

	res, err := EstimateSequential(context.Background(), 1000, Options{Seed: 12345})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), res.SquarePoints)
	assert.InDelta(t, math.Pi, res.Pi, 0.01)
	assert.Equal(t, uint64(12345), res.Seed)
}

func TestEstimateParallel_Converges(t *testing.T) {
	t.Parallel()

	res, err := EstimateParallel(context.Background(), 1000, 10000, Options{Seed: 12345, Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), res.SquarePoints)
	assert.Equal(t, int64(100), res.Batches)
	assert.InDelta(t, math.Pi, res.Pi, 0.01)
}

func TestSequentialAndParallelAgree(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	seq, err := EstimateSequential(ctx, 1000, Options{Seed: 777})
	require.NoError(t, err)
	par, err := EstimateParallel(ctx, 1000, 50000, Options{Seed: 777})
	require.NoError(t, err)
	assert.Equal(t, seq.SquarePoints, par.SquarePoints)
	assert.InDelta(t, seq.Pi, par.Pi, 0.02)
}

func TestEstimateParallel_DomainOne(t *testing.T) {
	t.Parallel()

	res, err := EstimateParallel(context.Background(), 1, 50000, Options{Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.SquarePoints)
	assert.Contains(t, []float64{0, 4}, res.Pi)
}

func TestEstimateParallel_HugeWorkerCountOnSmallPlan(t *testing.T) {
	t.Parallel()

	// The pool must not allocate per configured worker: only 3 batches exist.
	res, err := EstimateParallel(context.Background(), 3, 4, Options{Seed: 2, Workers: 1 << 30})
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.SquarePoints)
	assert.Equal(t, int64(3), res.Batches)
}

func TestEstimateParallel_ReproducibleAcrossWorkerCounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var counts []Counters
	for _, workers := range []int{1, 3, 8} {
		res, err := EstimateParallel(ctx, 300, 777, Options{Seed: 99, Workers: workers})
		require.NoError(t, err)
		counts = append(counts, Counters{CirclePoints: res.CirclePoints, SquarePoints: res.SquarePoints})
	}
	assert.Equal(t, counts[0], counts[1])
	assert.Equal(t, counts[0], counts[2])
}

func TestEstimate_ValidationBeforeSampling(t *testing.T) {
	t.Parallel()

	var calls, reports atomic.Int64
	counting := func(ctx context.Context, s *Sampler, size int64) (BatchResult, error) {
		calls.Add(1)
		return RunBatch(ctx, s, size)
	}
	onProgress := func(float64) { reports.Add(1) }
	ctx := context.Background()

	tests := []struct {
		name     string
		domain   int64
		maxBatch int64
		opts     Options
		field    string
	}{
		{"zero domain", 0, 10, Options{}, "domain"},
		{"negative domain", -4, 10, Options{}, "domain"},
		{"overflowing domain", MaxDomain + 1, 10, Options{}, "domain"},
		{"zero batch", 10, 0, Options{}, "batch-size"},
		{"negative batch", 10, -1, Options{}, "batch-size"},
		{"negative workers", 10, 10, Options{Workers: -1}, "workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Batch = counting
			tt.opts.Progress = onProgress
			_, err := EstimateParallel(ctx, tt.domain, tt.maxBatch, tt.opts)
			var valErr apperrors.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Equal(t, apperrors.ExitErrorConfig, apperrors.ExitCodeFor(err))
		})
	}
	_, err := EstimateSequential(ctx, 0, Options{Progress: onProgress})
	assert.True(t, apperrors.IsConfigurationError(err))

	assert.Zero(t, calls.Load())
	assert.Zero(t, reports.Load())
}

func TestTotalPoints_MaxDomain(t *testing.T) {
	t.Parallel()

	total, err := TotalPoints(MaxDomain)
	require.NoError(t, err)
	assert.Equal(t, MaxDomain*MaxDomain, total)
	assert.Greater(t, total, int64(0))
}

func TestEstimateParallel_WorkerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	var calls atomic.Int64
	failing := func(ctx context.Context, s *Sampler, size int64) (BatchResult, error) {
		if calls.Add(1) == 1 || size == 7 {
			return BatchResult{}, boom
		}
		return RunBatch(ctx, s, size)
	}

	// 107 points in batches of 50: the 7-point batch always fails.
	rec := &recordingRecorder{}
	_, err := RunPlan(context.Background(), BatchPlan{MaxBatch: 50, Full: 2, Remainder: 7},
		Options{Seed: 1, Workers: 1, Retries: 1, Batch: failing, Recorder: rec})

	var workerErr apperrors.WorkerFailureError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, 2, workerErr.Batch)
	assert.Equal(t, int64(7), workerErr.Size)
	assert.Equal(t, 2, workerErr.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperrors.ExitErrorWorker, apperrors.ExitCodeFor(err))
	// batch 0 failed once then succeeded; batch 2 was retried once.
	assert.Equal(t, 2, rec.retried)
}

func TestEstimateParallel_RetrySucceeds(t *testing.T) {
	t.Parallel()

	var failed atomic.Bool
	flaky := func(ctx context.Context, s *Sampler, size int64) (BatchResult, error) {
		if failed.CompareAndSwap(false, true) {
			return BatchResult{}, errors.New("transient")
		}
		return RunBatch(ctx, s, size)
	}

	rec := &recordingRecorder{}
	res, err := EstimateParallel(context.Background(), 100, 1000,
		Options{Seed: 5, Workers: 2, Retries: 1, Batch: flaky, Recorder: rec})
	require.NoError(t, err)
	assert.Equal(t, int64(10_000), res.SquarePoints)
	assert.Equal(t, 1, rec.retried)
	assert.Equal(t, 10, rec.completed)
	assert.Equal(t, int64(10_000), rec.points)
}

func TestEstimateParallel_NoRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	failing := func(context.Context, *Sampler, int64) (BatchResult, error) {
		calls.Add(1)
		return BatchResult{}, errors.New("nope")
	}
	_, err := EstimateParallel(context.Background(), 10, 100,
		Options{Seed: 1, Workers: 1, Retries: 0, Batch: failing})

	var workerErr apperrors.WorkerFailureError
	require.ErrorAs(t, err, &workerErr)
	assert.Equal(t, 1, workerErr.Attempts)
	assert.Equal(t, int64(1), calls.Load())
}

func TestEstimateParallel_PanicBecomesWorkerFailure(t *testing.T) {
	t.Parallel()

	panicking := func(context.Context, *Sampler, int64) (BatchResult, error) {
		panic("index out of range")
	}
	_, err := EstimateParallel(context.Background(), 10, 100,
		Options{Seed: 1, Workers: 1, Batch: panicking})

	var workerErr apperrors.WorkerFailureError
	require.ErrorAs(t, err, &workerErr)
	assert.ErrorIs(t, err, ErrWorkerPanic)
}

func TestEstimateParallel_InconsistentBatchRejected(t *testing.T) {
	t.Parallel()

	lying := func(_ context.Context, _ *Sampler, size int64) (BatchResult, error) {
		return BatchResult{Hits: size + 1, Total: size}, nil
	}
	_, err := EstimateParallel(context.Background(), 10, 100,
		Options{Seed: 1, Workers: 1, Batch: lying})

	var workerErr apperrors.WorkerFailureError
	assert.ErrorAs(t, err, &workerErr)
}

func TestEstimateParallel_FailFastCancelsOthers(t *testing.T) {
	t.Parallel()

	var canceled atomic.Int64
	batch := func(ctx context.Context, s *Sampler, size int64) (BatchResult, error) {
		if size == 5 {
			return BatchResult{}, errors.New("bad batch")
		}
		select {
		case <-ctx.Done():
			canceled.Add(1)
			return BatchResult{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return RunBatch(ctx, s, size)
		}
	}

	start := time.Now()
	_, err := RunPlan(context.Background(), BatchPlan{MaxBatch: 10, Full: 3, Remainder: 5},
		Options{Seed: 1, Workers: 4, Retries: 0, Batch: batch})
	var workerErr apperrors.WorkerFailureError
	require.ErrorAs(t, err, &workerErr)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestEstimate_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := EstimateSequential(ctx, 100, Options{Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = EstimateParallel(ctx, 100, 10, Options{Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperrors.ExitErrorCanceled, apperrors.ExitCodeFor(err))
}

func TestEstimate_ProgressReachesCompletion(t *testing.T) {
	t.Parallel()

	for _, run := range []struct {
		name string
		fn   func(Options) error
	}{
		{"sequential", func(o Options) error {
			_, err := EstimateSequential(context.Background(), 500, o)
			return err
		}},
		{"parallel", func(o Options) error {
			_, err := EstimateParallel(context.Background(), 500, 1000, o)
			return err
		}},
	} {
		t.Run(run.name, func(t *testing.T) {
			var mu sync.Mutex
			var values []float64
			err := run.fn(Options{Seed: 2, Workers: 3, Progress: func(p float64) {
				mu.Lock()
				values = append(values, p)
				mu.Unlock()
			}})
			require.NoError(t, err)
			require.NotEmpty(t, values)
			assert.Equal(t, 1.0, values[len(values)-1])
			assert.IsNonDecreasing(t, values)
			assert.LessOrEqual(t, len(values), progress.ReportSteps+1)
		})
	}
}

func TestEstimators_PublishOnChannel(t *testing.T) {
	t.Parallel()

	for _, e := range []Estimator{SequentialEstimator{}, ParallelEstimator{}, PointwiseEstimator{}} {
		t.Run(e.Name(), func(t *testing.T) {
			ch := make(chan progress.ProgressUpdate, 4*progress.ReportSteps)
			res, err := e.Estimate(context.Background(), ch, 3, 30, Options{Seed: 8, MaxBatch: 64, Workers: 2})
			require.NoError(t, err)
			assert.Equal(t, int64(900), res.SquarePoints)
			close(ch)

			var last progress.ProgressUpdate
			for u := range ch {
				assert.Equal(t, 3, u.EstimatorIndex)
				last = u
			}
			assert.Equal(t, 1.0, last.Value)
		})
	}
}

func TestParallelEstimator_RejectsZeroMaxBatch(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	_, err := ParallelEstimator{}.Estimate(context.Background(), nil, 0, 10, Options{
		Seed: 1,
		Batch: func(ctx context.Context, s *Sampler, n int64) (BatchResult, error) {
			calls.Add(1)
			return RunBatch(ctx, s, n)
		},
	})
	var valErr apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "batch-size", valErr.Field)
	assert.Zero(t, calls.Load(), "no batch may run")
}

func TestPointwiseEstimator_OneBatchPerPoint(t *testing.T) {
	t.Parallel()

	res, err := PointwiseEstimator{}.Estimate(context.Background(), nil, 0, 20, Options{Seed: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(400), res.Batches)
}

func TestDefaultFactory(t *testing.T) {
	t.Parallel()

	f := NewDefaultFactory()
	assert.Equal(t, []string{"parallel", "pointwise", "sequential"}, f.List())

	e, err := f.Get(" Parallel ")
	require.NoError(t, err)
	assert.Equal(t, "Parallel", e.Name())

	_, err = f.Get("quantum")
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "available: parallel, pointwise, sequential")

	assert.Error(t, f.Register("sequential", SequentialEstimator{}))
	assert.Error(t, f.Register("", SequentialEstimator{}))
	assert.Error(t, f.Register("ghost", nil))
	assert.Panics(t, func() { f.MustGet("quantum") })

	all := f.GetAll()
	delete(all, "parallel")
	assert.Len(t, f.List(), 3)
}

func TestGlobalFactory_Singleton(t *testing.T) {
	t.Parallel()
	assert.Same(t, GlobalFactory(), GlobalFactory())
}
