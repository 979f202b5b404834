package montecarlo

//go:generate mockgen -source=estimator.go -destination=mocks/mock_estimator.go -package=mocks

import (
	"context"

	"github.com/agbru/picalc/internal/progress"
)

// Estimator is one π estimation strategy as seen by the orchestration layer.
type Estimator interface {
	// Name is the human-readable label shown in tables and progress bars.
	Name() string
	// Estimate samples domain² points. Progress is published on progressChan
	// as ProgressUpdate values tagged with index; progressChan may be nil.
	Estimate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, domain int64, opts Options) (Result, error)
}

// SequentialEstimator samples on a single goroutine.
type SequentialEstimator struct{}

func (SequentialEstimator) Name() string { return "Sequential" }

func (SequentialEstimator) Estimate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, domain int64, opts Options) (Result, error) {
	opts.Progress = chainProgress(opts.Progress, progressChan, index)
	if opts.Label == "" {
		opts.Label = "sequential"
	}
	return EstimateSequential(ctx, domain, opts)
}

// ParallelEstimator runs batches of Options.MaxBatch points on a bounded
// pool. MaxBatch must be positive.
type ParallelEstimator struct{}

func (ParallelEstimator) Name() string { return "Parallel" }

func (ParallelEstimator) Estimate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, domain int64, opts Options) (Result, error) {
	opts.Progress = chainProgress(opts.Progress, progressChan, index)
	if opts.Label == "" {
		opts.Label = "parallel"
	}
	return EstimateParallel(ctx, domain, opts.MaxBatch, opts)
}

// PointwiseEstimator dispatches every point as its own task. It shows what
// the parallel engine costs without batching and is far slower than the
// other strategies.
type PointwiseEstimator struct{}

func (PointwiseEstimator) Name() string { return "Pointwise" }

func (PointwiseEstimator) Estimate(ctx context.Context, progressChan chan<- progress.ProgressUpdate, index int, domain int64, opts Options) (Result, error) {
	opts.Progress = chainProgress(opts.Progress, progressChan, index)
	if opts.Label == "" {
		opts.Label = "pointwise"
	}
	return EstimateParallel(ctx, domain, 1, opts)
}

// chainProgress fans progress out to an existing callback and a channel.
func chainProgress(cb progress.ProgressCallback, ch chan<- progress.ProgressUpdate, index int) progress.ProgressCallback {
	subject := progress.NewProgressSubject()
	if ch != nil {
		subject.Register(progress.NewChannelObserver(ch))
	}
	frozen := subject.Freeze(index)
	switch {
	case frozen == nil:
		return cb
	case cb == nil:
		return frozen
	default:
		return func(p float64) {
			cb(p)
			frozen(p)
		}
	}
}
