package montecarlo

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/progress"
)

// EstimateParallel samples domain² points split into batches of at most
// maxBatch points, running up to opts.Workers batches at once.
//
// Arguments are validated before any batch is dispatched. A batch that
// fails is retried opts.Retries times with a fresh generator; if it still
// fails, the remaining batches are cancelled and a WorkerFailureError is
// returned. No partial estimate is ever produced.
func EstimateParallel(ctx context.Context, domain, maxBatch int64, opts Options) (Result, error) {
	total, err := TotalPoints(domain)
	if err != nil {
		return Result{}, err
	}
	plan, err := PlanBatches(total, maxBatch)
	if err != nil {
		return Result{}, err
	}
	opts, err = opts.resolved("parallel")
	if err != nil {
		return Result{}, err
	}
	return RunPlan(ctx, plan, opts)
}

// RunPlan executes plan on a bounded pool and aggregates the results.
// Unset options take their defaults.
func RunPlan(ctx context.Context, plan BatchPlan, opts Options) (Result, error) {
	opts, err := opts.resolved("parallel")
	if err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, "montecarlo.parallel", trace.WithAttributes(
		attribute.String("estimator", opts.Label),
		attribute.Int64("points", plan.Total()),
		attribute.Int64("batches", plan.Len()),
		attribute.Int64("max_batch", plan.MaxBatch),
		attribute.Int("workers", opts.Workers),
	))
	defer span.End()

	opts.Logger.Debug("parallel estimation started",
		logging.String("estimator", opts.Label),
		logging.Int64("points", plan.Total()),
		logging.Int64("batches", plan.Len()),
		logging.Int("workers", opts.Workers),
		logging.Uint64("seed", opts.Seed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	results := make(chan BatchResult, min(int64(opts.Workers), plan.Len()))
	waitErr := make(chan error, 1)

	go func() {
		for index, size := range plan.All() {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res, err := runWithRetry(gctx, index, size, opts)
				if err != nil {
					return err
				}
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		waitErr <- g.Wait()
		close(results)
	}()

	// Single consumer: the counters are never shared between goroutines.
	var counters Counters
	tracker := progress.NewTracker(plan.Total(), opts.Progress)
	for res := range results {
		counters.Add(res)
		tracker.Add(res.Total)
	}

	if err := <-waitErr; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	// errgroup only cancels gctx on a task error; a parent cancellation that
	// lands after the last dispatch must still abort the run.
	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	result, err := resultFrom(counters, plan.Len(), opts.Workers, opts.Seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Float64("pi", result.Pi))
	return result, nil
}

// runWithRetry runs one batch, retrying with a fresh stream on failure.
// Context errors end the batch immediately.
func runWithRetry(ctx context.Context, index, size int64, opts Options) (BatchResult, error) {
	attempts := opts.Retries + 1
	var errs *multierror.Error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}
		sampler := NewSeededSampler(opts.Seed, batchStream(index, attempt))
		start := time.Now()
		res, err := safeRun(ctx, opts.Batch, sampler, size)
		if err == nil {
			err = res.check(size)
		}
		if err == nil {
			opts.Recorder.BatchCompleted(opts.Label, res, time.Since(start))
			return res, nil
		}
		if apperrors.IsContextError(err) && ctx.Err() != nil {
			return BatchResult{}, err
		}
		errs = multierror.Append(errs, fmt.Errorf("attempt %d: %w", attempt, err))
		if attempt < attempts {
			opts.Recorder.BatchRetried(opts.Label)
			opts.Logger.Info("batch failed, retrying",
				logging.String("estimator", opts.Label),
				logging.Int64("batch", index),
				logging.Int("attempt", attempt),
				logging.Err(err))
		}
	}
	opts.Logger.Error("batch failed", errs.ErrorOrNil(),
		logging.String("estimator", opts.Label),
		logging.Int64("batch", index),
		logging.Int64("size", size))
	return BatchResult{}, apperrors.WorkerFailureError{
		Batch:    int(index),
		Size:     size,
		Attempts: attempts,
		Cause:    errs.ErrorOrNil(),
	}
}
