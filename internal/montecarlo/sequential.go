package montecarlo

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/progress"
)

var tracer = otel.Tracer("github.com/agbru/picalc/internal/montecarlo")

// EstimateSequential samples domain² points on the calling goroutine.
// Arguments are validated before any point is drawn.
func EstimateSequential(ctx context.Context, domain int64, opts Options) (Result, error) {
	total, err := TotalPoints(domain)
	if err != nil {
		return Result{}, err
	}
	opts, err = opts.resolved("sequential")
	if err != nil {
		return Result{}, err
	}

	ctx, span := tracer.Start(ctx, "montecarlo.sequential", trace.WithAttributes(
		attribute.Int64("domain", domain),
		attribute.Int64("points", total),
	))
	defer span.End()

	opts.Logger.Debug("sequential estimation started",
		logging.Int64("points", total), logging.Uint64("seed", opts.Seed))

	sampler := NewSeededSampler(opts.Seed, sequentialStream)
	tracker := progress.NewTracker(total, opts.Progress)
	var counters Counters
	start := time.Now()
	for remaining := total; remaining > 0; {
		n := min(remaining, CancelCheckInterval)
		res, err := RunBatch(ctx, sampler, n)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "canceled")
			return Result{}, err
		}
		counters.Add(res)
		tracker.Add(n)
		remaining -= n
	}
	// The whole run is one batch as far as metrics are concerned.
	opts.Recorder.BatchCompleted(opts.Label, BatchResult{Hits: counters.CirclePoints, Total: counters.SquarePoints}, time.Since(start))

	result, err := resultFrom(counters, 1, 1, opts.Seed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(attribute.Float64("pi", result.Pi))
	return result, nil
}
