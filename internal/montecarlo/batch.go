package montecarlo

import (
	"context"
	"errors"
	"fmt"
)

// CancelCheckInterval is how many samples a worker draws between two looks
// at its context. Must be a power of two.
const CancelCheckInterval = 1 << 14

// ErrWorkerPanic marks a batch whose worker panicked.
var ErrWorkerPanic = errors.New("batch worker panicked")

// BatchResult is the outcome of one batch: how many of Total points hit the
// circle.
type BatchResult struct {
	Hits  int64 `yaml:"hits"`
	Total int64 `yaml:"total"`
}

// BatchFunc samples size points with sampler. RunBatch is the production
// implementation; tests substitute failing ones.
type BatchFunc func(ctx context.Context, sampler *Sampler, size int64) (BatchResult, error)

// RunBatch draws size points from sampler and returns the hit count. It stops
// early with the context error if ctx is cancelled.
func RunBatch(ctx context.Context, sampler *Sampler, size int64) (BatchResult, error) {
	var hits int64
	for i := int64(0); i < size; i++ {
		if i&(CancelCheckInterval-1) == 0 {
			if err := ctx.Err(); err != nil {
				return BatchResult{}, err
			}
		}
		if sampler.Sample() {
			hits++
		}
	}
	return BatchResult{Hits: hits, Total: size}, nil
}

// check rejects results that would corrupt the aggregate.
func (r BatchResult) check(size int64) error {
	if r.Total != size {
		return fmt.Errorf("batch reported %d points, expected %d", r.Total, size)
	}
	if r.Hits < 0 || r.Hits > r.Total {
		return fmt.Errorf("batch reported %d hits out of %d points", r.Hits, r.Total)
	}
	return nil
}

// safeRun invokes fn and turns a panic into an error wrapping ErrWorkerPanic.
func safeRun(ctx context.Context, fn BatchFunc, sampler *Sampler, size int64) (res BatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerPanic, r)
		}
	}()
	return fn(ctx, sampler, size)
}
