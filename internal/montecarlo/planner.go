package montecarlo

import (
	"fmt"
	"iter"

	"github.com/samber/lo"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// BatchPlan splits a point count into batches: Full batches of MaxBatch
// points followed by one batch of Remainder points when Remainder > 0.
//
// The plan is stored in this compact form because a batch size of 1 turns a
// large domain into tens of millions of batches.
type BatchPlan struct {
	MaxBatch  int64
	Full      int64
	Remainder int64
}

// PlanBatches builds the plan for totalPoints with batches of at most
// maxBatch points. No batch is ever empty: an exact multiple yields only full
// batches and totalPoints == 0 yields an empty plan.
func PlanBatches(totalPoints, maxBatch int64) (BatchPlan, error) {
	if maxBatch <= 0 {
		return BatchPlan{}, apperrors.ValidationError{
			Field:   "batch-size",
			Message: fmt.Sprintf("must be positive, got %d", maxBatch),
		}
	}
	if totalPoints < 0 {
		return BatchPlan{}, apperrors.ValidationError{
			Field:   "total-points",
			Message: fmt.Sprintf("must not be negative, got %d", totalPoints),
		}
	}
	full := totalPoints / maxBatch
	return BatchPlan{
		MaxBatch:  maxBatch,
		Full:      full,
		Remainder: totalPoints - full*maxBatch,
	}, nil
}

// Len returns the number of batches.
func (p BatchPlan) Len() int64 {
	if p.Remainder > 0 {
		return p.Full + 1
	}
	return p.Full
}

// Total returns the number of points covered by the plan.
func (p BatchPlan) Total() int64 {
	return p.Full*p.MaxBatch + p.Remainder
}

// Size returns the size of batch i. It panics if i is out of range.
func (p BatchPlan) Size(i int64) int64 {
	switch {
	case i >= 0 && i < p.Full:
		return p.MaxBatch
	case i == p.Full && p.Remainder > 0:
		return p.Remainder
	default:
		panic(fmt.Sprintf("batch index %d out of range [0,%d)", i, p.Len()))
	}
}

// All yields (index, size) for every batch in order.
func (p BatchPlan) All() iter.Seq2[int64, int64] {
	return func(yield func(int64, int64) bool) {
		for i := int64(0); i < p.Len(); i++ {
			if !yield(i, p.Size(i)) {
				return
			}
		}
	}
}

// Sizes materializes the plan as a slice of batch sizes.
func (p BatchPlan) Sizes() []int64 {
	sizes := lo.Times(int(p.Full), func(int) int64 { return p.MaxBatch })
	if p.Remainder > 0 {
		sizes = append(sizes, p.Remainder)
	}
	return sizes
}
