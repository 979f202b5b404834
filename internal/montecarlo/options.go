package montecarlo

import (
	"fmt"
	"math/rand/v2"
	"time"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/progress"
	"github.com/agbru/picalc/internal/sysmon"
)

const (
	// MaxDomain is the largest domain whose square fits in an int64.
	MaxDomain int64 = 3037000499

	// DefaultDomain is the side length used when none is configured.
	DefaultDomain int64 = 5000

	// DefaultMaxBatch is the batch size used when none is configured.
	DefaultMaxBatch int64 = 50000

	// DefaultRetries is how many extra attempts a failed batch gets.
	DefaultRetries = 1
)

// Recorder receives per-batch events from the estimators.
type Recorder interface {
	BatchCompleted(estimator string, result BatchResult, elapsed time.Duration)
	BatchRetried(estimator string)
}

type nopRecorder struct{}

func (nopRecorder) BatchCompleted(string, BatchResult, time.Duration) {}
func (nopRecorder) BatchRetried(string)                               {}

// Options tunes an estimation run. The zero value is usable.
type Options struct {
	// MaxBatch is the largest batch ParallelEstimator dispatches; it has no
	// default. EstimateParallel takes it as an argument.
	MaxBatch int64
	// Workers bounds the number of batches in flight. 0 means AvailableCPUs.
	Workers int
	// Seed makes a run reproducible. 0 draws a fresh seed per run.
	Seed uint64
	// Retries is the number of extra attempts per failed batch.
	// Negative means DefaultRetries.
	Retries int
	// Label names the run in logs, spans and metrics.
	Label string

	Progress progress.ProgressCallback
	Logger   logging.Logger
	Recorder Recorder
	// Batch replaces RunBatch. Tests use it to inject failures.
	Batch BatchFunc
}

// DefaultWorkers returns the pool size used when Options.Workers is 0.
func DefaultWorkers() int {
	return sysmon.AvailableCPUs()
}

// resolved fills defaults and draws the run seed.
func (o Options) resolved(label string) (Options, error) {
	if o.Workers < 0 {
		return o, apperrors.ValidationError{
			Field:   "workers",
			Message: fmt.Sprintf("must not be negative, got %d", o.Workers),
		}
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers()
	}
	if o.Retries < 0 {
		o.Retries = DefaultRetries
	}
	if o.Seed == 0 {
		o.Seed = rand.Uint64() | 1
	}
	if o.Label == "" {
		o.Label = label
	}
	if o.Logger == nil {
		o.Logger = logging.NewNopLogger()
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Batch == nil {
		o.Batch = RunBatch
	}
	return o, nil
}

// TotalPoints validates domain and returns domain².
func TotalPoints(domain int64) (int64, error) {
	if domain <= 0 {
		return 0, apperrors.ValidationError{
			Field:   "domain",
			Message: fmt.Sprintf("must be positive, got %d", domain),
		}
	}
	if domain > MaxDomain {
		return 0, apperrors.ValidationError{
			Field:   "domain",
			Message: fmt.Sprintf("%d squared overflows a 64-bit count (max %d)", domain, MaxDomain),
		}
	}
	return domain * domain, nil
}

// batchStream derives the PCG stream for a batch attempt. Attempts of the
// same batch never share a stream.
func batchStream(index int64, attempt int) uint64 {
	return uint64(index)<<8 | uint64(attempt&0xff)
}

// sequentialStream is reserved for the single-threaded sampler.
const sequentialStream = ^uint64(0)
