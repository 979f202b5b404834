package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/montecarlo"
	"github.com/agbru/picalc/internal/progress"
)

// EstimationResult is the outcome of one estimator run, shared by the
// orchestration and presentation layers.
type EstimationResult struct {
	// Key is the registry key ("sequential", "parallel", ...).
	Key string
	// Name is the display name.
	Name string
	// Result is the zero value when Err is set.
	Result   montecarlo.Result
	Duration time.Duration
	Err      error
	// Speedup is the sequential duration divided by this run's duration, or
	// 0 when no successful sequential run is available.
	Speedup float64
}

// ProgressReporter displays progress updates until progressChan is closed,
// then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numEstimators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numEstimators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numEstimators int, out io.Writer) {
	f(wg, progressChan, numEstimators, out)
}

// NullProgressReporter drains the channel silently. Used in quiet mode.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders results.
type ResultPresenter interface {
	// PresentComparisonTable prints one row per estimator.
	PresentComparisonTable(results []EstimationResult, out io.Writer)
	// PresentResult prints the detailed summary of a successful run.
	PresentResult(result EstimationResult, cfg config.AppConfig, out io.Writer)
	// HandleError reports err and returns the exit code for it.
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// RunRecorder receives the outcome of every estimator run.
// metrics.Collector implements it.
type RunRecorder interface {
	RunFinished(estimator string, result montecarlo.Result, elapsed time.Duration, err error)
}
