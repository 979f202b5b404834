package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/montecarlo"
	"github.com/agbru/picalc/internal/progress"
	"github.com/agbru/picalc/internal/timing"
)

// ProgressBufferMultiplier sizes the progress channel per estimator so a slow
// display rarely causes dropped updates.
const ProgressBufferMultiplier = 16

// ProgressLogStep is the progress increment between debug log entries.
const ProgressLogStep = 0.1

// consistencySigmas is how many combined standard errors two estimates may
// differ by before they are reported as inconsistent.
const consistencySigmas = 6

// Runtime carries the collaborators shared by every estimator run. Nil
// fields are ignored.
type Runtime struct {
	Logger   logging.Logger
	Recorder montecarlo.Recorder
	Runs     RunRecorder
	// RunID tags log entries.
	RunID string
}

// ExecuteEstimations runs the estimators one after another so their timings
// do not compete for CPUs. Progress from every run is multiplexed on one
// channel consumed by reporter. An estimator is not started once ctx is
// done; its result carries the context error instead.
func ExecuteEstimations(ctx context.Context, estimators []SelectedEstimator, cfg config.AppConfig, rt Runtime, reporter ProgressReporter, out io.Writer) []EstimationResult {
	results := make([]EstimationResult, len(estimators))
	progressChan := make(chan progress.ProgressUpdate, len(estimators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(estimators), out)

	logger := rt.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	progressLog := progress.NewProgressSubject()
	progressLog.Register(progress.NewLoggingObserver(logger, ProgressLogStep))

	for i, sel := range estimators {
		results[i] = EstimationResult{Key: sel.Key, Name: sel.Estimator.Name()}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		opts := cfg.EstimatorOptions()
		opts.Label = sel.Key
		opts.Logger = logger
		opts.Recorder = rt.Recorder
		opts.Progress = progressLog.Freeze(i)

		res, elapsed, err := timing.Measure(func() (montecarlo.Result, error) {
			return sel.Estimator.Estimate(ctx, progressChan, i, cfg.Domain, opts)
		})
		results[i].Result, results[i].Duration, results[i].Err = res, elapsed, err

		if rt.Runs != nil {
			rt.Runs.RunFinished(sel.Key, res, elapsed, err)
		}
		if err != nil {
			logger.Error("estimation failed", err,
				logging.String("run_id", rt.RunID),
				logging.String("estimator", sel.Key))
			continue
		}
		logger.Info("estimation finished",
			logging.String("run_id", rt.RunID),
			logging.String("estimator", sel.Key),
			logging.Float64("pi", res.Pi),
			logging.Int64("points", res.SquarePoints),
			logging.String("elapsed", elapsed.String()))
	}

	close(progressChan)
	displayWg.Wait()

	ComputeSpeedups(results)
	return results
}

// ComputeSpeedups fills Speedup relative to the successful "sequential" run.
func ComputeSpeedups(results []EstimationResult) {
	var base time.Duration
	for _, r := range results {
		if r.Key == "sequential" && r.Err == nil {
			base = r.Duration
			break
		}
	}
	for i := range results {
		results[i].Speedup = 0
		if base > 0 && results[i].Err == nil && results[i].Duration > 0 {
			results[i].Speedup = float64(base) / float64(results[i].Duration)
		}
	}
}

// AnalyzeComparisonResults sorts results (successes first, fastest first),
// prints the comparison table and the summary of the most accurate run, and
// returns the exit code. Any failed estimator makes the run fail with that
// estimator's exit code.
func AnalyzeComparisonResults(results []EstimationResult, cfg config.AppConfig, presenter ResultPresenter, out io.Writer) int {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})

	var best *EstimationResult
	var firstError error
	var firstErrorDuration time.Duration
	for i := range results {
		if results[i].Err != nil {
			if firstError == nil {
				firstError = results[i].Err
				firstErrorDuration = results[i].Duration
			}
			continue
		}
		if best == nil || results[i].Result.AbsError() < best.Result.AbsError() {
			best = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if best == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No estimator completed.\n")
		return presenter.HandleError(firstError, firstErrorDuration, out)
	}

	if a, b, ok := findInconsistency(results); ok {
		fmt.Fprintf(out, "\nWarning: %s (%.6f) and %s (%.6f) differ by more than %d standard errors.\n",
			a.Name, a.Result.Pi, b.Name, b.Result.Pi, consistencySigmas)
	}

	if firstError != nil {
		fmt.Fprintf(out, "\nGlobal Status: Partial failure.\n")
		presenter.PresentResult(*best, cfg, out)
		return presenter.HandleError(firstError, firstErrorDuration, out)
	}

	fmt.Fprintf(out, "\nGlobal Status: Success.\n")
	presenter.PresentResult(*best, cfg, out)
	return apperrors.ExitSuccess
}

// StandardError returns the standard error of a π estimate drawn from n
// points: 4·sqrt(p(1-p)/n) with p = π/4.
func StandardError(n int64) float64 {
	if n <= 0 {
		return math.Inf(1)
	}
	p := math.Pi / 4
	return 4 * math.Sqrt(p*(1-p)/float64(n))
}

func findInconsistency(results []EstimationResult) (EstimationResult, EstimationResult, bool) {
	for i := range results {
		for j := i + 1; j < len(results); j++ {
			a, b := results[i], results[j]
			if a.Err != nil || b.Err != nil {
				continue
			}
			sa, sb := StandardError(a.Result.SquarePoints), StandardError(b.Result.SquarePoints)
			if math.Abs(a.Result.Pi-b.Result.Pi) > consistencySigmas*math.Hypot(sa, sb) {
				return a, b, true
			}
		}
	}
	return EstimationResult{}, EstimationResult{}, false
}
