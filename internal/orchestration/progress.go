package orchestration

import (
	"time"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/progress"
)

// ProgressAggregator folds per-estimator updates into an overall fraction
// and ETA. The CLI spinner and the TUI bridge both use it.
type ProgressAggregator struct {
	state         *format.ProgressWithETA
	numEstimators int
}

// NewProgressAggregator returns nil when numEstimators <= 0.
func NewProgressAggregator(numEstimators int) *ProgressAggregator {
	if numEstimators <= 0 {
		return nil
	}
	return &ProgressAggregator{
		state:         format.NewProgressWithETA(numEstimators),
		numEstimators: numEstimators,
	}
}

// AggregatedProgress is the view after one update.
type AggregatedProgress struct {
	EstimatorIndex  int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// Update applies one progress update.
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	avg, eta := a.state.UpdateWithETA(update.EstimatorIndex, update.Value)
	return AggregatedProgress{
		EstimatorIndex:  update.EstimatorIndex,
		Value:           update.Value,
		AverageProgress: avg,
		ETA:             eta,
	}
}

// CalculateAverage returns the current overall progress.
func (a *ProgressAggregator) CalculateAverage() float64 { return a.state.CalculateAverage() }

// GetETA returns the current ETA without updating.
func (a *ProgressAggregator) GetETA() time.Duration { return a.state.GetETA() }

// Progress returns the last recorded progress of estimator index.
func (a *ProgressAggregator) Progress(index int) float64 { return a.state.Progress(index) }

// NumEstimators returns the number of estimators tracked.
func (a *ProgressAggregator) NumEstimators() int { return a.numEstimators }

// DrainChannel discards every update until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
