package format

import (
	"fmt"
	"strings"
	"time"
)

// maxETA caps estimates derived from a very slow start.
const maxETA = 24 * time.Hour

// ProgressState tracks the progress of several estimators and averages it.
type ProgressState struct {
	progresses    []float64
	numEstimators int
}

// NewProgressState creates a state for n estimators.
func NewProgressState(n int) *ProgressState {
	if n < 0 {
		n = 0
	}
	return &ProgressState{progresses: make([]float64, n), numEstimators: n}
}

// Update records progress for estimator index. Out-of-range indices are
// ignored and values are clamped to [0, 1].
func (ps *ProgressState) Update(index int, value float64) {
	if index < 0 || index >= len(ps.progresses) {
		return
	}
	ps.progresses[index] = min(max(value, 0), 1)
}

// Progress returns the recorded progress of estimator index.
func (ps *ProgressState) Progress(index int) float64 {
	if index < 0 || index >= len(ps.progresses) {
		return 0
	}
	return ps.progresses[index]
}

// CalculateAverage returns the mean progress over all estimators.
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numEstimators == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps.progresses {
		sum += p
	}
	return sum / float64(ps.numEstimators)
}

// ProgressWithETA adds a smoothed completion rate to ProgressState.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // fraction per second
}

// NewProgressWithETA creates an ETA-aware state for n estimators.
func NewProgressWithETA(n int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(n),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records progress and returns the new average and ETA.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (float64, time.Duration) {
	p.Update(index, value)
	avg := p.CalculateAverage()

	now := time.Now()
	if dt := now.Sub(p.lastUpdate).Seconds(); dt > 0.05 && avg > p.lastProgress {
		rate := (avg - p.lastProgress) / dt
		if p.progressRate == 0 {
			p.progressRate = rate
		} else {
			p.progressRate = 0.7*p.progressRate + 0.3*rate
		}
		p.lastUpdate = now
		p.lastProgress = avg
	} else if p.progressRate == 0 && avg > 0 {
		if elapsed := now.Sub(p.startTime).Seconds(); elapsed > 0 {
			p.progressRate = avg / elapsed
		}
	}
	return avg, p.GetETA()
}

// GetETA returns the time remaining at the current rate, or 0 when unknown.
func (p *ProgressWithETA) GetETA() time.Duration {
	if p.progressRate <= 0 {
		return 0
	}
	remaining := 1 - p.CalculateAverage()
	if remaining <= 0 {
		return 0
	}
	eta := time.Duration(remaining / p.progressRate * float64(time.Second))
	if eta > maxETA || eta < 0 {
		return maxETA
	}
	return eta
}

// ProgressBar renders a bar of length cells, clamping progress to [0, 1].
func ProgressBar(progress float64, length int) string {
	if length <= 0 {
		return ""
	}
	progress = min(max(progress, 0), 1)
	filled := int(progress * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// FormatProgressBarWithETA renders "[bar] 42.0% ETA: 3s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("[%s] %5.1f%% ETA: %s", ProgressBar(progress, width), min(max(progress, 0), 1)*100, FormatETA(eta))
}
