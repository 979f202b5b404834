package tui

import (
	"time"

	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/orchestration"
)

// ProgressMsg carries one progress update and the aggregate view.
type ProgressMsg struct {
	EstimatorIndex  int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// ComparisonResultsMsg carries every estimator's result.
type ComparisonResultsMsg struct {
	Results []orchestration.EstimationResult
}

// FinalResultMsg carries the most accurate successful result.
type FinalResultMsg struct {
	Result orchestration.EstimationResult
}

// ErrorMsg reports a failed estimator.
type ErrorMsg struct {
	Err      error
	Duration time.Duration
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg carries a runtime memory snapshot.
type MemStatsMsg metrics.MemorySnapshot

// SysStatsMsg carries host-wide CPU and memory usage.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// EstimationCompleteMsg is sent when the orchestration returns.
type EstimationCompleteMsg struct {
	ExitCode int
}

// ContextCancelledMsg is sent when the run context ends before completion.
type ContextCancelledMsg struct {
	Err error
}
