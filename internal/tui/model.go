// Package tui implements the interactive dashboard started with --tui.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight = 1
	footerHeight = 1
	// EstimatorsPanelWidthPercent is the share of the width given to the
	// progress bars; the runtime panel takes the rest.
	EstimatorsPanelWidthPercent = 62
	tickInterval                = 500 * time.Millisecond
)

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header     HeaderModel
	estimators EstimatorsModel
	metrics    MetricsModel
	footer     FooterModel
	keymap     KeyMap

	ctx      context.Context
	cancel   context.CancelFunc
	selected []orchestration.SelectedEstimator
	config   config.AppConfig
	runtime  orchestration.Runtime
	ref      *programRef

	results  []orchestration.EstimationResult
	paused   bool
	done     bool
	exitCode int
	width    int
	height   int
}

// NewModel creates a dashboard for the selected estimators.
func NewModel(parentCtx context.Context, selected []orchestration.SelectedEstimator, cfg config.AppConfig, rt orchestration.Runtime, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	points := cfg.Domain * cfg.Domain
	return Model{
		header:     NewHeaderModel(version, points),
		estimators: NewEstimatorsModel(selected),
		metrics:    NewMetricsModel(points * int64(len(selected))),
		footer:     NewFooterModel(),
		keymap:     DefaultKeyMap(),
		ctx:        ctx,
		cancel:     cancel,
		selected:   selected,
		config:     cfg,
		runtime:    rt,
		ref:        &programRef{},
		exitCode:   apperrors.ExitSuccess,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		sampleSysStatsCmd(),
		startEstimationCmd(m.ref, m.ctx, m.selected, m.config, m.runtime),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if !m.paused {
			m.estimators.UpdateProgress(msg)
			m.metrics.UpdateProgress(msg.AverageProgress)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case ComparisonResultsMsg:
		m.results = msg.Results
		m.estimators.SetResults(msg.Results)
		return m, nil

	case FinalResultMsg:
		m.estimators.SetBest(msg.Result.Key)
		m.footer.SetMessage(fmt.Sprintf("best: %s, π ≈ %.6f", msg.Result.Name, msg.Result.Result.Pi))
		return m, nil

	case ErrorMsg:
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.paused {
			return m, tickCmd()
		}
		return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.header.SetLoad(msg.CPUPercent, msg.MemPercent)
		m.metrics.UpdateSysStats(msg)
		return m, nil

	case EstimationCompleteMsg:
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.footer.SetDone(true)
		m.footer.SetPaused(false)
		m.paused = false
		return m, sampleMemStatsCmd()

	case ContextCancelledMsg:
		if m.done {
			return m, nil
		}
		m.done = true
		m.exitCode = apperrors.ExitCodeFor(msg.Err)
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		if m.done {
			return m, nil
		}
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil
	}
	return m, nil
}

// View renders the whole dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.estimators.View(), m.metrics.View())
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View(m.keymap))
}

func (m *Model) layoutPanels() {
	left := m.width * EstimatorsPanelWidthPercent / 100
	body := max(m.height-headerHeight-footerHeight, 4)
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.estimators.SetSize(left, body)
	m.metrics.SetSize(m.width-left, body)
}

// ExitCode returns the code the process should exit with.
func (m Model) ExitCode() int { return m.exitCode }

// Results returns the results received so far.
func (m Model) Results() []orchestration.EstimationResult { return m.results }

// Run starts the dashboard and blocks until the user quits. It returns the
// exit code and whatever results were produced.
func Run(ctx context.Context, selected []orchestration.SelectedEstimator, cfg config.AppConfig, rt orchestration.Runtime, version string) (int, []orchestration.EstimationResult) {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, selected, cfg, rt, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	final, ok := finalModel.(Model)
	if err != nil {
		// tea.WithContext kills the program when ctx ends.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return apperrors.ExitCodeFor(ctxErr), final.results
		}
		return apperrors.ExitErrorGeneric, nil
	}
	if !ok {
		return apperrors.ExitSuccess, nil
	}
	final.cancel()
	return final.exitCode, final.results
}

// startEstimationCmd returns a tea.Cmd that runs the orchestration.
func startEstimationCmd(ref *programRef, ctx context.Context, selected []orchestration.SelectedEstimator, cfg config.AppConfig, rt orchestration.Runtime) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref}
		presenter := &TUIResultPresenter{ref: ref}

		results := orchestration.ExecuteEstimations(ctx, selected, cfg, rt, reporter, io.Discard)
		exitCode := orchestration.AnalyzeComparisonResults(results, cfg, presenter, io.Discard)
		return EstimationCompleteMsg{ExitCode: exitCode}
	}
}

// tickCmd returns a command that sends a TickMsg after tickInterval.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return MemStatsMsg(metrics.ReadMemory())
	}
}

func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample()
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for the run context to end.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
