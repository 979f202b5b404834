package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	bubbleprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/ui"
)

type rowStatus int

const (
	rowPending rowStatus = iota
	rowRunning
	rowDone
	rowFailed
)

type estimatorRow struct {
	key      string
	name     string
	value    float64
	status   rowStatus
	pi       float64
	absErr   float64
	duration time.Duration
	err      error
}

// EstimatorsModel shows one progress bar per estimator and, once the run
// is over, its estimate.
type EstimatorsModel struct {
	rows     []estimatorRow
	bar      bubbleprogress.Model
	best     string
	average  float64
	eta      time.Duration
	width    int
	height   int
	nameCols int
}

// NewEstimatorsModel creates the panel for the selected estimators.
func NewEstimatorsModel(selected []orchestration.SelectedEstimator) EstimatorsModel {
	m := EstimatorsModel{rows: make([]estimatorRow, len(selected)), bar: newBar()}
	for i, s := range selected {
		m.rows[i] = estimatorRow{key: s.Key, name: s.Estimator.Name()}
		m.nameCols = max(m.nameCols, lipgloss.Width(m.rows[i].name))
	}
	return m
}

func newBar() bubbleprogress.Model {
	t := ui.GetCurrentTUITheme()
	if t.BarStart == "" {
		return bubbleprogress.New(bubbleprogress.WithSolidFill(""), bubbleprogress.WithoutPercentage())
	}
	return bubbleprogress.New(bubbleprogress.WithGradient(t.BarStart, t.BarEnd), bubbleprogress.WithoutPercentage())
}

// SetSize updates dimensions.
func (m *EstimatorsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	// name, bar, percentage and borders share the width.
	m.bar.Width = max(w-m.nameCols-16, 10)
}

// UpdateProgress applies one progress message.
func (m *EstimatorsModel) UpdateProgress(msg ProgressMsg) {
	m.average, m.eta = msg.AverageProgress, msg.ETA
	if msg.EstimatorIndex < 0 || msg.EstimatorIndex >= len(m.rows) {
		return
	}
	r := &m.rows[msg.EstimatorIndex]
	r.value = min(max(msg.Value, 0), 1)
	if r.status == rowPending {
		r.status = rowRunning
	}
	// Estimators run in order: an update for index i means every earlier
	// one has returned.
	for i := range msg.EstimatorIndex {
		if m.rows[i].status == rowRunning || m.rows[i].status == rowPending {
			m.rows[i].status = rowDone
		}
	}
}

// SetResults records the outcome of every estimator.
func (m *EstimatorsModel) SetResults(results []orchestration.EstimationResult) {
	for _, res := range results {
		for i := range m.rows {
			if m.rows[i].key != res.Key {
				continue
			}
			r := &m.rows[i]
			r.duration = res.Duration
			r.err = res.Err
			if res.Err != nil {
				r.status = rowFailed
				continue
			}
			r.status = rowDone
			r.value = 1
			r.pi = res.Result.Pi
			r.absErr = res.Result.AbsError()
		}
	}
}

// SetBest marks the most accurate estimator.
func (m *EstimatorsModel) SetBest(key string) {
	m.best = key
}

// Average returns the mean progress over all estimators.
func (m EstimatorsModel) Average() float64 { return m.average }

// View renders the panel.
func (m EstimatorsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Estimators"))
	for _, r := range m.rows {
		b.WriteString("\n")
		name := fmt.Sprintf("%-*s", m.nameCols, r.name)
		b.WriteString(labelStyle.Render(name) + " " + m.bar.ViewAs(r.value) + " " + fmt.Sprintf("%5.1f%%", r.value*100))
		b.WriteString("\n")
		b.WriteString(spaces(m.nameCols+1) + m.statusLine(r))
	}
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Overall ") + valueStyle.Render(fmt.Sprintf("%5.1f%%", m.average*100)) +
		labelStyle.Render("  ETA ") + valueStyle.Render(format.FormatETA(m.eta)))

	return panelStyle.Width(max(m.width-2, 0)).Render(b.String())
}

func (m EstimatorsModel) statusLine(r estimatorRow) string {
	switch r.status {
	case rowRunning:
		return accentStyle.Render("sampling...")
	case rowDone:
		if r.duration == 0 {
			return successStyle.Render("done")
		}
		line := fmt.Sprintf("π ≈ %.6f  |err| %.6f  in %s", r.pi, r.absErr, format.FormatExecutionDuration(r.duration))
		if r.key == m.best {
			line += "  ★"
		}
		return successStyle.Render(line)
	case rowFailed:
		return errorStyle.Render("failed: " + r.err.Error())
	default:
		return dimStyle.Render(fmt.Sprintf("waiting (π = %.5f)", math.Pi))
	}
}
