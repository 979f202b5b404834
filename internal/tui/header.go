package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/format"
)

// HeaderModel renders the top bar: title, version, elapsed time and host
// load.
type HeaderModel struct {
	startTime  time.Time
	endTime    time.Time
	version    string
	points     int64
	cpuPercent float64
	memPercent float64
	width      int
}

// NewHeaderModel creates a header for a run of points samples.
func NewHeaderModel(version string, points int64) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		points:    points,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	if h.endTime.IsZero() {
		h.endTime = time.Now()
	}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// SetLoad records the latest host usage.
func (h *HeaderModel) SetLoad(cpu, mem float64) {
	h.cpuPercent, h.memPercent = cpu, mem
}

// Elapsed returns the time since start, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "PiCalc Monitor"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	left := titleStyle.Render(titleText) + pipe +
		accentStyle.Render(format.FormatInt(h.points)+" points") + pipe +
		accentStyle.Render("Elapsed: "+format.FormatExecutionDuration(h.Elapsed()))
	right := dimStyle.Render(fmt.Sprintf("CPU %5.1f%%  MEM %5.1f%%", h.cpuPercent, h.memPercent))

	gap := max(h.width-2-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return headerStyle.Width(h.width).Render(left + spaces(gap) + right)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
