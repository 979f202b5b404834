package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/metrics"
)

// historySize is the number of host samples kept for the sparklines.
const historySize = 60

// MetricsModel displays runtime memory, throughput and host load history.
type MetricsModel struct {
	mem          metrics.MemorySnapshot
	points       int64 // points sampled by a whole run, all estimators included
	throughput   float64
	lastProgress float64
	lastUpdate   time.Time
	cpu          *History
	hostMem      *History
	width        int
	height       int
}

// NewMetricsModel creates the panel for a run sampling totalPoints points.
func NewMetricsModel(totalPoints int64) MetricsModel {
	return MetricsModel{
		points:     totalPoints,
		lastUpdate: time.Now(),
		cpu:        NewHistory(historySize),
		hostMem:    NewHistory(historySize),
	}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

// UpdateMemStats stores the latest runtime snapshot.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.mem = metrics.MemorySnapshot(msg)
}

// UpdateSysStats appends a host load sample.
func (m *MetricsModel) UpdateSysStats(msg SysStatsMsg) {
	m.cpu.Push(msg.CPUPercent)
	m.hostMem.Push(msg.MemPercent)
}

// UpdateProgress derives a smoothed points-per-second rate from the
// overall progress.
func (m *MetricsModel) UpdateProgress(average float64) {
	now := time.Now()
	dt := now.Sub(m.lastUpdate).Seconds()
	if dt <= 0.05 {
		return
	}
	if dp := average - m.lastProgress; dp > 0 {
		rate := dp * float64(m.points) / dt
		if m.throughput > 0 {
			m.throughput = 0.7*m.throughput + 0.3*rate
		} else {
			m.throughput = rate
		}
	}
	m.lastProgress = average
	m.lastUpdate = now
}

// Throughput returns the smoothed sampling rate in points per second.
func (m MetricsModel) Throughput() float64 { return m.throughput }

// View renders the panel.
func (m MetricsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Runtime"))
	b.WriteString("\n")
	b.WriteString(metricLine("Throughput", format.FormatInt(int64(m.throughput))+" pts/s"))
	b.WriteString(metricLine("Heap", formatBytes(m.mem.HeapAlloc)+" / "+formatBytes(m.mem.Sys)))
	b.WriteString(metricLine("GC cycles", fmt.Sprintf("%d", m.mem.NumGC)))
	b.WriteString(metricLine("Goroutines", fmt.Sprintf("%d", m.mem.Goroutines)))

	span := max(m.width-18, 1)
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", "CPU")) + cpuSparklineStyle.Render(RenderSparkline(tail(m.cpu.Values(), span))) +
		valueStyle.Render(fmt.Sprintf(" %3.0f%%", m.cpu.Last())) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-11s", "Memory")) + memSparklineStyle.Render(RenderSparkline(tail(m.hostMem.Values(), span))) +
		valueStyle.Render(fmt.Sprintf(" %3.0f%%", m.hostMem.Last())))

	return panelStyle.Width(max(m.width-2, 0)).Render(b.String())
}

func metricLine(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-11s", label)) + valueStyle.Render(value) + "\n"
}

func tail(values []float64, n int) []float64 {
	if len(values) > n {
		return values[len(values)-n:]
	}
	return values
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
