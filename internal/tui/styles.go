package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/picalc/internal/ui"
)

// Style variables for the dashboard, rebuilt from the ui theme by
// initTUIStyles.
var (
	panelStyle         lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	dimStyle           lipgloss.Style
	accentStyle        lipgloss.Style
	labelStyle         lipgloss.Style
	valueStyle         lipgloss.Style
	successStyle       lipgloss.Style
	errorStyle         lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
	cpuSparklineStyle  lipgloss.Style
	memSparklineStyle  lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the current ui theme.
// Called at package init and again from Run after InitTheme.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	dimStyle = lipgloss.NewStyle().Foreground(t.Dim)
	accentStyle = lipgloss.NewStyle().Foreground(t.Accent)
	labelStyle = lipgloss.NewStyle().Foreground(t.Dim)
	valueStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(t.Success)
	errorStyle = lipgloss.NewStyle().Foreground(t.Error)

	statusRunningStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	statusPausedStyle = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	statusDoneStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	statusErrorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)

	cpuSparklineStyle = lipgloss.NewStyle().Foreground(t.Accent)
	memSparklineStyle = lipgloss.NewStyle().Foreground(t.Warning)
}
