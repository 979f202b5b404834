package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the run status and key help.
type FooterModel struct {
	help    help.Model
	paused  bool
	done    bool
	failed  bool
	message string
	width   int
}

// NewFooterModel creates a footer.
func NewFooterModel() FooterModel {
	return FooterModel{help: help.New()}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = w
}

func (f *FooterModel) SetPaused(p bool) { f.paused = p }
func (f *FooterModel) SetDone(d bool)   { f.done = d }
func (f *FooterModel) SetError(e bool)  { f.failed = e }

// SetMessage shows a one-line summary next to the status.
func (f *FooterModel) SetMessage(s string) { f.message = s }

// View renders the footer with the bindings of keys.
func (f FooterModel) View(keys KeyMap) string {
	var status string
	switch {
	case f.failed:
		status = statusErrorStyle.Render("FAILED")
	case f.done:
		status = statusDoneStyle.Render("DONE")
	case f.paused:
		status = statusPausedStyle.Render("PAUSED")
	default:
		status = statusRunningStyle.Render("RUNNING")
	}
	left := " " + status
	if f.message != "" {
		left += dimStyle.Render("  " + f.message)
	}
	helpView := f.help.View(keys)
	gap := max(f.width-lipgloss.Width(left)-lipgloss.Width(helpView)-1, 1)
	return left + spaces(gap) + helpView
}
