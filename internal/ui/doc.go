// Package ui holds the color themes shared by the CLI presenter and the TUI
// dashboard. ANSI codes serve plain terminal output; TUITheme carries the
// lipgloss colors of the dashboard.
package ui
