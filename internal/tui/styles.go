package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/avrctl/internal/ui"
)

// Monitor-specific styles on top of the shared palette
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			MarginBottom(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor)

	barStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor)

	mutedVolumeStyle = lipgloss.NewStyle().
				Foreground(ui.WarningColor).
				Bold(true)
)
