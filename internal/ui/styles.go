package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette for command output
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, on states
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, unavailable
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, standby
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Layout constants
const (
	MinTerminalWidth = 60  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Shared styles for command output
var (
	// HeaderStyle is for section headers in command output
	HeaderStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// LabelStyle is for attribute labels (e.g., "Volume:")
	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(12)

	// ValueStyle is for attribute values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// OnStyle is for power-on and connected states
	OnStyle = lipgloss.NewStyle().
		Foreground(SuccessColor).
		Bold(true)

	// OffStyle is for standby and disconnected states
	OffStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// ErrorStyle is for error text
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// MutedStyle is for secondary detail lines
	MutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	// DeviceNameStyle is for receiver names in listings
	DeviceNameStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)
)

// Result markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
)

// GetTerminalWidth returns the current terminal width, with fallback
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < MinTerminalWidth {
		return MinTerminalWidth
	}
	if width > MaxContentWidth {
		return MaxContentWidth
	}
	return width
}

// BoxStyle returns the border style for receiver detail boxes
func BoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Padding(0, 1)
}

// PowerLabel renders a colored ON/STANDBY/UNAVAILABLE label
func PowerLabel(state string) string {
	switch state {
	case "ON", "PLAYING", "PAUSED":
		return OnStyle.Render(state)
	case "OFF":
		return OffStyle.Render("STANDBY")
	case "UNAVAILABLE":
		return ErrorStyle.Render(state)
	default:
		return MutedStyle.Render(state)
	}
}
