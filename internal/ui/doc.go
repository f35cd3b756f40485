// Package ui provides shared terminal styling for avrctl command
// output: the color palette, lipgloss styles, and terminal width
// detection. The interactive monitor has its own screen models in the
// tui package and borrows this palette.
package ui
