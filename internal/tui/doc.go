// Package tui implements the interactive monitor screen: a live
// dashboard for one receiver built on Bubble Tea. The model connects
// on startup, re-renders on every pushed state update, and maps key
// presses onto the device control surface.
package tui
