package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/avrctl/internal/avr"
	"github.com/muurk/avrctl/internal/ui"
)

// Messages

type connectedMsg struct{}

type connectFailedMsg struct{ err error }

type deviceEventMsg struct{ event avr.Event }

// monitorKeyMap defines key bindings for the monitor screen
type monitorKeyMap struct {
	Power      key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Mute       key.Binding
	PlayPause  key.Binding
	NextTrack  key.Binding
	Refresh    key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k monitorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Power, k.VolumeUp, k.VolumeDown, k.Mute, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k monitorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Power, k.VolumeUp, k.VolumeDown, k.Mute},
		{k.PlayPause, k.NextTrack, k.Refresh, k.Quit},
	}
}

func newMonitorKeyMap() monitorKeyMap {
	return monitorKeyMap{
		Power: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "power"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "=", "up"),
			key.WithHelp("+/↑", "vol up"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "down"),
			key.WithHelp("-/↓", "vol down"),
		),
		Mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		NextTrack: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next track"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// MonitorModel is the live dashboard for one receiver. It connects on
// startup, mirrors every state update the receiver pushes, and maps
// key presses onto device controls.
type MonitorModel struct {
	device *avr.Device

	connecting bool
	errMsg     string
	lastChange string

	spinner spinner.Model
	help    help.Model
	keys    monitorKeyMap
	width   int
}

// NewMonitorModel creates a monitor for a device that is not yet
// connected. Connection happens in Init.
func NewMonitorModel(device *avr.Device) MonitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return MonitorModel{
		device:     device,
		connecting: true,
		spinner:    s,
		help:       help.New(),
		keys:       newMonitorKeyMap(),
		width:      ui.GetTerminalWidth(),
	}
}

// Init starts the connection attempt and the spinner
func (m MonitorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, connectCmd(m.device), waitForEvent(m.device))
}

// connectCmd dials the receiver off the UI goroutine
func connectCmd(device *avr.Device) tea.Cmd {
	return func() tea.Msg {
		if err := device.Connect(context.Background()); err != nil {
			return connectFailedMsg{err: err}
		}
		return connectedMsg{}
	}
}

// waitForEvent blocks on the device's event stream and feeds the next
// event into the update loop. Re-armed after each delivery.
func waitForEvent(device *avr.Device) tea.Cmd {
	return func() tea.Msg {
		return deviceEventMsg{event: <-device.Events()}
	}
}

// Update handles all messages
func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.width > ui.MaxContentWidth {
			m.width = ui.MaxContentWidth
		}
		return m, nil

	case spinner.TickMsg:
		if !m.connecting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case connectedMsg:
		m.connecting = false
		return m, nil

	case connectFailedMsg:
		m.connecting = false
		m.errMsg = msg.err.Error()
		return m, nil

	case deviceEventMsg:
		m.applyEvent(msg.event)
		return m, waitForEvent(m.device)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *MonitorModel) applyEvent(ev avr.Event) {
	switch ev.Kind {
	case avr.EventConnected:
		m.errMsg = ""
		m.lastChange = "connected"
	case avr.EventDisconnected:
		if ev.Message != "" {
			m.errMsg = "connection lost: " + ev.Message
		}
		m.lastChange = "disconnected"
	case avr.EventError:
		m.errMsg = ev.Message
	case avr.EventUpdate:
		changed := make([]string, 0, len(ev.Changes))
		for attr := range ev.Changes {
			changed = append(changed, string(attr))
		}
		m.lastChange = strings.Join(changed, ", ")
	}
}

func (m MonitorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.device.Disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Power):
		if m.device.Snapshot().State == avr.StateOff {
			m.device.PowerOn()
		} else {
			m.device.PowerOff()
		}

	case key.Matches(msg, m.keys.VolumeUp):
		m.device.VolumeUp()

	case key.Matches(msg, m.keys.VolumeDown):
		m.device.VolumeDown()

	case key.Matches(msg, m.keys.Mute):
		m.device.MuteToggle()

	case key.Matches(msg, m.keys.PlayPause):
		if m.device.Snapshot().State == avr.StatePlaying {
			m.device.Pause()
		} else {
			m.device.Play()
		}

	case key.Matches(msg, m.keys.NextTrack):
		m.device.Next()

	case key.Matches(msg, m.keys.Refresh):
		go m.device.Refresh()
	}

	return m, nil
}

// View renders the dashboard
func (m MonitorModel) View() string {
	var b strings.Builder

	title := titleStyle.Render(fmt.Sprintf("AVR MONITOR  %s", m.device.ID))
	b.WriteString(title + "\n")
	b.WriteString(ui.MutedStyle.Render(m.device.Addr()) + "\n\n")

	if m.connecting {
		b.WriteString(fmt.Sprintf("%s connecting...\n", m.spinner.View()))
		return b.String()
	}

	if m.errMsg != "" {
		b.WriteString(ui.ErrorStyle.Render(ui.FailureMarker+" "+m.errMsg) + "\n\n")
	}

	snap := m.device.Snapshot()

	var box strings.Builder
	box.WriteString(row("State", ui.PowerLabel(string(snap.State))))
	box.WriteString(row("Volume", volumeBar(snap.Volume, snap.Muted)))
	box.WriteString(row("Source", snap.Source))
	box.WriteString(row("Mode", snap.SoundMode))

	if snap.Title != "" || snap.Artist != "" {
		box.WriteString("\n")
		box.WriteString(row("Title", snap.Title))
		box.WriteString(row("Artist", snap.Artist))
		box.WriteString(row("Album", snap.Album))
		if snap.Duration > 0 {
			box.WriteString(row("Position", fmt.Sprintf("%s / %s",
				clock(snap.Position), clock(snap.Duration))))
		}
	}

	b.WriteString(ui.BoxStyle(m.width).Render(box.String()) + "\n")

	if m.lastChange != "" {
		b.WriteString(ui.MutedStyle.Render("last update: "+m.lastChange) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

func row(label, value string) string {
	if value == "" {
		value = "-"
	}
	return ui.LabelStyle.Render(label) + ui.ValueStyle.Render(value) + "\n"
}

// volumeBar renders the volume as a bar plus the raw number
func volumeBar(volume int, muted bool) string {
	if muted {
		return mutedVolumeStyle.Render("MUTED")
	}
	if volume < 0 {
		volume = 0
	}
	if volume > avr.VolumeMax {
		volume = avr.VolumeMax
	}

	const cells = 20
	filled := volume * cells / avr.VolumeMax
	bar := strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
	return fmt.Sprintf("%s %d", barStyle.Render(bar), volume)
}

func clock(seconds int) string {
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
