package avr

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/avrctl/internal/command"
	"github.com/muurk/avrctl/internal/connection"
	"github.com/muurk/avrctl/internal/logging"
)

// DefaultRefreshDelay paces the queries inside Refresh so the receiver's
// input buffer is not overrun by back-to-back commands. Tunable; 100ms
// is safe for periodic polling on real hardware.
const DefaultRefreshDelay = 100 * time.Millisecond

// eventBuffer bounds the per-device event queue. A subscriber that
// stalls longer than this loses events rather than stalling the
// receive loop.
const eventBuffer = 64

// Device owns the logical state of one receiver and the control
// connection behind it. All state mutation happens on the connection's
// listener goroutine via the registered callbacks; reads take a copy
// under the device lock.
type Device struct {
	ID string

	conn         *connection.Connection
	refreshDelay time.Duration

	mu    sync.Mutex
	state Snapshot

	events chan Event
}

// NewDevice creates a device for one receiver address and wires its
// command callbacks. No I/O happens until Connect.
func NewDevice(id, host string, port int) *Device {
	d := &Device{
		ID:           id,
		conn:         connection.New(host, port),
		refreshDelay: DefaultRefreshDelay,
		state:        Snapshot{State: StateUnknown},
		events:       make(chan Event, eventBuffer),
	}
	d.registerCallbacks()
	return d
}

func (d *Device) registerCallbacks() {
	d.conn.RegisterCallback(command.Power, d.onPower)
	d.conn.RegisterCallback(command.Volume, d.onVolume)
	d.conn.RegisterCallback(command.Mute, d.onMute)
	d.conn.RegisterCallback(command.Input, d.onInput)
	d.conn.RegisterCallback(command.ListeningMode, d.onListeningMode)

	d.conn.RegisterCallback(command.NetTitle, d.onTitle)
	d.conn.RegisterCallback(command.NetArtist, d.onArtist)
	d.conn.RegisterCallback(command.NetAlbum, d.onAlbum)
	d.conn.RegisterCallback(command.NetTime, d.onTime)
	d.conn.RegisterCallback(command.NetStatus, d.onPlayStatus)

	d.conn.RegisterCallback(command.AudioInfo, d.onGeneric)
	d.conn.RegisterCallback(command.VideoInfo, d.onGeneric)
	for _, code := range command.LogOnlyCodes() {
		d.conn.RegisterCallback(code, d.onGeneric)
	}

	d.conn.SetDisconnectHandler(d.onDisconnect)
}

// Events returns the device's notification stream. The channel is
// buffered; a subscriber that falls far behind loses the oldest-unread
// events, which is acceptable because every state attribute is
// re-queriable via Refresh.
func (d *Device) Events() <-chan Event {
	return d.events
}

// Active reports whether the control connection is established.
func (d *Device) Active() bool {
	return d.conn.Connected()
}

// Addr returns the receiver address this device controls.
func (d *Device) Addr() string {
	return d.conn.Addr()
}

// Snapshot returns a copy of the current logical state.
func (d *Device) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetRefreshDelay overrides the pacing delay between Refresh queries.
func (d *Device) SetRefreshDelay(delay time.Duration) {
	d.refreshDelay = delay
}

// Connect establishes the control connection, announces it, and kicks
// off an initial state refresh. A failed connect emits an error event
// and returns the failure; the caller owns retry.
func (d *Device) Connect(ctx context.Context) error {
	logging.Info("Connecting to receiver",
		zap.String("device_id", d.ID),
		zap.String("remote_addr", d.Addr()),
	)

	if err := d.conn.Connect(ctx); err != nil {
		d.emit(Event{Kind: EventError, DeviceID: d.ID, Message: err.Error()})
		return err
	}

	d.emit(Event{Kind: EventConnected, DeviceID: d.ID})

	// Initial query runs off the caller's goroutine; its answers arrive
	// through the listener like any other update.
	go d.Refresh()

	return nil
}

// Disconnect closes the control connection. Idempotent.
func (d *Device) Disconnect() {
	logging.Info("Disconnecting from receiver", zap.String("device_id", d.ID))
	d.conn.Disconnect()
}

// onDisconnect is the connection's teardown hook. It marks the device
// unavailable and forwards the drop upward.
func (d *Device) onDisconnect(err error) {
	d.mu.Lock()
	d.state.State = StateUnavailable
	d.mu.Unlock()

	ev := Event{Kind: EventDisconnected, DeviceID: d.ID}
	if err != nil {
		ev.Message = err.Error()
	}
	d.emit(ev)
}

// Refresh queries the main state attributes. Each query is paced by the
// refresh delay so the receiver does not drop back-to-back commands.
func (d *Device) Refresh() {
	if !d.conn.Connected() {
		return
	}

	queries := []string{
		command.Power,
		command.Volume,
		command.Mute,
		command.Input,
		command.ListeningMode,
	}
	for i, code := range queries {
		if i > 0 {
			time.Sleep(d.refreshDelay)
		}
		if !d.conn.Send(code, command.QueryValue) {
			return
		}
	}
}

// emit delivers an event without ever blocking the caller: the listener
// loop must keep draining the socket even if no one is consuming events.
func (d *Device) emit(ev Event) {
	select {
	case d.events <- ev:
	default:
		logging.Warn("Event dropped, subscriber too slow",
			zap.String("device_id", d.ID),
			zap.String("kind", ev.Kind.String()),
		)
	}
}

// update applies a state mutation and emits the change set.
func (d *Device) update(changes map[Attribute]any, apply func(*Snapshot)) {
	d.mu.Lock()
	apply(&d.state)
	d.mu.Unlock()
	d.emit(Event{Kind: EventUpdate, DeviceID: d.ID, Changes: changes})
}

// ---------------------------------------------------------------------
// Inbound update handlers
// ---------------------------------------------------------------------

// onPower handles PWR updates. Values other than 00/01 are query-echo
// artifacts and are ignored without a state change.
func (d *Device) onPower(code, value string) {
	var next PowerState
	switch value {
	case command.ValueOff:
		next = StateOff
	case command.ValueOn:
		next = StateOn
	default:
		logging.Debug("Unknown power value",
			zap.String("device_id", d.ID), zap.String("value", value))
		return
	}

	d.update(map[Attribute]any{AttrState: next}, func(s *Snapshot) {
		s.State = next
	})
}

// onVolume handles MVL updates. UP/DOWN tokens are echoes of relative
// commands, not absolute state, and are skipped.
func (d *Device) onVolume(code, value string) {
	switch strings.ToUpper(value) {
	case "UP", "DOWN", "UP1", "DOWN1":
		return
	}

	vol, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		logging.Warn("Invalid volume value",
			zap.String("device_id", d.ID), zap.String("value", value))
		return
	}

	d.update(map[Attribute]any{AttrVolume: int(vol)}, func(s *Snapshot) {
		s.Volume = int(vol)
	})
}

func (d *Device) onMute(code, value string) {
	var muted bool
	switch value {
	case command.ValueOff:
		muted = false
	case command.ValueOn:
		muted = true
	default:
		logging.Debug("Unknown mute value",
			zap.String("device_id", d.ID), zap.String("value", value))
		return
	}

	d.update(map[Attribute]any{AttrMuted: muted}, func(s *Snapshot) {
		s.Muted = muted
	})
}

// onInput handles SLI updates. Unknown codes still produce a usable
// label via the registry fallback.
func (d *Device) onInput(code, value string) {
	name := command.SourceName(strings.ToUpper(value))
	d.update(map[Attribute]any{AttrSource: name}, func(s *Snapshot) {
		s.Source = name
	})
}

func (d *Device) onListeningMode(code, value string) {
	name := command.ListeningModeName(strings.ToUpper(value))
	d.update(map[Attribute]any{AttrSoundMode: name}, func(s *Snapshot) {
		s.SoundMode = name
	})
}

// Media metadata is stored verbatim; titles are free text.

func (d *Device) onTitle(code, value string) {
	d.update(map[Attribute]any{AttrTitle: value}, func(s *Snapshot) {
		s.Title = value
	})
}

func (d *Device) onArtist(code, value string) {
	d.update(map[Attribute]any{AttrArtist: value}, func(s *Snapshot) {
		s.Artist = value
	})
}

func (d *Device) onAlbum(code, value string) {
	d.update(map[Attribute]any{AttrAlbum: value}, func(s *Snapshot) {
		s.Album = value
	})
}

// onTime handles NTM updates in "mm:ss/mm:ss" form. Malformed input
// leaves the prior position and duration unchanged.
func (d *Device) onTime(code, value string) {
	position, duration, ok := parseTimeInfo(value)
	if !ok {
		logging.Debug("Unparseable time info",
			zap.String("device_id", d.ID), zap.String("value", value))
		return
	}

	d.update(map[Attribute]any{AttrPosition: position, AttrDuration: duration}, func(s *Snapshot) {
		s.Position = position
		s.Duration = duration
	})
}

// onPlayStatus handles NST updates: first character is the play status,
// the repeat and shuffle flags after it are not modeled.
func (d *Device) onPlayStatus(code, value string) {
	if len(value) == 0 {
		return
	}

	var next PowerState
	switch value[0] {
	case 'P':
		next = StatePlaying
	case 'p':
		next = StatePaused
	case 'S':
		next = StateOn // stopped but powered
	default:
		return
	}

	d.update(map[Attribute]any{AttrState: next}, func(s *Snapshot) {
		s.State = next
	})
}

// onGeneric logs recognized codes that carry no modeled state.
func (d *Device) onGeneric(code, value string) {
	logging.Debug("Unmodeled update",
		zap.String("device_id", d.ID),
		zap.String("code", code),
		zap.String("value", value),
	)
}

// parseTimeInfo parses "mm:ss/mm:ss" into position and duration seconds.
func parseTimeInfo(value string) (position, duration int, ok bool) {
	current, total, found := strings.Cut(value, "/")
	if !found {
		return 0, 0, false
	}

	position, ok = parseClock(current)
	if !ok {
		return 0, 0, false
	}
	duration, ok = parseClock(total)
	if !ok {
		return 0, 0, false
	}
	return position, duration, true
}

func parseClock(clock string) (int, bool) {
	m, s, found := strings.Cut(clock, ":")
	if !found {
		return 0, false
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return minutes*60 + seconds, true
}

// ---------------------------------------------------------------------
// Outbound controls
// ---------------------------------------------------------------------

// PowerOn turns the receiver on.
func (d *Device) PowerOn() bool { return d.conn.Send(command.Power, "01") }

// PowerOff turns the receiver off (standby).
func (d *Device) PowerOff() bool { return d.conn.Send(command.Power, "00") }

// PowerToggle flips the power state based on the last reported value.
func (d *Device) PowerToggle() bool {
	if d.Snapshot().State == StateOff {
		return d.PowerOn()
	}
	return d.PowerOff()
}

// SetVolume sets an absolute volume. Out-of-range values are clamped to
// 0..VolumeMax before encoding, never sent raw.
func (d *Device) SetVolume(volume int) bool {
	if volume < 0 {
		volume = 0
	}
	if volume > VolumeMax {
		volume = VolumeMax
	}
	return d.conn.Send(command.Volume, fmt.Sprintf("%02X", volume))
}

// VolumeUp steps the volume up one unit.
func (d *Device) VolumeUp() bool { return d.conn.Send(command.Volume, "UP") }

// VolumeDown steps the volume down one unit.
func (d *Device) VolumeDown() bool { return d.conn.Send(command.Volume, "DOWN") }

// Mute sets the mute state.
func (d *Device) Mute(mute bool) bool {
	if mute {
		return d.conn.Send(command.Mute, "01")
	}
	return d.conn.Send(command.Mute, "00")
}

// MuteToggle flips the mute state.
func (d *Device) MuteToggle() bool { return d.conn.Send(command.Mute, "TG") }

// SelectSource switches to a named input. Unknown names are logged and
// nothing is sent; no partial command ever reaches the device.
func (d *Device) SelectSource(name string) bool {
	code, ok := command.SourceCode(name)
	if !ok {
		logging.Warn("Unknown source",
			zap.String("device_id", d.ID), zap.String("source", name))
		return false
	}
	return d.conn.Send(command.Input, code)
}

// SelectSoundMode switches to a named listening mode, with the same
// lookup-or-drop behavior as SelectSource.
func (d *Device) SelectSoundMode(name string) bool {
	code, ok := command.ListeningModeCode(name)
	if !ok {
		logging.Warn("Unknown sound mode",
			zap.String("device_id", d.ID), zap.String("mode", name))
		return false
	}
	return d.conn.Send(command.ListeningMode, code)
}

// Transport controls for network/USB sources.

func (d *Device) Play() bool     { return d.conn.Send(command.NetControl, "PLAY") }
func (d *Device) Pause() bool    { return d.conn.Send(command.NetControl, "PAUSE") }
func (d *Device) Stop() bool     { return d.conn.Send(command.NetControl, "STOP") }
func (d *Device) Next() bool     { return d.conn.Send(command.NetControl, "TRUP") }
func (d *Device) Previous() bool { return d.conn.Send(command.NetControl, "TRDN") }

// Menu navigation through the on-screen display.

func (d *Device) MenuUp() bool    { return d.conn.Send(command.OSDMenu, "UP") }
func (d *Device) MenuDown() bool  { return d.conn.Send(command.OSDMenu, "DOWN") }
func (d *Device) MenuLeft() bool  { return d.conn.Send(command.OSDMenu, "LEFT") }
func (d *Device) MenuRight() bool { return d.conn.Send(command.OSDMenu, "RIGHT") }
func (d *Device) MenuEnter() bool { return d.conn.Send(command.OSDMenu, "ENTER") }
func (d *Device) MenuBack() bool  { return d.conn.Send(command.OSDMenu, "EXIT") }
func (d *Device) MenuHome() bool  { return d.conn.Send(command.OSDMenu, "HOME") }
func (d *Device) ShowMenu() bool  { return d.conn.Send(command.OSDMenu, "MENU") }

// QueryAudioInfo asks for the current audio format and processing path.
func (d *Device) QueryAudioInfo() bool { return d.conn.Send(command.AudioInfo, command.QueryValue) }

// QueryVideoInfo asks for the current video signal path.
func (d *Device) QueryVideoInfo() bool { return d.conn.Send(command.VideoInfo, command.QueryValue) }

// Zone 2 passthrough controls.

func (d *Device) Zone2Power(on bool) bool {
	if on {
		return d.conn.Send(command.Zone2Power, "01")
	}
	return d.conn.Send(command.Zone2Power, "00")
}

func (d *Device) Zone2VolumeUp() bool   { return d.conn.Send(command.Zone2Vol, "UP") }
func (d *Device) Zone2VolumeDown() bool { return d.conn.Send(command.Zone2Vol, "DOWN") }
func (d *Device) Zone2MuteToggle() bool { return d.conn.Send(command.Zone2Mute, "TG") }

// SimpleCommand executes a named macro from the command registry.
// Unknown names are rejected locally.
func (d *Device) SimpleCommand(name string) bool {
	cmd, ok := command.Simple(name)
	if !ok {
		logging.Warn("Unknown simple command",
			zap.String("device_id", d.ID), zap.String("name", name))
		return false
	}
	return d.conn.Send(cmd.Code, cmd.Value)
}

// SendRaw sends an arbitrary (code, value) pair. The code must be the
// 3-character wire form; anything else is rejected locally rather than
// sent as garbage.
func (d *Device) SendRaw(code, value string) bool {
	if len(code) != 3 {
		logging.Warn("Rejecting malformed raw command",
			zap.String("device_id", d.ID), zap.String("code", code))
		return false
	}
	return d.conn.Send(strings.ToUpper(code), value)
}
