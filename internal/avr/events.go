package avr

// EventKind discriminates the closed set of device lifecycle and state
// events. The surface is deliberately small so consumers can match it
// exhaustively.
type EventKind int

const (
	// EventConnected fires after the control connection is established.
	EventConnected EventKind = iota

	// EventDisconnected fires when the connection ends, deliberately or
	// not. Message carries the failure for an unexpected drop.
	EventDisconnected

	// EventError fires for failures that are not connection drops,
	// such as a refused connect attempt. Message carries the cause.
	EventError

	// EventUpdate fires on every recognized state change. Changes holds
	// the changed attributes and their new values.
	EventUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventError:
		return "error"
	case EventUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// Event is one notification from a Device. DeviceID is always set;
// Message and Changes are populated per kind.
type Event struct {
	Kind     EventKind
	DeviceID string
	Message  string
	Changes  map[Attribute]any
}
