package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/avrctl/internal/logging"
	"github.com/muurk/avrctl/internal/protocol"
)

// DefaultConnectTimeout bounds how long Connect waits for the TCP
// handshake before giving up.
const DefaultConnectTimeout = 5 * time.Second

// State is the connection lifecycle state.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Callback receives one decoded inbound command.
type Callback func(code, value string)

// Connection manages exactly one TCP relationship to one receiver.
//
// A single background listener goroutine reads frames while connected;
// inbound frames are dispatched strictly in arrival order, and all
// callbacks for one frame complete before the next frame is read. All
// exported methods are safe to call from any goroutine; mutation of one
// Connection is serialized internally.
type Connection struct {
	host           string
	port           int
	connectTimeout time.Duration

	mu           sync.Mutex
	state        State
	conn         net.Conn
	listenerDone chan struct{}
	callbacks    map[string][]Callback
	onDisconnect func(err error)
}

// New creates a Connection for one receiver address. No I/O happens
// until Connect.
func New(host string, port int) *Connection {
	return &Connection{
		host:           host,
		port:           port,
		connectTimeout: DefaultConnectTimeout,
		callbacks:      make(map[string][]Callback),
	}
}

// SetConnectTimeout overrides the TCP connect timeout. Only effective
// before Connect.
func (c *Connection) SetConnectTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectTimeout = d
}

// RegisterCallback appends a listener for one command code. Multiple
// registrations for the same code are all invoked, in registration
// order, for every matching inbound frame. Register before Connect;
// the registry is treated as read-only while the listener runs.
func (c *Connection) RegisterCallback(code string, fn Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks[code] = append(c.callbacks[code], fn)
}

// SetDisconnectHandler installs a hook invoked once when the listener
// stops. err is nil for a deliberate Disconnect and non-nil when the
// stream failed.
func (c *Connection) SetDisconnectHandler(fn func(err error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDisconnect = fn
}

// State reports the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether the connection is established.
func (c *Connection) Connected() bool {
	return c.State() == Connected
}

// Addr returns the receiver address this connection targets.
func (c *Connection) Addr() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.port))
}

// Connect opens the TCP stream and starts the background listener. On
// failure the state stays Disconnected and the error is returned; there
// is no automatic retry, callers own their retry policy.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return fmt.Errorf("already %s to %s", c.state, c.Addr())
	}
	c.state = Connecting
	timeout := c.connectTimeout
	c.mu.Unlock()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr())
	if err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return fmt.Errorf("failed to connect to %s: %w", c.Addr(), err)
	}

	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.listenerDone = done
	c.state = Connected
	c.mu.Unlock()

	logging.LogConnection(c.Addr(), "connected")
	go c.listen(conn, done)

	return nil
}

// Disconnect stops the listener and closes the socket. Idempotent and
// safe to call from cleanup paths; calling it twice produces no error.
// Closing the socket is what unblocks the listener's pending read, so
// the close happens first and the listener exit is awaited after.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	done := c.listenerDone
	c.conn = nil
	c.listenerDone = nil
	c.state = Disconnected
	c.mu.Unlock()

	if conn == nil {
		return
	}

	_ = conn.Close()
	if done != nil {
		<-done
	}
	logging.LogConnection(c.Addr(), "disconnected")
}

// Send encodes one command and writes it to the socket. It fails fast
// with false when not connected. A write failure flips the connection
// to Disconnected and reports false; the command is not retried.
func (c *Connection) Send(code, value string) bool {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == Connected
	c.mu.Unlock()

	if !connected || conn == nil {
		logging.Debug("Send while not connected",
			zap.String("remote_addr", c.Addr()),
			zap.String("code", code),
		)
		return false
	}

	packet := protocol.BuildPacket(code, value)
	if _, err := conn.Write(packet); err != nil {
		logging.Warn("Send failed",
			zap.String("remote_addr", c.Addr()),
			zap.String("code", code),
			zap.Error(err),
		)
		c.teardown(conn)
		return false
	}

	logging.LogCommand(c.Addr(), "sent", code, value)
	return true
}

// teardown closes the socket after a write failure. The listener's
// pending read then fails and its exit path reports the disconnect.
func (c *Connection) teardown(conn net.Conn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
		c.state = Disconnected
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// listen is the background receive loop: decode one frame, dispatch to
// every registered callback for its code, repeat. It exits on the first
// fatal read error, which includes the socket being closed by
// Disconnect or a write failure.
func (c *Connection) listen(conn net.Conn, done chan struct{}) {
	defer close(done)

	for {
		msg, err := protocol.ReadMessage(conn)
		if err != nil {
			c.listenerExit(conn, err)
			return
		}

		logging.LogCommand(c.Addr(), "received", msg.Code, msg.Value)
		c.dispatch(msg.Code, msg.Value)
	}
}

// dispatch invokes every callback registered for a code. A panicking
// callback is recovered and logged so one faulty listener can neither
// kill the loop nor rob later callbacks of the frame.
func (c *Connection) dispatch(code, value string) {
	c.mu.Lock()
	fns := c.callbacks[code]
	c.mu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Error("Callback panic",
						zap.String("remote_addr", c.Addr()),
						zap.String("code", code),
						zap.Any("panic", r),
					)
				}
			}()
			fn(code, value)
		}()
	}
}

// listenerExit flips state after a fatal read error and notifies the
// disconnect hook. A deliberate Disconnect (or a preceding write
// failure) already detached the socket; in that case the read error is
// just the close signal and is not reported as a failure.
func (c *Connection) listenerExit(conn net.Conn, err error) {
	c.mu.Lock()
	deliberate := c.conn != conn
	if !deliberate {
		c.conn = nil
		c.state = Disconnected
	}
	hook := c.onDisconnect
	c.mu.Unlock()

	if deliberate || errors.Is(err, net.ErrClosed) {
		err = nil
	} else {
		logging.Warn("Listen error",
			zap.String("remote_addr", c.Addr()),
			zap.Error(err),
		)
		_ = conn.Close()
	}

	if hook != nil {
		hook(err)
	}
}
