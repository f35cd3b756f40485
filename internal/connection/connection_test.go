package connection

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/muurk/avrctl/internal/protocol"
)

// startReceiver runs a loopback TCP listener that plays the receiver
// side: it accepts one connection and hands it to serve.
func startReceiver(t *testing.T, serve func(conn net.Conn)) (host string, port int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to start loopback listener: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		serve(conn)
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return "127.0.0.1", addr.Port
}

type received struct {
	code  string
	value string
}

func TestEndToEnd(t *testing.T) {
	host, port := startReceiver(t, func(conn net.Conn) {
		conn.Write(protocol.BuildPacket("PWR", "01"))
		conn.Write(protocol.BuildPacket("MVL", "28"))
	})

	events := make(chan received, 4)
	c := New(host, port)
	c.RegisterCallback("PWR", func(code, value string) {
		events <- received{code, value}
	})
	c.RegisterCallback("MVL", func(code, value string) {
		events <- received{code, value}
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()

	want := []received{{"PWR", "01"}, {"MVL", "28"}}
	for i, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Errorf("event %d = %v, want %v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestConnectRefused(t *testing.T) {
	// Grab a port that nothing listens on.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	c := New("127.0.0.1", port)
	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("Connect() to closed port should fail")
	}
	if c.State() != Disconnected {
		t.Errorf("state after failed connect = %v, want Disconnected", c.State())
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	host, port := startReceiver(t, func(conn net.Conn) {
		// Hold the connection open until the client leaves.
		buf := make([]byte, 1)
		conn.Read(buf)
	})

	c := New(host, port)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	c.Disconnect()
	if c.State() != Disconnected {
		t.Errorf("state after disconnect = %v, want Disconnected", c.State())
	}

	// Second call must be a no-op, not an error or a hang.
	c.Disconnect()

	// And on a never-connected instance too.
	New("127.0.0.1", 1).Disconnect()
}

func TestSendFailsFastWhenDisconnected(t *testing.T) {
	c := New("127.0.0.1", protocol.Port)
	if ok := c.Send("PWR", "01"); ok {
		t.Error("Send() on a disconnected connection should report false")
	}
}

func TestCallbackOrderAndPanicIsolation(t *testing.T) {
	host, port := startReceiver(t, func(conn net.Conn) {
		conn.Write(protocol.BuildPacket("PWR", "01"))
		conn.Write(protocol.BuildPacket("PWR", "00"))
	})

	calls := make(chan string, 8)
	c := New(host, port)
	c.RegisterCallback("PWR", func(code, value string) {
		calls <- "first:" + value
		panic("misbehaving listener")
	})
	c.RegisterCallback("PWR", func(code, value string) {
		calls <- "second:" + value
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()

	want := []string{"first:01", "second:01", "first:00", "second:00"}
	for i, w := range want {
		select {
		case got := <-calls:
			if got != w {
				t.Errorf("call %d = %q, want %q", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for call %d; a panic must not stop dispatch", i)
		}
	}
}

func TestDisconnectHandler(t *testing.T) {
	serverConn := make(chan net.Conn, 1)
	host, port := startReceiver(t, func(conn net.Conn) {
		serverConn <- conn
	})

	dropped := make(chan error, 1)
	c := New(host, port)
	c.SetDisconnectHandler(func(err error) {
		dropped <- err
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// Server-side close is a mid-session failure for the client.
	(<-serverConn).Close()

	select {
	case err := <-dropped:
		if err == nil {
			t.Error("handler should receive a non-nil error for a dropped stream")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect handler not invoked")
	}

	if c.State() != Disconnected {
		t.Errorf("state after drop = %v, want Disconnected", c.State())
	}
	if ok := c.Send("PWR", "01"); ok {
		t.Error("Send() after a drop should report false")
	}
}

func TestDeliberateDisconnectReportsClean(t *testing.T) {
	host, port := startReceiver(t, func(conn net.Conn) {
		buf := make([]byte, 1)
		conn.Read(buf)
	})

	dropped := make(chan error, 1)
	c := New(host, port)
	c.SetDisconnectHandler(func(err error) {
		dropped <- err
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	c.Disconnect()

	select {
	case err := <-dropped:
		if err != nil {
			t.Errorf("deliberate disconnect reported error %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect handler not invoked")
	}
}

// A failure on device A must not affect device B's traffic.
func TestConcurrentConnectionsIsolated(t *testing.T) {
	connA := make(chan net.Conn, 1)
	hostA, portA := startReceiver(t, func(conn net.Conn) {
		connA <- conn
	})

	gotB := make(chan received, 4)
	hostB, portB := startReceiver(t, func(conn net.Conn) {
		conn.Write(protocol.BuildPacket("PWR", "01"))
		// Echo volume level after the client queries it.
		if _, err := protocol.ReadMessage(conn); err == nil {
			conn.Write(protocol.BuildPacket("MVL", "28"))
		}
	})

	a := New(hostA, portA)
	b := New(hostB, portB)
	b.RegisterCallback("PWR", func(code, value string) { gotB <- received{code, value} })
	b.RegisterCallback("MVL", func(code, value string) { gotB <- received{code, value} })

	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("A Connect() error = %v", err)
	}
	defer a.Disconnect()
	if err := b.Connect(context.Background()); err != nil {
		t.Fatalf("B Connect() error = %v", err)
	}
	defer b.Disconnect()

	// Simulate device A dropping.
	(<-connA).Close()

	// B keeps working.
	select {
	case got := <-gotB:
		if (got != received{"PWR", "01"}) {
			t.Errorf("B first event = %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("B did not receive after A dropped")
	}

	if ok := b.Send("MVL", "QSTN"); !ok {
		t.Fatal("B Send() failed after A dropped")
	}
	select {
	case got := <-gotB:
		if (got != received{"MVL", "28"}) {
			t.Errorf("B second event = %v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("B did not receive reply after A dropped")
	}
}

func TestConnectTwiceFails(t *testing.T) {
	host, port := startReceiver(t, func(conn net.Conn) {
		buf := make([]byte, 1)
		conn.Read(buf)
	})

	c := New(host, port)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Disconnect()

	if err := c.Connect(context.Background()); err == nil {
		t.Error("second Connect() while connected should fail")
	}
}
