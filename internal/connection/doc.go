// Package connection manages the persistent eISCP TCP session to one
// receiver.
//
// Each Connection owns exactly one socket and one background listener
// goroutine. The listener decodes frames with the protocol package and
// routes each (code, value) pair to the callbacks registered for that
// code. One receiver misbehaving never affects another: failure domains
// are isolated per Connection, and TCP's ordered delivery keeps the
// state machine down to Disconnected/Connecting/Connected with no
// sequence numbers or acks.
//
// # Lifecycle
//
//	conn := connection.New("192.168.1.50", protocol.Port)
//	conn.RegisterCallback("PWR", onPower)
//	conn.SetDisconnectHandler(onDrop)
//
//	if err := conn.Connect(ctx); err != nil {
//	    // receiver unreachable; retry policy belongs to the caller
//	}
//	conn.Send("MVL", "QSTN")
//	conn.Disconnect() // idempotent
//
// # Failure Handling
//
// Read and write failures flip the connection to Disconnected and fire
// the disconnect handler; they never panic and never escape the
// listener goroutine. Callback panics are recovered per invocation so
// one faulty subscriber cannot stall the receive loop. Connect does not
// retry on its own - a periodic poller above this layer reconnects.
//
// # Ordering
//
// Within one Connection, frames are dispatched strictly in arrival
// order and all callbacks for a frame complete before the next frame is
// read. No ordering holds across Connections.
package connection
