// Package protocol implements the eISCP binary frame codec.
//
// eISCP is the length-prefixed framing Onkyo and Integra receivers use
// for their text command protocol, spoken over TCP for control and UDP
// broadcast for discovery, both on port 60128.
//
// # Frame Format
//
// Every frame is a fixed 16-byte header followed by a text payload:
//
//	[0-3]   "ISCP"      Magic marker
//	[4-7]   16          Header size (big-endian uint32, always 16)
//	[8-11]  N           Payload size (big-endian uint32)
//	[12]    0x01        Protocol version
//	[13-15] 0x000000    Reserved
//	[16+]   payload     "!1" + CODE + VALUE + "\r\n"
//
// The "!1" prefix designates unit type 1, receiver-class devices.
// Discovery broadcasts use the wildcard unit type "x" instead.
//
// # Commands
//
// A command is a 3-character code plus a value string, e.g. "PWR01"
// turns the receiver on and "MVLQSTN" queries the master volume.
//
// # Usage
//
//	packet := protocol.BuildPacket("PWR", "01")
//	conn.Write(packet)
//
//	msg, err := protocol.ReadMessage(conn)
//	if err != nil {
//	    // stream closed or desynced
//	}
//	fmt.Println(msg.Code, msg.Value)
//
// # Malformed Frames
//
// Devices in the field emit the occasional garbage frame. ReadMessage
// skips frames with a bad magic marker and frames whose payload carries
// no usable command, and keeps scanning; only stream failures and
// unrecoverable desyncs surface as errors.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use, though a
// single io.Reader must not be read by two goroutines at once.
package protocol
