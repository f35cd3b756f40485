package protocol

import (
	"encoding/binary"
	"fmt"
)

const (
	// Port is the well-known eISCP control and discovery port
	Port = 60128

	// HeaderSize is the fixed eISCP header length in bytes
	HeaderSize = 16

	// Version is the eISCP protocol version carried in every header
	Version = 1

	// MaxPayloadSize is the maximum payload length accepted from a device.
	// Real receivers send short text payloads; anything larger means the
	// stream has desynced and the connection should be torn down.
	MaxPayloadSize = 64 * 1024

	// UnitTypeReceiver designates receiver-class devices in the payload prefix
	UnitTypeReceiver = '1'

	// UnitTypeAny is the wildcard unit type used by discovery broadcasts
	UnitTypeAny = 'x'
)

// Magic is the 4-byte marker that starts every eISCP frame
var Magic = [4]byte{'I', 'S', 'C', 'P'}

// Message is one decoded ISCP command: a 3-character code plus a value
// string. Values are a 2-hex-digit magnitude, a symbolic token such as
// "UP" or "QSTN", or free text for media metadata.
type Message struct {
	Code  string
	Value string
}

// String returns the wire form of the command without framing
func (m *Message) String() string {
	return m.Code + m.Value
}

// BuildPacket constructs a complete eISCP frame for one command.
//
// Frame structure:
//
//	[0-3]   "ISCP"         Magic marker
//	[4-7]   16             Header size (big-endian uint32)
//	[8-11]  len(payload)   Payload size (big-endian uint32)
//	[12]    0x01           Protocol version
//	[13-15] 0x000000       Reserved
//	[16+]   payload        "!1" + code + value + "\r\n"
//
// Always succeeds for well-formed string input.
func BuildPacket(code, value string) []byte {
	return buildPacket(UnitTypeReceiver, code+value)
}

// BuildDiscoveryPacket constructs the UDP broadcast query frame. Discovery
// uses the wildcard unit type with an ECN capability query.
func BuildDiscoveryPacket() []byte {
	return buildPacket(UnitTypeAny, "ECNQSTN")
}

func buildPacket(unitType byte, command string) []byte {
	payload := []byte("!" + string(unitType) + command + "\r\n")

	packet := make([]byte, HeaderSize+len(payload))
	copy(packet[0:4], Magic[:])
	binary.BigEndian.PutUint32(packet[4:8], HeaderSize)
	binary.BigEndian.PutUint32(packet[8:12], uint32(len(payload)))
	packet[12] = Version
	// Bytes 13-15 are reserved and stay zero

	copy(packet[HeaderSize:], payload)
	return packet
}

// header holds the parsed fields of one 16-byte eISCP frame header
type header struct {
	magicOK     bool
	headerSize  uint32
	payloadSize uint32
	version     byte
}

// parseHeader decodes a 16-byte header. It never fails; magicOK reports
// whether the frame starts with the ISCP marker.
func parseHeader(buf []byte) header {
	return header{
		magicOK:     buf[0] == Magic[0] && buf[1] == Magic[1] && buf[2] == Magic[2] && buf[3] == Magic[3],
		headerSize:  binary.BigEndian.Uint32(buf[4:8]),
		payloadSize: binary.BigEndian.Uint32(buf[8:12]),
		version:     buf[12],
	}
}

func (h header) String() string {
	return fmt.Sprintf("header{magic=%v, headerSize=%d, payloadSize=%d, version=%d}",
		h.magicOK, h.headerSize, h.payloadSize, h.version)
}
