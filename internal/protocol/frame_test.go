package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

func TestBuildPacket(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		value       string
		wantPayload string
	}{
		{
			name:        "power on",
			code:        "PWR",
			value:       "01",
			wantPayload: "!1PWR01\r\n",
		},
		{
			name:        "volume query",
			code:        "MVL",
			value:       "QSTN",
			wantPayload: "!1MVLQSTN\r\n",
		},
		{
			name:        "empty value",
			code:        "OSD",
			value:       "",
			wantPayload: "!1OSD\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packet := BuildPacket(tt.code, tt.value)

			if len(packet) != HeaderSize+len(tt.wantPayload) {
				t.Fatalf("packet length = %d, want %d", len(packet), HeaderSize+len(tt.wantPayload))
			}
			if !bytes.Equal(packet[0:4], Magic[:]) {
				t.Errorf("magic = %v, want ISCP", packet[0:4])
			}
			if got := binary.BigEndian.Uint32(packet[4:8]); got != HeaderSize {
				t.Errorf("header size field = %d, want %d", got, HeaderSize)
			}
			if got := binary.BigEndian.Uint32(packet[8:12]); got != uint32(len(tt.wantPayload)) {
				t.Errorf("payload size field = %d, want %d", got, len(tt.wantPayload))
			}
			if packet[12] != Version {
				t.Errorf("version = %d, want %d", packet[12], Version)
			}
			if packet[13] != 0 || packet[14] != 0 || packet[15] != 0 {
				t.Errorf("reserved bytes = %v, want zeros", packet[13:16])
			}
			if got := string(packet[HeaderSize:]); got != tt.wantPayload {
				t.Errorf("payload = %q, want %q", got, tt.wantPayload)
			}
		})
	}
}

func TestBuildDiscoveryPacket(t *testing.T) {
	packet := BuildDiscoveryPacket()

	wantPayload := "!xECNQSTN\r\n"
	if got := string(packet[HeaderSize:]); got != wantPayload {
		t.Errorf("payload = %q, want %q", got, wantPayload)
	}
	if got := binary.BigEndian.Uint32(packet[8:12]); got != uint32(len(wantPayload)) {
		t.Errorf("payload size field = %d, want %d", got, len(wantPayload))
	}
}

// Round-trip property: decode(encode(code, value)) yields the same pair
// for printable values without CR/LF.
func TestRoundTrip(t *testing.T) {
	pairs := []struct{ code, value string }{
		{"PWR", "01"},
		{"MVL", "28"},
		{"AMT", "00"},
		{"SLI", "QSTN"},
		{"NTI", "Some Track Title"},
		{"NTM", "01:30/04:15"},
		{"LMD", "0C"},
		{"OSD", "ENTER"},
	}

	for _, p := range pairs {
		t.Run(p.code+p.value, func(t *testing.T) {
			msg, err := ReadMessage(bytes.NewReader(BuildPacket(p.code, p.value)))
			if err != nil {
				t.Fatalf("ReadMessage() error = %v", err)
			}
			if msg.Code != p.code || msg.Value != p.value {
				t.Errorf("got (%q, %q), want (%q, %q)", msg.Code, msg.Value, p.code, p.value)
			}
		})
	}
}

func TestReadMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantCode string
		wantVal  string
		wantErr  bool
	}{
		{
			name:     "single frame",
			data:     BuildPacket("PWR", "01"),
			wantCode: "PWR",
			wantVal:  "01",
		},
		{
			name: "bad magic then valid frame",
			data: append(
				[]byte{'J', 'U', 'N', 'K', 0, 0, 0, 16, 0, 0, 0, 9, 1, 0, 0, 0},
				BuildPacket("MVL", "28")...),
			wantCode: "MVL",
			wantVal:  "28",
		},
		{
			name: "empty payload then valid frame",
			data: append(func() []byte {
				p := BuildPacket("PWR", "01")
				empty := make([]byte, HeaderSize)
				copy(empty, p[:HeaderSize])
				binary.BigEndian.PutUint32(empty[8:12], 0)
				return empty
			}(), BuildPacket("AMT", "00")...),
			wantCode: "AMT",
			wantVal:  "00",
		},
		{
			name: "too-short command then valid frame",
			data: func() []byte {
				short := buildPacket(UnitTypeReceiver, "X")
				return append(short, BuildPacket("SLI", "12")...)
			}(),
			wantCode: "SLI",
			wantVal:  "12",
		},
		{
			name:    "stream closed mid-header",
			data:    []byte{'I', 'S', 'C'},
			wantErr: true,
		},
		{
			name: "stream closed mid-payload",
			data: BuildPacket("PWR", "01")[:HeaderSize+3],
			// exact payload bytes are missing
			wantErr: true,
		},
		{
			name: "oversized payload is a desync",
			data: func() []byte {
				p := make([]byte, HeaderSize)
				copy(p, Magic[:])
				binary.BigEndian.PutUint32(p[4:8], HeaderSize)
				binary.BigEndian.PutUint32(p[8:12], MaxPayloadSize+1)
				p[12] = Version
				return p
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ReadMessage(bytes.NewReader(tt.data))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ReadMessage() = %v, want error", msg)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadMessage() error = %v", err)
			}
			if msg.Code != tt.wantCode || msg.Value != tt.wantVal {
				t.Errorf("got (%q, %q), want (%q, %q)", msg.Code, msg.Value, tt.wantCode, tt.wantVal)
			}
		})
	}
}

// Every possible corruption of the magic marker must skip the frame
// without crashing or returning a protocol error.
func TestReadMessageFuzzedMagic(t *testing.T) {
	valid := BuildPacket("PWR", "01")

	for i := 0; i < 4; i++ {
		for _, b := range []byte{0x00, 'X', 0xFF} {
			bad := make([]byte, HeaderSize)
			copy(bad, valid[:HeaderSize])
			if bad[i] == b {
				continue
			}
			bad[i] = b

			msg, err := ReadMessage(bytes.NewReader(append(bad, valid...)))
			if err != nil {
				t.Fatalf("corrupt byte %d=0x%02x: ReadMessage() error = %v", i, b, err)
			}
			if msg.Code != "PWR" || msg.Value != "01" {
				t.Errorf("corrupt byte %d=0x%02x: got (%q, %q), want (PWR, 01)", i, b, msg.Code, msg.Value)
			}
		}
	}
}

// A stream that ends after only dropped frames reports the close, not a
// phantom command.
func TestReadMessageOnlyDroppedFrames(t *testing.T) {
	empty := make([]byte, HeaderSize)
	copy(empty, Magic[:])
	binary.BigEndian.PutUint32(empty[4:8], HeaderSize)
	empty[12] = Version

	_, err := ReadMessage(bytes.NewReader(empty))
	if err == nil {
		t.Fatal("ReadMessage() should fail once the stream is exhausted")
	}
}

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  []byte
		wantCode string
		wantVal  string
		wantOK   bool
	}{
		{
			name:     "standard payload",
			payload:  []byte("!1PWR01\r\n"),
			wantCode: "PWR",
			wantVal:  "01",
			wantOK:   true,
		},
		{
			name:     "missing unit prefix",
			payload:  []byte("MVL28\r\n"),
			wantCode: "MVL",
			wantVal:  "28",
			wantOK:   true,
		},
		{
			name:     "trailing EOF and NUL markers",
			payload:  []byte("!1NLSU0\x1a\x00\r\n"),
			wantCode: "NLS",
			wantVal:  "U0",
			wantOK:   true,
		},
		{
			name:     "bare command without value",
			payload:  []byte("!1PWR\r\n"),
			wantCode: "PWR",
			wantVal:  "",
			wantOK:   true,
		},
		{
			name:    "empty payload",
			payload: []byte{},
			wantOK:  false,
		},
		{
			name:    "too short after stripping",
			payload: []byte("!1AB\r\n"),
			wantOK:  false,
		},
		{
			name:     "non-UTF-8 metadata falls back to byte decoding",
			payload:  append([]byte("!1NTI"), 0xE9, 't', 'é', '\r', '\n'),
			wantCode: "NTI",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := ParsePayload(tt.payload)
			if ok != tt.wantOK {
				t.Fatalf("ParsePayload() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if msg.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", msg.Code, tt.wantCode)
			}
			if tt.wantVal != "" && msg.Value != tt.wantVal {
				t.Errorf("value = %q, want %q", msg.Value, tt.wantVal)
			}
		})
	}
}

// Reading two frames back to back from one stream preserves order.
func TestReadMessageSequential(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(BuildPacket("PWR", "01"))
	stream.Write(BuildPacket("MVL", "28"))

	first, err := ReadMessage(&stream)
	if err != nil {
		t.Fatalf("first ReadMessage() error = %v", err)
	}
	second, err := ReadMessage(&stream)
	if err != nil {
		t.Fatalf("second ReadMessage() error = %v", err)
	}

	if first.Code != "PWR" || second.Code != "MVL" {
		t.Errorf("order = %s, %s; want PWR, MVL", first.Code, second.Code)
	}

	if _, err := ReadMessage(&stream); !errors.Is(err, io.EOF) {
		t.Errorf("exhausted stream error = %v, want io.EOF", err)
	}
}
