package discovery

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/muurk/avrctl/internal/protocol"
)

// ecnReply builds a discovery reply datagram the way receiver firmware
// does: standard framing around an ECN payload.
func ecnReply(payload string) []byte {
	body := []byte(payload)
	out := make([]byte, protocol.HeaderSize+len(body))
	copy(out[0:4], protocol.Magic[:])
	binary.BigEndian.PutUint32(out[4:8], protocol.HeaderSize)
	binary.BigEndian.PutUint32(out[8:12], uint32(len(body)))
	out[12] = protocol.Version
	copy(out[protocol.HeaderSize:], body)
	return out
}

// startFakeReceiver answers every discovery query on a loopback UDP
// socket with the given replies.
func startFakeReceiver(t *testing.T, replies [][]byte) string {
	t.Helper()

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open fake receiver socket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 1024)
		for {
			_, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			for _, reply := range replies {
				conn.WriteTo(reply, addr)
			}
		}
	}()

	return conn.LocalAddr().String()
}

func TestScan(t *testing.T) {
	addr := startFakeReceiver(t, [][]byte{
		ecnReply("!1ECNTX-NR696/60128/DX/0009B0123456\x19\r\n"),
	})

	scanner := NewScanner()
	scanner.Timeout = 500 * time.Millisecond
	scanner.Addr = addr

	receivers, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(receivers) != 1 {
		t.Fatalf("Scan() found %d receivers, want 1", len(receivers))
	}

	r := receivers[0]
	if r.Model != "TX-NR696" {
		t.Errorf("model = %q, want TX-NR696", r.Model)
	}
	if r.Host != "127.0.0.1" {
		t.Errorf("host = %q, want 127.0.0.1", r.Host)
	}
	if r.Port != 60128 {
		t.Errorf("port = %d, want 60128", r.Port)
	}
	if r.Identifier != "0009B0123456" {
		t.Errorf("identifier = %q, want 0009B0123456", r.Identifier)
	}
}

// Two identical replies within one scan produce exactly one entry.
func TestScanDeduplicates(t *testing.T) {
	reply := ecnReply("!1ECNTX-8050/60128/DX/0009B0AABBCC\x19\r\n")
	addr := startFakeReceiver(t, [][]byte{reply, reply})

	scanner := NewScanner()
	scanner.Timeout = 500 * time.Millisecond
	scanner.Addr = addr

	receivers, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(receivers) != 1 {
		t.Errorf("Scan() found %d receivers, want 1 after dedup", len(receivers))
	}
}

// Datagrams that are not ECN replies are ignored without aborting the scan.
func TestScanIgnoresGarbage(t *testing.T) {
	addr := startFakeReceiver(t, [][]byte{
		[]byte("not a frame at all"),
		ecnReply("!1XYZsomething else\r\n"),
		ecnReply("!1ECNTX-NR696/60128/DX/0009B0123456\x19\r\n"),
	})

	scanner := NewScanner()
	scanner.Timeout = 500 * time.Millisecond
	scanner.Addr = addr

	receivers, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(receivers) != 1 {
		t.Fatalf("Scan() found %d receivers, want 1", len(receivers))
	}
}

// A scan with no replies returns an empty list at the timeout, not an error.
func TestScanTimeoutEmpty(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	scanner := NewScanner()
	scanner.Timeout = 300 * time.Millisecond
	scanner.Addr = conn.LocalAddr().String()

	start := time.Now()
	receivers, err := scanner.Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(receivers) != 0 {
		t.Errorf("Scan() found %d receivers, want 0", len(receivers))
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Scan() took %v, should return at its timeout", elapsed)
	}
}

func TestParseReplyPortFallback(t *testing.T) {
	addr := &net.UDPAddr{IP: net.ParseIP("192.168.1.50"), Port: 60128}

	// No port field in the reply: fall back to the well-known port.
	r := parseReply(ecnReply("!1ECNTX-NR696"), addr)
	if r == nil {
		t.Fatal("parseReply() = nil for valid reply")
	}
	if r.Port != protocol.Port {
		t.Errorf("port = %d, want %d", r.Port, protocol.Port)
	}

	// Non-numeric port field: same fallback.
	r = parseReply(ecnReply("!1ECNTX-NR696/garbage/DX"), addr)
	if r == nil || r.Port != protocol.Port {
		t.Errorf("non-numeric port should fall back to %d", protocol.Port)
	}
}

func TestParseAirPlayEntryFiltersNonReceivers(t *testing.T) {
	if isReceiverModel("AppleTV3,2") {
		t.Error("Apple TV should not match receiver brands")
	}
	if !isReceiverModel("TX-NR696") {
		t.Error("TX-NR696 should match receiver brands")
	}
	if !isReceiverModel("Pioneer VSX-933") {
		t.Error("Pioneer VSX should match receiver brands")
	}
}
