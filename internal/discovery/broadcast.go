package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/avrctl/internal/logging"
	"github.com/muurk/avrctl/internal/protocol"
)

const (
	// DefaultScanTimeout is the default timeout for receiver discovery
	DefaultScanTimeout = 5 * time.Second

	// BroadcastAddr is the default discovery broadcast target
	BroadcastAddr = "255.255.255.255:60128"
)

// Scanner performs one-shot eISCP discovery scans over UDP broadcast.
type Scanner struct {
	// Timeout is the maximum time to collect replies
	Timeout time.Duration

	// Addr is the broadcast target. Overridable for tests and for
	// directed-broadcast setups; defaults to BroadcastAddr.
	Addr string
}

// NewScanner creates a scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		Addr:    BroadcastAddr,
	}
}

// Scan broadcasts one ECN capability query and collects replies until
// the timeout elapses. Returns the (possibly empty) de-duplicated list.
// A socket-level error during collection ends the scan early and
// returns whatever was collected so far.
func (s *Scanner) Scan() ([]*Receiver, error) {
	return s.ScanWithContext(context.Background())
}

// ScanWithContext scans with a custom context; the scan ends at the
// earlier of the timeout or context cancellation.
func (s *Scanner) ScanWithContext(ctx context.Context) ([]*Receiver, error) {
	target, err := net.ResolveUDPAddr("udp4", s.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid broadcast address %q: %w", s.Addr, err)
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok && deadline.Before(time.Now().Add(s.Timeout)) {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(s.Timeout))
	}

	// Cancellation unblocks the pending read via the socket close.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	packet := protocol.BuildDiscoveryPacket()
	if _, err := conn.WriteTo(packet, target); err != nil {
		return nil, fmt.Errorf("failed to send discovery broadcast: %w", err)
	}
	logging.Debug("Discovery broadcast sent", zap.String("target", s.Addr))

	receivers := make([]*Receiver, 0)
	buf := make([]byte, 1024)

	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			// Deadline expiry is the normal end of a scan. Any other
			// socket error also ends collection; partial results are
			// still useful, so neither is surfaced as a failure.
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				logging.Debug("Discovery read ended early", zap.Error(err))
			}
			return receivers, nil
		}

		r := parseReply(buf[:n], addr)
		if r == nil {
			continue
		}

		if containsReceiver(receivers, r) {
			continue
		}
		receivers = append(receivers, r)
		logging.Info("Discovered receiver",
			zap.String("model", r.Model),
			zap.String("host", r.Host),
			zap.Int("port", r.Port),
		)
	}
}

// parseReply extracts a Receiver from one discovery datagram. Returns
// nil for datagrams that are not ECN replies.
func parseReply(data []byte, addr net.Addr) *Receiver {
	if len(data) <= protocol.HeaderSize || !bytes.HasPrefix(data, protocol.Magic[:]) {
		return nil
	}

	// Decode the trailing payload, ignoring undecodable bytes.
	payload := strings.ToValidUTF8(string(data[protocol.HeaderSize:]), "")
	if !strings.Contains(payload, "ECN") {
		return nil
	}

	udp, ok := addr.(*net.UDPAddr)
	if !ok {
		return nil
	}

	// Reply payload: "!1ECN<model>/<port>/<region>/<identifier>"
	parts := strings.Split(payload, "/")
	model := strings.TrimSpace(strings.ReplaceAll(parts[0], "!1ECN", ""))

	port := protocol.Port
	if len(parts) > 1 {
		if p, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && p > 0 {
			port = p
		}
	}

	identifier := ""
	if len(parts) > 3 {
		identifier = strings.TrimRight(strings.TrimSpace(parts[3]), "\x19\x1a\r\n\x00")
	}

	return &Receiver{
		Host:         udp.IP.String(),
		Port:         port,
		Model:        model,
		Identifier:   identifier,
		DiscoveredAt: time.Now(),
	}
}

func containsReceiver(list []*Receiver, r *Receiver) bool {
	for _, existing := range list {
		if existing.equal(r) {
			return true
		}
	}
	return false
}

// Discover is a convenience function to scan with a custom timeout
func Discover(timeout time.Duration) ([]*Receiver, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.Scan()
}

// DiscoverWithContext scans until the context is done or the default
// timeout passes, whichever comes first
func DiscoverWithContext(ctx context.Context) ([]*Receiver, error) {
	return NewScanner().ScanWithContext(ctx)
}
