package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/avrctl/internal/protocol"
)

const (
	// AirPlayService is the mDNS service type network-capable receivers
	// advertise for AirPlay audio
	AirPlayService = "_raop._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// receiverBrands are matched against the AirPlay model string to keep
// only AV receivers in the results.
var receiverBrands = []string{"onkyo", "integra", "pioneer", "tx-", "vsx-"}

// ScanAirPlay browses for AirPlay-capable receivers via mDNS. This is a
// fallback for networks that filter the UDP discovery broadcast: it
// finds the receiver's address but not its eISCP identity, so entries
// are reported with the well-known control port and the advertised
// model string.
func (s *Scanner) ScanAirPlay(ctx context.Context) ([]*Receiver, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	receivers := make([]*Receiver, 0)

	// The browser owns entries and closes it some time after the context
	// ends. Waiting for the collector, not the context, is what makes the
	// final read of receivers safe.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			r := parseAirPlayEntry(entry)
			if r != nil && !containsReceiver(receivers, r) {
				receivers = append(receivers, r)
			}
		}
	}()

	if err := resolver.Browse(ctx, AirPlayService, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for AirPlay services: %w", err)
	}

	<-done
	return receivers, nil
}

// parseAirPlayEntry converts a zeroconf service entry to a Receiver.
// Returns nil for entries that do not look like AV receivers.
func parseAirPlayEntry(entry *zeroconf.ServiceEntry) *Receiver {
	// AirPlay TXT records carry the model in "am=<model>"
	model := ""
	for _, txt := range entry.Text {
		if strings.HasPrefix(txt, "am=") {
			model = strings.TrimPrefix(txt, "am=")
			break
		}
	}
	if !isReceiverModel(model) {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" {
		return nil
	}

	// RAOP instance names are "<mac>@<friendly name>"
	identifier := ""
	if at := strings.Index(entry.Instance, "@"); at > 0 {
		identifier = entry.Instance[:at]
	}

	return &Receiver{
		Host:         ip,
		Port:         protocol.Port,
		Model:        model,
		Identifier:   identifier,
		DiscoveredAt: time.Now(),
	}
}

func isReceiverModel(model string) bool {
	lower := strings.ToLower(model)
	for _, brand := range receiverBrands {
		if strings.Contains(lower, brand) {
			return true
		}
	}
	return false
}
