package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

// Registers a real AirPlay service and scans for it repeatedly with a
// short deadline, so entry delivery lands around scan completion. Run
// with -race this exercises the collector handoff in ScanAirPlay.
func TestScanAirPlayWithRegisteredService(t *testing.T) {
	if testing.Short() {
		t.Skip("live mDNS test")
	}

	server, err := zeroconf.Register("AABBCCDDEEFF@Living Room", AirPlayService, ServiceDomain,
		7000, []string{"am=TX-NR696", "tp=UDP"}, nil)
	if err != nil {
		t.Skipf("multicast unavailable: %v", err)
	}
	defer server.Shutdown()

	scanner := NewScanner()
	scanner.Timeout = 500 * time.Millisecond

	found := false
	for i := 0; i < 5; i++ {
		receivers, err := scanner.ScanAirPlay(context.Background())
		if err != nil {
			t.Fatalf("scan %d: %v", i, err)
		}

		seen := map[string]bool{}
		for _, r := range receivers {
			if seen[r.Host+r.Identifier] {
				t.Errorf("scan %d returned a duplicate entry for %s", i, r.Host)
			}
			seen[r.Host+r.Identifier] = true

			if r.Model != "TX-NR696" {
				continue
			}
			found = true
			if r.Identifier != "AABBCCDDEEFF" {
				t.Errorf("identifier = %q, want AABBCCDDEEFF", r.Identifier)
			}
			if r.Port != 60128 {
				t.Errorf("port = %d, want the eISCP control port", r.Port)
			}
		}
	}

	// Multicast loopback is not guaranteed in every environment; the
	// scans above still exercise collection and shutdown either way.
	if !found {
		t.Log("registered service never observed; multicast loopback likely filtered")
	}
}
