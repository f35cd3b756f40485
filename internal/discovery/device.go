package discovery

import (
	"fmt"
	"time"
)

// Receiver represents a discovered AV receiver on the network
type Receiver struct {
	// Host is the IPv4 address the reply came from (e.g., "192.168.1.50")
	Host string

	// Port is the eISCP control port, taken from the ECN reply when the
	// receiver advertises one, otherwise the well-known 60128
	Port int

	// Model is the receiver model name (e.g., "TX-NR696")
	Model string

	// Identifier is the unique device identifier from the ECN reply
	// (typically the last 12 digits of the MAC). Empty if not advertised.
	Identifier string

	// DiscoveredAt is when the reply was received
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the receiver
func (r *Receiver) String() string {
	return fmt.Sprintf("%s at %s:%d", r.Model, r.Host, r.Port)
}

// equal reports structural equality on the identifying fields, used for
// de-duplicating repeated broadcast replies within one scan.
func (r *Receiver) equal(o *Receiver) bool {
	return r.Host == o.Host && r.Port == o.Port && r.Model == o.Model && r.Identifier == o.Identifier
}
