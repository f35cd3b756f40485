// Package discovery finds AV receivers on the local network.
//
// The primary mechanism is the eISCP discovery variant: one UDP
// broadcast of an ECN capability query to port 60128, then a timed
// collection of replies. Each reply names the receiver's model, control
// port, and identifier. Discovery is one-shot and independent of any
// control connection.
//
//	receivers, err := discovery.Discover(5 * time.Second)
//
// Replies are de-duplicated within one scan, and a socket error ends
// collection early with whatever was found so far rather than failing
// the scan.
//
// As a fallback for networks that filter broadcast traffic, ScanAirPlay
// browses mDNS for AirPlay-capable receivers and maps them onto the
// well-known control port.
package discovery
