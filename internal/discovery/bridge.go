package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Bridge is a sidbridge monitor found on the network
type Bridge struct {
	// Instance is the advertised instance name (usually the hostname)
	Instance string

	// Host is the mDNS hostname (e.g., "carpi.local.")
	Host string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the monitor HTTP port
	Port int

	// Metadata contains the TXT records: version, row, self_id
	Metadata map[string]string

	// DiscoveredAt is when the bridge was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable description of the bridge
func (b *Bridge) String() string {
	return fmt.Sprintf("sidbridge %s (%s) at %s", b.Instance, b.Host, b.Addr())
}

// Addr returns host:port for the monitor
func (b *Bridge) Addr() string {
	return net.JoinHostPort(b.IP, strconv.Itoa(b.Port))
}

// BaseURL returns the HTTP base URL for the monitor API
func (b *Bridge) BaseURL() string {
	return "http://" + b.Addr()
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Bridge) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
