package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type advertised by the bridge monitor
	ServiceType = "_sidbridge._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for bridge discovery
	DefaultScanTimeout = 5 * time.Second
)

// ErrNotFound is returned when no bridge answered before the timeout
var ErrNotFound = errors.New("no sidbridge found on the network")

// Scanner handles mDNS bridge discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every bridge that answers before the timeout
func (s *Scanner) Scan(ctx context.Context) ([]*Bridge, error) {
	var (
		mu      sync.Mutex
		bridges []*Bridge
	)
	err := s.browse(ctx, func(b *Bridge) bool {
		mu.Lock()
		bridges = append(bridges, b)
		mu.Unlock()
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return bridges, nil
}

// First returns the first bridge that answers
func (s *Scanner) First(ctx context.Context) (*Bridge, error) {
	var (
		mu    sync.Mutex
		found *Bridge
	)
	err := s.browse(ctx, func(b *Bridge) bool {
		mu.Lock()
		found = b
		mu.Unlock()
		return false
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

// browse calls fn for every parsed entry until fn returns false or the
// timeout elapses. It returns once the entry loop has finished.
func (s *Scanner) browse(ctx context.Context, fn func(*Bridge) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			b := parseServiceEntry(entry)
			if b != nil && !fn(b) {
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
	}
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Bridge.
// Returns nil for entries without a usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Bridge {
	if entry == nil || entry.Port == 0 {
		return nil
	}

	// Prefer IPv4
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string, len(entry.Text))
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	return &Bridge{
		Instance:     entry.Instance,
		Host:         entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// FindFirst is a convenience function returning the first bridge found
// within timeout
func FindFirst(ctx context.Context, timeout time.Duration) (*Bridge, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.First(ctx)
}
