package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func serviceEntry(instance, host string, port int, v4, v6 []net.IP, text []string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.AddrIPv4 = v4
	e.AddrIPv6 = v6
	e.Text = text
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name:     "IPv4 bridge",
			entry:    serviceEntry("carpi", "carpi.local.", 8787, []net.IP{net.ParseIP("192.168.4.16")}, nil, []string{"version=dev"}),
			wantIP:   "192.168.4.16",
			wantPort: 8787,
		},
		{
			name: "prefers IPv4 over IPv6",
			entry: serviceEntry("carpi", "carpi.local.", 8787,
				[]net.IP{net.ParseIP("10.0.0.5")}, []net.IP{net.ParseIP("fe80::1")}, nil),
			wantIP:   "10.0.0.5",
			wantPort: 8787,
		},
		{
			name:     "IPv6 fallback",
			entry:    serviceEntry("carpi", "carpi.local.", 9000, nil, []net.IP{net.ParseIP("fe80::1")}, nil),
			wantIP:   "fe80::1",
			wantPort: 9000,
		},
		{
			name:    "no address",
			entry:   serviceEntry("carpi", "carpi.local.", 8787, nil, nil, nil),
			wantNil: true,
		},
		{
			name:    "no port",
			entry:   serviceEntry("carpi", "carpi.local.", 0, []net.IP{net.ParseIP("10.0.0.5")}, nil, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if b != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", b)
				}
				return
			}
			if b == nil {
				t.Fatal("parseServiceEntry() = nil, want bridge")
			}
			if b.IP != tt.wantIP {
				t.Errorf("IP = %v, want %v", b.IP, tt.wantIP)
			}
			if b.Port != tt.wantPort {
				t.Errorf("Port = %v, want %v", b.Port, tt.wantPort)
			}
			if b.Instance != tt.entry.Instance || b.Host != tt.entry.HostName {
				t.Errorf("Instance/Host = %q/%q", b.Instance, b.Host)
			}
			if time.Since(b.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", b.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := serviceEntry("carpi", "carpi.local.", 8787, []net.IP{net.ParseIP("192.168.4.16")}, nil,
		[]string{"version=v0.3.0", "row=2", "self_id=0x19", "flag", "=orphan"})

	b := parseServiceEntry(entry)
	if b == nil {
		t.Fatal("parseServiceEntry() = nil")
	}

	want := map[string]string{
		"version": "v0.3.0",
		"row":     "2",
		"self_id": "0x19",
		"flag":    "",
	}
	if len(b.Metadata) != len(want) {
		t.Errorf("Metadata = %v, want %v", b.Metadata, want)
	}
	for key, value := range want {
		if got := b.GetMetadata(key); got != value {
			t.Errorf("GetMetadata(%q) = %q, want %q", key, got, value)
		}
	}
}

func TestBridge_Addresses(t *testing.T) {
	tests := []struct {
		name     string
		bridge   *Bridge
		wantAddr string
		wantURL  string
	}{
		{
			name:     "IPv4",
			bridge:   &Bridge{Instance: "carpi", Host: "carpi.local.", IP: "192.168.4.16", Port: 8787},
			wantAddr: "192.168.4.16:8787",
			wantURL:  "http://192.168.4.16:8787",
		},
		{
			name:     "IPv6",
			bridge:   &Bridge{IP: "fe80::1", Port: 9000},
			wantAddr: "[fe80::1]:9000",
			wantURL:  "http://[fe80::1]:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bridge.Addr(); got != tt.wantAddr {
				t.Errorf("Addr() = %v, want %v", got, tt.wantAddr)
			}
			if got := tt.bridge.BaseURL(); got != tt.wantURL {
				t.Errorf("BaseURL() = %v, want %v", got, tt.wantURL)
			}
		})
	}

	b := &Bridge{Instance: "carpi", Host: "carpi.local.", IP: "10.0.0.5", Port: 8787}
	if got, want := b.String(), "sidbridge carpi (carpi.local.) at 10.0.0.5:8787"; got != want {
		t.Errorf("String() = %v, want %v", got, want)
	}
	if (&Bridge{}).GetMetadata("x") != "" {
		t.Error("GetMetadata() with nil map should be empty")
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}
