package server

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/discovery"
	"github.com/muurk/sidbridge/internal/logging"
)

// Advertise registers the monitor as a _sidbridge._tcp service on port.
// An empty instance uses the hostname. Call Shutdown on the result to
// withdraw the announcement.
func Advertise(instance string, port int, txt []string) (*zeroconf.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = "sidbridge"
		}
		instance = host
	}

	srv, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Monitor advertised over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
		zap.Strings("txt", txt),
	)
	return srv, nil
}
