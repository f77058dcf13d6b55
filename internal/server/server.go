package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/display"
	"github.com/muurk/sidbridge/internal/logging"
)

// DefaultBroadcastInterval is how often connected monitors get a fresh
// status when nothing else changed, so counters and timers keep moving
const DefaultBroadcastInterval = 500 * time.Millisecond

// Config holds the monitor server configuration
type Config struct {
	Listen            string // host:port, ":0" picks a free port
	MDNS              bool   // Advertise the monitor over mDNS
	Instance          string // mDNS instance name (default: hostname)
	TXT               []string
	BroadcastInterval time.Duration
}

// Controller is the part of the bridge the monitor API drives
type Controller interface {
	Status() bridge.Status
	SendUserMessage(text string, duration time.Duration) bool
	CancelUserMessage()
}

// Server is the HTTP and WebSocket monitor for a running bridge
type Server struct {
	config *Config
	ctrl   Controller
	hub    *Hub

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	mdns     *zeroconf.Server
	stopHub  context.CancelFunc
	wg       sync.WaitGroup
}

var _ display.Observer = (*Server)(nil)

// New creates a monitor server for ctrl
func New(config *Config, ctrl Controller) *Server {
	if config.BroadcastInterval <= 0 {
		config.BroadcastInterval = DefaultBroadcastInterval
	}
	s := &Server{
		config: config,
		ctrl:   ctrl,
		hub:    NewHub(),
	}
	s.http = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// DisplayChanged implements display.Observer. Connected monitors are sent
// the new status.
func (s *Server) DisplayChanged(display.Snapshot) {
	s.hub.Notify()
}

// Start listens and serves until ctx is cancelled, then shuts down
// gracefully
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("Monitor server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("mdns", s.config.MDNS),
	)

	if s.config.MDNS {
		port := listener.Addr().(*net.TCPAddr).Port
		mdns, err := Advertise(s.config.Instance, port, s.config.TXT)
		if err != nil {
			// The API still works by address
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.mu.Lock()
			s.mdns = mdns
			s.mu.Unlock()
		}
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	s.mu.Lock()
	s.stopHub = stopHub
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hub.Run(hubCtx, s.config.BroadcastInterval, s.ctrl.Status)
	}()

	errChan := make(chan error, 1)
	go func() {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping monitor server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("monitor server failed: %w", err)
		}
		return nil
	}
}

// Addr returns the listening address once Start has been called
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down monitor server...")

	s.mu.Lock()
	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}
	if s.stopHub != nil {
		s.stopHub()
	}
	s.mu.Unlock()

	err := s.http.Shutdown(ctx)

	// Hijacked WebSocket connections are not tracked by http.Server
	s.hub.CloseAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All monitor connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()

	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to shut down monitor server: %w", err)
	}
	return nil
}

// GetActiveConnections returns the number of connected WebSocket monitors
func (s *Server) GetActiveConnections() int {
	return s.hub.Len()
}
