//go:build linux

package canbus

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

func init() {
	Register("socketcan", OpenSocketCAN)
}

// SocketCAN is a raw CAN socket bound to one network interface (can0, vcan0)
type SocketCAN struct {
	mu     sync.Mutex
	fd     int
	iface  string
	closed bool
}

// OpenSocketCAN opens a non-blocking raw CAN socket on iface
func OpenSocketCAN(iface string) (Bus, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %s: %w", iface, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("failed to create CAN socket: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: ifi.Index}); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind CAN socket to %s: %w", iface, err)
	}

	logging.Info("SocketCAN bus opened",
		zap.String("interface", iface),
		zap.Int("ifindex", ifi.Index),
	)

	return &SocketCAN{fd: fd, iface: iface}, nil
}

// Send writes one frame. A full transmit queue is reported as an error.
func (s *SocketCAN) Send(f protocol.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	n, err := unix.Write(s.fd, marshalFrame(f))
	if err != nil {
		return fmt.Errorf("failed to write frame to %s: %w", s.iface, err)
	}
	if n != canFrameSize {
		return fmt.Errorf("short write to %s: %d bytes", s.iface, n)
	}
	return nil
}

// Receive reads one pending frame, if any
func (s *SocketCAN) Receive() (protocol.Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return protocol.Frame{}, false, ErrClosed
	}

	raw := make([]byte, canFrameSize)
	n, err := unix.Read(s.fd, raw)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return protocol.Frame{}, false, nil
		}
		return protocol.Frame{}, false, fmt.Errorf("failed to read frame from %s: %w", s.iface, err)
	}
	return unmarshalFrame(raw[:n])
}

// Close closes the socket
func (s *SocketCAN) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := unix.Close(s.fd); err != nil {
		return fmt.Errorf("failed to close CAN socket: %w", err)
	}
	return nil
}
