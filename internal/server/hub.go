package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/bridge"
	"github.com/muurk/sidbridge/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	// Status messages queued per client before it is dropped
	clientQueue = 16
)

// client is one connected WebSocket monitor
type client struct {
	conn       *websocket.Conn
	remoteAddr string
	send       chan []byte
	closeOnce  sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// Hub fans status updates out to every connected monitor
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	notify  chan struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		notify:  make(chan struct{}, 1),
	}
}

// Notify asks the hub to broadcast a fresh status. Calls are coalesced.
func (h *Hub) Notify() {
	select {
	case h.notify <- struct{}{}:
	default:
	}
}

// Len returns the number of connected clients
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run broadcasts status on every notification and at least once per
// interval until ctx is cancelled
func (h *Hub) Run(ctx context.Context, interval time.Duration, status func() bridge.Status) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.notify:
		case <-ticker.C:
		}

		if h.Len() == 0 {
			continue
		}
		data, err := json.Marshal(status())
		if err != nil {
			logging.Error("Failed to encode status", zap.Error(err))
			continue
		}
		h.Broadcast(data)
	}
}

// Broadcast queues data for every client. Clients whose queue is full are
// disconnected.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logging.Warn("Monitor client too slow, disconnecting",
				zap.String("remote_addr", c.remoteAddr),
			)
			delete(h.clients, c)
			c.close()
		}
	}
}

// CloseAll disconnects every client
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logging.LogConnection(c.remoteAddr, "websocket_connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	logging.LogConnection(c.remoteAddr, "websocket_closed")
}

// serve runs one client until either side closes. initial is sent before
// any broadcast.
func (h *Hub) serve(conn *websocket.Conn, remoteAddr string, initial []byte) {
	c := &client{
		conn:       conn,
		remoteAddr: remoteAddr,
		send:       make(chan []byte, clientQueue),
	}
	c.send <- initial
	h.register(c)

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and watches for close and pong frames
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Monitor connection closed with error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump sends queued status messages and keepalive pings
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Debug("Monitor write failed",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
