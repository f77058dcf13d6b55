package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/sidbridge/internal/bridge"
)

// Client talks to a bridge monitor API
type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
}

// NewClient creates a client for the monitor at addr (host:port or a full
// http:// URL)
func NewClient(addr, userAgent string) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	base, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid monitor address %q: %w", addr, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid monitor address %q: missing host", addr)
	}
	return &Client{
		base:      base,
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
	}, nil
}

// BaseURL returns the monitor base URL
func (c *Client) BaseURL() string {
	return c.base.String()
}

// State fetches the current bridge status
func (c *Client) State(ctx context.Context) (bridge.Status, error) {
	var status bridge.Status
	err := c.do(ctx, http.MethodGet, "/api/state", nil, &status)
	return status, err
}

// Send asks the bridge to show text for duration. It reports whether the
// message reached the display.
func (c *Client) Send(ctx context.Context, text string, duration time.Duration) (bool, error) {
	var resp MessageResponse
	req := MessageRequest{Text: text, DurationMS: duration.Milliseconds()}
	if err := c.do(ctx, http.MethodPost, "/api/message", req, &resp); err != nil {
		return false, err
	}
	return resp.Sent, nil
}

// Cancel restores the vehicle content
func (c *Client) Cancel(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/cancel", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var e ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, e.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Watch connects to the status stream and calls fn for every update until
// ctx is cancelled or the connection drops
func (c *Client) Watch(ctx context.Context, fn func(bridge.Status)) error {
	wsURL := *c.base
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws"

	header := http.Header{}
	if c.userAgent != "" {
		header.Set("User-Agent", c.userAgent)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", wsURL.String(), err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var status bridge.Status
		if err := conn.ReadJSON(&status); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("status stream failed: %w", err)
		}
		fn(status)
	}
}
