// Package server exposes a running bridge to monitors over HTTP and
// WebSocket.
//
// # Endpoints
//
//	GET  /api/state    current bridge.Status as JSON
//	POST /api/message  {"text": "...", "duration_ms": 2000} -> {"sent": true}
//	POST /api/cancel   restore the vehicle content (204 No Content)
//	GET  /ws           status stream, one JSON bridge.Status per message
//
// A duration_ms of 0 keeps the message on the display until it is cancelled.
// A "sent" value of false means another device currently owns the row; it is
// not an error.
//
// # Status Stream
//
// Each WebSocket client receives the current status immediately after the
// upgrade, then again whenever the display changes and at least once per
// broadcast interval. Clients that fall behind are disconnected.
//
// # Discovery
//
// When enabled the server advertises itself as a _sidbridge._tcp service
// so monitors on the same network can find it with the discovery package.
//
// # Usage Example
//
//	srv := server.New(&server.Config{Listen: ":8787", MDNS: true}, b)
//	b.Scheduler().SetObserver(srv)
//
//	// Start blocks until ctx is cancelled
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Client wraps the same API for the command line and the terminal monitor.
package server
