package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/sidbridge/internal/logging"
	"github.com/muurk/sidbridge/internal/protocol"
)

// MaxMessageDuration bounds duration_ms accepted by POST /api/message
const MaxMessageDuration = time.Hour

// MessageRequest is the body of POST /api/message. A zero duration keeps
// the message until cancelled.
type MessageRequest struct {
	Text       string `json:"text"`
	DurationMS int64  `json:"duration_ms"`
}

// MessageResponse reports whether the message reached the display
type MessageResponse struct {
	Sent bool `json:"sent"`
}

// ErrorResponse is returned with every 4xx and 5xx status
type ErrorResponse struct {
	Error string `json:"error"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Monitors connect from terminals and other hosts on the car network
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler returns the monitor API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/message", s.handleMessage)
	mux.HandleFunc("POST /api/cancel", s.handleCancel)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return logRequests(mux)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMessageRequest(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	duration := time.Duration(req.DurationMS) * time.Millisecond
	sent := s.ctrl.SendUserMessage(req.Text, duration)
	logging.Info("Message requested over API",
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("text", req.Text),
		zap.Duration("duration", duration),
		zap.Bool("sent", sent),
	)
	writeJSON(w, http.StatusOK, MessageResponse{Sent: sent})
}

func decodeMessageRequest(body io.Reader) (MessageRequest, error) {
	var req MessageRequest
	dec := json.NewDecoder(io.LimitReader(body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid message request: %w", err)
	}
	if req.Text == "" {
		return req, errors.New("text must not be empty")
	}
	if len(req.Text) > protocol.MaxMessageLength {
		return req, fmt.Errorf("text longer than %d characters", protocol.MaxMessageLength)
	}
	if req.DurationMS < 0 || req.DurationMS > MaxMessageDuration.Milliseconds() {
		return req, fmt.Errorf("duration_ms must be between 0 and %d", MaxMessageDuration.Milliseconds())
	}
	return req, nil
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.ctrl.CancelUserMessage()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	initial, err := json.Marshal(s.ctrl.Status())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an error status
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	s.hub.serve(conn, r.RemoteAddr, initial)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			// Hijacked connections have no status to record
			logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, http.StatusSwitchingProtocols)
			next.ServeHTTP(w, r)
			return
		}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
