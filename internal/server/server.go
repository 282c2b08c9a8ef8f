// Package server exposes a drawing session as a JSON state endpoint and a
// WebSocket feed that pushes snapshots and accepts draw, toggle and reset
// commands.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/cardsim/internal/deck"
	"github.com/lox/cardsim/internal/session"
)

// Session is the part of the controller the server needs
type Session interface {
	DrawOne() (deck.Card, bool)
	ToggleSimulation() bool
	Reset()
	Snapshot() session.Snapshot
	Subscribe(session.Listener) func()
}

// Server represents the WebSocket server
type Server struct {
	session  Session
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]bool

	unsubscribe func()
}

// NewServer creates a server bound to a session and starts broadcasting its changes
func NewServer(s Session, logger *log.Logger) *Server {
	srv := &Server{
		session: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Any client may read the feed; it serves no pages of its own
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}
	srv.unsubscribe = s.Subscribe(srv.broadcast)
	return srv
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	s.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// Stop detaches from the session and closes all connections
func (s *Server) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.connections = make(map[*Connection]bool)
	s.mu.Unlock()
}

// ConnectionCount returns the number of connected viewers
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, s.logger, s.handleMessage)

	// Queue the initial state before broadcasts can reach the connection
	s.sendSnapshot(conn, s.session.Snapshot())

	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	conn.Start()

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "total", total)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleState returns the current snapshot as JSON
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.Snapshot()); err != nil {
		s.logger.Error("Failed to encode state", "error", err)
	}
}

// handleMessage runs a command sent by a viewer
func (s *Server) handleMessage(conn *Connection, msg *Message) {
	switch msg.Type {
	case MessageTypeDraw:
		if _, ok := s.session.DrawOne(); !ok {
			// Empty deck: nothing changes, so resend the state the caller expects
			s.sendSnapshot(conn, s.session.Snapshot())
		}
	case MessageTypeToggle:
		s.session.ToggleSimulation()
	case MessageTypeReset:
		s.session.Reset()
	default:
		conn.sendError("unknown_type", fmt.Sprintf("unknown message type: %q", msg.Type))
	}
}

// broadcast sends a snapshot to every viewer
func (s *Server) broadcast(snap session.Snapshot) {
	msg, err := NewMessage(MessageTypeSnapshot, snap)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "error", err)
		return
	}

	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.SendVersioned(snap.Version, msg); err != nil {
			s.logger.Debug("Failed to send snapshot", "error", err)
		}
	}
	s.logger.Debug("Broadcasted snapshot", "version", snap.Version, "recipients", len(conns))
}

func (s *Server) sendSnapshot(conn *Connection, snap session.Snapshot) {
	msg, err := NewMessage(MessageTypeSnapshot, snap)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "error", err)
		return
	}
	_ = conn.SendVersioned(snap.Version, msg)
}
