// Package server provides the HTTP server for the mudra gesture pipeline.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Pipeline is what the server needs from the running application.
type Pipeline interface {
	Status() app.Event
	SetEnabled(enabled bool)
	Subscribe(fn func(app.Event)) (unsubscribe func())
	Preview() []byte
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Pipeline  Pipeline
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/commands", api.NewCommandsHandler(s.config.Store))
	}

	if s.config.Pipeline != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Pipeline))

		s.events = NewEventsHandler(s.config.Pipeline)
		s.mux.Handle("/api/events", s.events)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Pipeline.Preview))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

// Close stops broadcasting pipeline events.
func (s *Server) Close() {
	if s.events != nil {
		s.events.Close()
	}
}
