// Package server provides the HTTP and WebSocket surface of the LIA
// sign recognition engine.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/liaweb/lia-engine/internal/capture"
	"github.com/liaweb/lia-engine/internal/inference"
	"github.com/liaweb/lia-engine/internal/server/api"
	"github.com/liaweb/lia-engine/internal/session"
	"github.com/liaweb/lia-engine/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Camera    capture.Camera
	Engine    *inference.Engine
	Session   *session.Session
}

// Server represents the HTTP server for the LIA engine.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
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
		signHandler := api.NewSignHandler(s.config.Store)
		samplesHandler := api.NewSamplesHandler(s.config.Store)

		// Route between sign and samples handlers: /api/signs/{id}/samples
		// goes to the samples handler, everything else to signs.
		signRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/samples") {
				samplesHandler.ServeHTTP(w, r)
				return
			}
			signHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/signs", signRouter)
		s.mux.Handle("/api/signs/", signRouter)

		s.mux.Handle("/api/attempts", api.NewAttemptsHandler(s.config.Store))
		s.mux.Handle("/api/attempts/", api.NewAttemptsHandler(s.config.Store))
	}

	if s.config.Session != nil {
		s.mux.Handle("/api/practice", api.NewPracticeHandler(s.config.Session))
		s.mux.Handle("/api/events", NewEventsHandler(s.config.Session))
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera))
	}

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

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	if s.config.Engine != nil {
		mode := "unloaded"
		if s.config.Engine.Ready() {
			mode = "ready"
			if s.config.Engine.Degraded() {
				mode = "degraded"
			}
		}
		response["model"] = mode
		if meta := s.config.Engine.Metadata(); meta != nil {
			response["modelVersion"] = meta.ModelVersion
			response["classes"] = len(meta.Classes)
		}
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
