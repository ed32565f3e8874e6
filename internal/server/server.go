// Package server provides the HTTP server for the Drishti facial analysis system.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/server/api"
	"github.com/ayusman/drishti/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Analyzer  *analysis.Analyzer
}

// Server represents the HTTP server for the Drishti application.
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

	if s.config.Analyzer != nil {
		s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
		s.mux.HandleFunc("/api/statistics", s.handleStatistics)
		s.mux.HandleFunc("/api/reset", s.handleReset)
		s.mux.HandleFunc("/api/crossref", s.handleCrossRef)

		liveHandler := NewLiveHandler(s.config.Analyzer.Registry())
		s.mux.Handle("/api/live", liveHandler)
	}

	// Register profile API handler if Store is configured
	if s.config.Store != nil {
		profileHandler := api.NewProfileHandler(s.config.Store)
		s.mux.Handle("/api/profiles", profileHandler)
		s.mux.Handle("/api/profiles/", profileHandler)
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
