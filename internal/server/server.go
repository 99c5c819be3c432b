// Package server provides the HTTP server for the FrameSight video
// analysis service.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/asengupta/framesight/internal/app"
	"github.com/asengupta/framesight/internal/server/api"
	"github.com/asengupta/framesight/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
	Logger    *slog.Logger
}

// Server represents the HTTP server for the FrameSight application.
type Server struct {
	config Config
	logger *slog.Logger
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config: config,
		logger: logger,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Pipeline control endpoints need a configured App
	if s.config.App != nil {
		s.mux.HandleFunc("/api/stats", s.handleStats)
		s.mux.HandleFunc("/api/stats/reset", s.handleStatsReset)
		s.mux.HandleFunc("/api/capabilities", s.handleCapabilities)
		s.mux.HandleFunc("/api/options", s.handleOptions)
		s.mux.HandleFunc("/api/processing", s.handleProcessing)
		s.mux.HandleFunc("/api/camera/start", s.handleCameraStart)
		s.mux.HandleFunc("/api/camera/stop", s.handleCameraStop)
		s.mux.HandleFunc("/api/tracking", s.handleTracking)
		s.mux.HandleFunc("/api/frames/save", s.handleFrameSave)
		s.mux.HandleFunc("/api/videos", s.handleVideoUpload)
		s.mux.HandleFunc("/api/export", s.handleExport)

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/records/live", NewRecordsFeedHandler(s.config.App, s.logger))
	}

	// Register stored frame/record browsing if Store is configured
	if s.config.Store != nil {
		framesHandler := api.NewFramesHandler(s.config.Store)
		s.mux.Handle("/api/frames", framesHandler)
		s.mux.Handle("/api/frames/", framesHandler)
		s.mux.Handle("/api/records", api.NewRecordsHandler(s.config.Store))
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
