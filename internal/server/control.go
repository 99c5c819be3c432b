package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"time"

	"github.com/asengupta/framesight/internal/analysis"
	"github.com/asengupta/framesight/internal/app"
	"github.com/asengupta/framesight/internal/tracking"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// handleStats handles GET /api/stats and returns the rolling metrics
// summary for the analysis pipeline.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.config.App.Analyzer().Metrics().Summary())
}

// handleStatsReset handles POST /api/stats/reset. It clears the
// metrics window and the motion background model.
func (s *Server) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.config.App.Analyzer().Metrics().Reset()
	s.config.App.Analyzer().ResetMotion()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleCapabilities handles GET /api/capabilities and lists the
// detector primitives with their availability.
func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]analysis.Capability{
		"capabilities": s.config.App.Analyzer().Capabilities(),
	})
}

// handleOptions handles GET and PUT /api/options.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.config.App.Options())
	case http.MethodPut, http.MethodPost:
		var opts app.Options
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		s.config.App.SetOptions(opts)
		writeJSON(w, http.StatusOK, s.config.App.Options())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type processingRequest struct {
	Enabled bool `json:"enabled"`
}

type processingResponse struct {
	Enabled bool `json:"enabled"`
}

// handleProcessing handles GET and POST /api/processing. POST toggles
// per-frame analysis on or off.
func (s *Server) handleProcessing(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, processingResponse{Enabled: s.config.App.IsEnabled()})
	case http.MethodPost:
		var req processingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		s.config.App.SetEnabled(req.Enabled)
		writeJSON(w, http.StatusOK, processingResponse{Enabled: req.Enabled})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCameraStart handles POST /api/camera/start.
func (s *Server) handleCameraStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.config.App.StartCamera(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start camera")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// handleCameraStop handles POST /api/camera/stop.
func (s *Server) handleCameraStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.config.App.StopCamera(); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to stop camera")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

type startTrackingRequest struct {
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Algorithm string `json:"algorithm"`
}

type trackingResponse struct {
	Active bool `json:"active"`
}

// handleTracking handles /api/tracking. GET reports whether a tracker
// session is active, POST starts one on the next frame, DELETE stops
// the active session.
func (s *Server) handleTracking(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, trackingResponse{Active: s.config.App.Tracking()})
	case http.MethodPost:
		var req startTrackingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		algorithm := req.Algorithm
		if algorithm == "" {
			algorithm = tracking.AlgorithmCSRT
		}

		box := image.Rect(req.X, req.Y, req.X+req.Width, req.Y+req.Height)
		if err := s.config.App.StartTracking(box, algorithm); err != nil {
			if errors.Is(err, tracking.ErrInitFailed) || errors.Is(err, app.ErrNoFrame) {
				writeError(w, http.StatusConflict, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, trackingResponse{Active: true})
	case http.MethodDelete:
		s.config.App.StopTracking()
		writeJSON(w, http.StatusOK, trackingResponse{Active: false})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type streamInfo struct {
	Format string `json:"format"`
	FPS    int    `json:"fps"`
}

type exportResponse struct {
	ExportedAt     string                  `json:"exported_at"`
	Stats          analysis.MetricsSummary `json:"stats"`
	Capabilities   []analysis.Capability   `json:"capabilities"`
	Options        app.Options             `json:"options"`
	Processing     bool                    `json:"processing_enabled"`
	CameraRunning  bool                    `json:"camera_running"`
	TrackingActive bool                    `json:"tracking_active"`
	Stream         streamInfo              `json:"stream"`
}

// handleExport handles GET /api/export. It serves the session state —
// rolling stats, capabilities, options and stream configuration — as a
// downloadable JSON document.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := time.Now()
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=framesight_export_%s.json", now.Format("20060102_150405")))

	writeJSON(w, http.StatusOK, exportResponse{
		ExportedAt:     now.Format("2006-01-02T15:04:05Z07:00"),
		Stats:          s.config.App.Analyzer().Metrics().Summary(),
		Capabilities:   s.config.App.Analyzer().Capabilities(),
		Options:        s.config.App.Options(),
		Processing:     s.config.App.IsEnabled(),
		CameraRunning:  s.config.App.CameraRunning(),
		TrackingActive: s.config.App.Tracking(),
		Stream:         streamInfo{Format: "mjpeg", FPS: 15},
	})
}

type savedFrameResponse struct {
	ID           string  `json:"id"`
	LocalPath    string  `json:"local_path"`
	ObjectKey    string  `json:"object_key,omitempty"`
	QualityScore float64 `json:"quality_score"`
}

// handleFrameSave handles POST /api/frames/save. It captures one
// processed frame, writes it to disk and mirrors it to cloud storage
// when configured.
func (s *Server) handleFrameSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	saved, err := s.config.App.SaveFrame(r.Context())
	if err != nil {
		if errors.Is(err, app.ErrNoFrame) {
			writeError(w, http.StatusConflict, "No frame available")
			return
		}
		if errors.Is(err, analysis.ErrInvalidFrame) {
			writeError(w, http.StatusBadRequest, "Invalid frame")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to save frame")
		return
	}

	writeJSON(w, http.StatusCreated, savedFrameResponse{
		ID:           saved.ID,
		LocalPath:    saved.LocalPath,
		ObjectKey:    saved.ObjectKey,
		QualityScore: saved.QualityScore,
	})
}
