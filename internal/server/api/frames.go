// Package api provides HTTP API handlers for browsing stored frames
// and analysis records.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/asengupta/framesight/internal/store"
)

// FramesHandler handles HTTP requests for saved frame resources.
type FramesHandler struct {
	store *store.Store
}

// NewFramesHandler creates a new FramesHandler with the given store.
func NewFramesHandler(s *store.Store) *FramesHandler {
	return &FramesHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests
// to appropriate methods.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/frames or /api/frames/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/frames")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type frameResponse struct {
	ID           string  `json:"id"`
	LocalPath    string  `json:"local_path"`
	ObjectKey    string  `json:"object_key,omitempty"`
	QualityScore float64 `json:"quality_score"`
	CreatedAt    string  `json:"created_at"`
}

type listFramesResponse struct {
	Frames []frameResponse `json:"frames"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toFrameResponse converts a store.SavedFrame to a frameResponse.
func toFrameResponse(f *store.SavedFrame) frameResponse {
	return frameResponse{
		ID:           f.ID,
		LocalPath:    f.LocalPath,
		ObjectKey:    f.ObjectKey,
		QualityScore: f.QualityScore,
		CreatedAt:    f.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
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

// queryLimit parses the optional "limit" query parameter.
func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

// list handles GET /api/frames and returns the most recent frames.
func (h *FramesHandler) list(w http.ResponseWriter, r *http.Request) {
	frames, err := h.store.Frames().List(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}

	response := listFramesResponse{
		Frames: make([]frameResponse, 0, len(frames)),
	}
	for i := range frames {
		response.Frames = append(response.Frames, toFrameResponse(&frames[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/frames/{id} and returns a single frame.
func (h *FramesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	frame, err := h.store.Frames().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Frame not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get frame")
		return
	}

	writeJSON(w, http.StatusOK, toFrameResponse(frame))
}
