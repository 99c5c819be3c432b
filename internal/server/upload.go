package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/asengupta/framesight/internal/analysis"
)

// maxUploadBytes bounds uploaded clip size.
const maxUploadBytes = 200 << 20

type clipResponse struct {
	Filename string                  `json:"filename"`
	Metrics  analysis.MetricsSummary `json:"metrics"`
}

// handleVideoUpload handles POST /api/videos. It accepts a multipart
// clip upload, runs it through a dedicated analyzer and returns the
// clip's metrics summary.
func (s *Server) handleVideoUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing video file")
		return
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "framesight-upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	tmp.Close()

	summary, err := s.config.App.AnalyzeVideo(r.Context(), tmp.Name())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to analyze video")
		return
	}

	writeJSON(w, http.StatusOK, clipResponse{
		Filename: header.Filename,
		Metrics:  summary,
	})
}
