package api

import (
	"encoding/json"
	"net/http"

	"github.com/asengupta/framesight/internal/store"
)

// RecordsHandler handles HTTP requests for stored analysis records.
type RecordsHandler struct {
	store *store.Store
}

// NewRecordsHandler creates a new RecordsHandler with the given store.
func NewRecordsHandler(s *store.Store) *RecordsHandler {
	return &RecordsHandler{store: s}
}

type recordResponse struct {
	ID           string          `json:"id"`
	FrameID      string          `json:"frame_id,omitempty"`
	Analysis     json.RawMessage `json:"analysis"`
	QualityScore float64         `json:"quality_score"`
	CreatedAt    string          `json:"created_at"`
}

type listRecordsResponse struct {
	Records []recordResponse `json:"records"`
}

// toRecordResponse converts a store.AnalysisRecord to a recordResponse.
func toRecordResponse(rec *store.AnalysisRecord) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		FrameID:      rec.FrameID,
		Analysis:     json.RawMessage(rec.Payload),
		QualityScore: rec.QualityScore,
		CreatedAt:    rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ServeHTTP handles GET /api/records and returns recent analysis
// records, newest first.
func (h *RecordsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.store.Records().ListRecent(queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records")
		return
	}

	response := listRecordsResponse{
		Records: make([]recordResponse, 0, len(records)),
	}
	for i := range records {
		response.Records = append(response.Records, toRecordResponse(&records[i]))
	}

	writeJSON(w, http.StatusOK, response)
}
