package store

import (
	"database/sql"
	"errors"
	"time"
)

// AnalysisRecord is one serialized per-frame analysis result.
type AnalysisRecord struct {
	ID           string
	FrameID      string
	Payload      string
	QualityScore float64
	CreatedAt    time.Time
}

// RecordRepository provides CRUD operations for analysis records.
type RecordRepository struct {
	db *sql.DB
}

// Records returns the analysis record repository for this store.
func (s *Store) Records() *RecordRepository {
	return &RecordRepository{db: s.db}
}

// Create inserts a new analysis record. FrameID may be empty when the
// record is not tied to a saved frame.
func (r *RecordRepository) Create(rec *AnalysisRecord) error {
	rec.CreatedAt = time.Now()

	var frameID interface{}
	if rec.FrameID != "" {
		frameID = rec.FrameID
	}

	_, err := r.db.Exec(
		`INSERT INTO analysis_records (id, frame_id, payload, quality_score, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		rec.ID, frameID, rec.Payload, rec.QualityScore, rec.CreatedAt,
	)
	return err
}

// GetByID retrieves an analysis record by its ID.
func (r *RecordRepository) GetByID(id string) (*AnalysisRecord, error) {
	rec := &AnalysisRecord{}
	var frameID sql.NullString

	err := r.db.QueryRow(
		`SELECT id, frame_id, payload, quality_score, created_at
		 FROM analysis_records WHERE id = ?`,
		id,
	).Scan(&rec.ID, &frameID, &rec.Payload, &rec.QualityScore, &rec.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec.FrameID = frameID.String
	return rec, nil
}

// ListRecent returns the most recent analysis records, newest first.
func (r *RecordRepository) ListRecent(limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, frame_id, payload, quality_score, created_at
		 FROM analysis_records ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		var frameID sql.NullString
		if err := rows.Scan(&rec.ID, &frameID, &rec.Payload, &rec.QualityScore, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.FrameID = frameID.String
		records = append(records, rec)
	}

	return records, rows.Err()
}
