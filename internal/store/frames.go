package store

import (
	"database/sql"
	"errors"
	"time"
)

// SavedFrame is the metadata of one frame snapshot kept on disk and
// optionally mirrored to the object store.
type SavedFrame struct {
	ID           string
	LocalPath    string
	ObjectKey    string
	QualityScore float64
	CreatedAt    time.Time
}

// FrameRepository provides CRUD operations for saved frames.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Create inserts a new saved frame.
func (r *FrameRepository) Create(f *SavedFrame) error {
	f.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO frames (id, local_path, object_key, quality_score, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.LocalPath, f.ObjectKey, f.QualityScore, f.CreatedAt,
	)
	return err
}

// GetByID retrieves a saved frame by its ID.
func (r *FrameRepository) GetByID(id string) (*SavedFrame, error) {
	f := &SavedFrame{}

	err := r.db.QueryRow(
		`SELECT id, local_path, object_key, quality_score, created_at
		 FROM frames WHERE id = ?`,
		id,
	).Scan(&f.ID, &f.LocalPath, &f.ObjectKey, &f.QualityScore, &f.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return f, nil
}

// List returns the most recent saved frames, newest first.
func (r *FrameRepository) List(limit int) ([]SavedFrame, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, local_path, object_key, quality_score, created_at
		 FROM frames ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []SavedFrame
	for rows.Next() {
		var f SavedFrame
		if err := rows.Scan(&f.ID, &f.LocalPath, &f.ObjectKey, &f.QualityScore, &f.CreatedAt); err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}

	return frames, rows.Err()
}
