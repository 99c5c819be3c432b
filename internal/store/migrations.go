package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Saved frames table - metadata of frame snapshots
		`CREATE TABLE IF NOT EXISTS frames (
			id TEXT PRIMARY KEY,
			local_path TEXT NOT NULL,
			object_key TEXT NOT NULL DEFAULT '',
			quality_score REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Analysis records table - serialized per-frame analysis output
		`CREATE TABLE IF NOT EXISTS analysis_records (
			id TEXT PRIMARY KEY,
			frame_id TEXT REFERENCES frames(id) ON DELETE SET NULL,
			payload TEXT NOT NULL,
			quality_score REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
