package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Signs table - the catalog of trainable Libras signs
		`CREATE TABLE IF NOT EXISTS signs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL DEFAULT 'alphabet',
			samples INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sign samples table - recorded landmark windows for offline training
		`CREATE TABLE IF NOT EXISTS sign_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sign_id TEXT NOT NULL REFERENCES signs(id) ON DELETE CASCADE,
			sample_index INTEGER NOT NULL,
			data TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Attempts table - practice results per stable recognition
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			expected TEXT NOT NULL,
			recognized TEXT NOT NULL,
			confidence REAL NOT NULL,
			correct INTEGER NOT NULL,
			combo_count INTEGER NOT NULL DEFAULT 0,
			stars INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_sign_samples_sign_id ON sign_samples(sign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_expected ON attempts(expected)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_created_at ON attempts(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
