package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - stores analysis tuning profiles
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			ear_close_threshold REAL NOT NULL DEFAULT 0.21,
			ear_open_threshold REAL NOT NULL DEFAULT 0.25,
			min_closed_frames INTEGER NOT NULL DEFAULT 2,
			match_distance_frac REAL NOT NULL DEFAULT 0.15,
			evict_after_missed INTEGER NOT NULL DEFAULT 15,
			active INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_active ON profiles(active)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
