package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Commands table - one row per emitted command
		`CREATE TABLE IF NOT EXISTS commands (
			id TEXT PRIMARY KEY,
			command TEXT NOT NULL CHECK(length(command) = 1),
			left_hand TEXT NOT NULL,
			right_hand TEXT NOT NULL,
			transport TEXT NOT NULL DEFAULT '',
			error TEXT NOT NULL DEFAULT '',
			sent_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_commands_sent_at ON commands(sent_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
