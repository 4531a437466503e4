package database

// schema holds the DDL per driver. Timestamps are written in UTC.
var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS sp_category (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			tab TEXT NOT NULL,
			UNIQUE(name, tab)
		)`,
		`CREATE TABLE IF NOT EXISTS sp_type (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			offset_days INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sp_level (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			offset_days INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sp_submission (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			link TEXT NOT NULL,
			category TEXT NOT NULL,
			type TEXT NOT NULL,
			level TEXT NOT NULL,
			rts INTEGER NOT NULL DEFAULT 1,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			scheduled_at TIMESTAMP NOT NULL,
			tab TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sp_submission_backlog
			ON sp_submission (category, type, level, scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sp_submission_tab
			ON sp_submission (tab, done, scheduled_at)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS sp_category (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			tab TEXT NOT NULL,
			UNIQUE(name, tab)
		)`,
		`CREATE TABLE IF NOT EXISTS sp_type (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			offset_days INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sp_level (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			offset_days INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS sp_submission (
			id BIGSERIAL PRIMARY KEY,
			link TEXT NOT NULL,
			category TEXT NOT NULL,
			type TEXT NOT NULL,
			level TEXT NOT NULL,
			rts INTEGER NOT NULL DEFAULT 1,
			done BOOLEAN NOT NULL DEFAULT FALSE,
			scheduled_at TIMESTAMPTZ NOT NULL,
			tab TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sp_submission_backlog
			ON sp_submission (category, type, level, scheduled_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sp_submission_tab
			ON sp_submission (tab, done, scheduled_at)`,
	},
}
