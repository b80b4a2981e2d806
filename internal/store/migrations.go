package store

import "fmt"

// currentSchemaVersion is the latest schema version.
const currentSchemaVersion = 1

// Migrate runs forward migrations to bring the database schema up to date.
func (db *DB) Migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	version := 0
	row := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1")
	if err := row.Scan(&version); err != nil {
		// No rows means version 0 (fresh database).
		version = 0
	}

	if version < 1 {
		if err := db.migrateV1(); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return nil
}

// SchemaVersion returns the schema version recorded in the database.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}

// migrateV1 creates the feed cache tables.
func (db *DB) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS feed_fetches (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			season       TEXT NOT NULL,
			season_type  TEXT NOT NULL,
			source       TEXT NOT NULL,
			fetched_at   TEXT NOT NULL,
			row_count    INTEGER NOT NULL,
			column_names TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS team_games (
			fetch_id          INTEGER NOT NULL REFERENCES feed_fetches(id) ON DELETE CASCADE,
			game_id           TEXT NOT NULL,
			game_date         TEXT NOT NULL,
			team_id           INTEGER,
			team_abbreviation TEXT NOT NULL,
			team_name         TEXT,
			matchup           TEXT,
			wl                TEXT,
			fgm               INTEGER NOT NULL,
			fga               INTEGER NOT NULL,
			fg3m              INTEGER NOT NULL,
			fg3a              INTEGER NOT NULL,
			ftm               INTEGER NOT NULL,
			fta               INTEGER NOT NULL,
			oreb              INTEGER NOT NULL,
			dreb              INTEGER NOT NULL,
			ast               INTEGER NOT NULL,
			stl               INTEGER NOT NULL,
			blk               INTEGER NOT NULL,
			tov               INTEGER NOT NULL,
			pf                INTEGER NOT NULL,
			pts               INTEGER NOT NULL,
			minutes           REAL NOT NULL,
			PRIMARY KEY (fetch_id, game_id, team_abbreviation)
		)`,

		// Indexes.
		`CREATE INDEX IF NOT EXISTS idx_feed_fetches_key ON feed_fetches(season, season_type, fetched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_team_games_fetch ON team_games(fetch_id)`,
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", currentSchemaVersion); err != nil {
		return err
	}

	return tx.Commit()
}
