package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

const (
	gameDateLayout = "2006-01-02"
	// fixed width so fetched_at sorts correctly as text
	fetchedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SaveGameLog stores a season's game log as a new fetch and returns its ID.
// Earlier fetches for the same season are kept until PruneFetches.
func (db *DB) SaveGameLog(season, seasonType, source string, fetchedAt time.Time, log metrics.GameLog) (int64, error) {
	cols := log.Columns
	if cols == nil {
		cols = metrics.NewColumnSet(metrics.FeedColumns...)
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols.Sorted() {
		names = append(names, string(c))
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO feed_fetches (season, season_type, source, fetched_at, row_count, column_names)
		VALUES (?, ?, ?, ?, ?, ?)`,
		season, seasonType, source, fetchedAt.UTC().Format(fetchedAtLayout), len(log.Rows), strings.Join(names, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting fetch: %w", err)
	}
	fetchID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO team_games
		(fetch_id, game_id, game_date, team_id, team_abbreviation, team_name, matchup, wl,
		 fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, ast, stl, blk, tov, pf, pts, minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range log.Rows {
		if _, err := stmt.Exec(
			fetchID, r.GameID, r.GameDate.Format(gameDateLayout), r.TeamID, r.TeamAbbreviation,
			r.TeamName, r.Matchup, r.WL,
			r.FGM, r.FGA, r.FG3M, r.FG3A, r.FTM, r.FTA, r.OREB, r.DREB,
			r.AST, r.STL, r.BLK, r.TOV, r.PF, r.PTS, r.MIN,
		); err != nil {
			return 0, fmt.Errorf("inserting game %s %s: %w", r.GameID, r.TeamAbbreviation, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return fetchID, nil
}

const fetchColumns = "id, season, season_type, source, fetched_at, row_count, column_names"

// LatestFetch returns the newest fetch for a season, or nil if none exist.
func (db *DB) LatestFetch(season, seasonType string) (*Fetch, error) {
	row := db.conn.QueryRow(
		"SELECT "+fetchColumns+` FROM feed_fetches
		WHERE season = ? AND season_type = ?
		ORDER BY fetched_at DESC, id DESC LIMIT 1`,
		season, seasonType,
	)
	return scanFetch(row)
}

// GetFetch returns a fetch by ID, or nil if it does not exist.
func (db *DB) GetFetch(id int64) (*Fetch, error) {
	row := db.conn.QueryRow("SELECT "+fetchColumns+" FROM feed_fetches WHERE id = ?", id)
	return scanFetch(row)
}

// ListFetches returns every stored fetch, newest first.
func (db *DB) ListFetches() ([]Fetch, error) {
	rows, err := db.conn.Query("SELECT " + fetchColumns + " FROM feed_fetches ORDER BY fetched_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fetch
	for rows.Next() {
		f, err := scanFetch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanFetch(row scanner) (*Fetch, error) {
	var f Fetch
	var fetchedAt, columns string
	err := row.Scan(&f.ID, &f.Season, &f.SeasonType, &f.Source, &fetchedAt, &f.RowCount, &columns)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.FetchedAt, _ = time.Parse(fetchedAtLayout, fetchedAt)
	if columns != "" {
		f.Columns = strings.Split(columns, ",")
	}
	return &f, nil
}

// LoadGameLog returns the rows stored for a fetch, with the column set the
// source supplied.
func (db *DB) LoadGameLog(fetchID int64) (metrics.GameLog, error) {
	f, err := db.GetFetch(fetchID)
	if err != nil {
		return metrics.GameLog{}, err
	}
	if f == nil {
		return metrics.GameLog{}, fmt.Errorf("fetch %d not found", fetchID)
	}

	rows, err := db.conn.Query(
		`SELECT game_id, game_date, team_id, team_abbreviation, team_name, matchup, wl,
		fgm, fga, fg3m, fg3a, ftm, fta, oreb, dreb, ast, stl, blk, tov, pf, pts, minutes
		FROM team_games WHERE fetch_id = ?
		ORDER BY game_date, game_id, team_abbreviation`,
		fetchID,
	)
	if err != nil {
		return metrics.GameLog{}, err
	}
	defer rows.Close()

	cols := make(metrics.ColumnSet, len(f.Columns))
	for _, c := range f.Columns {
		cols[metrics.Column(c)] = true
	}
	log := metrics.GameLog{Columns: cols, Rows: make([]metrics.TeamGameRow, 0, f.RowCount)}

	for rows.Next() {
		var r metrics.TeamGameRow
		var gameDate string
		var teamID sql.NullInt64
		var teamName, matchup, wl sql.NullString
		if err := rows.Scan(
			&r.GameID, &gameDate, &teamID, &r.TeamAbbreviation, &teamName, &matchup, &wl,
			&r.FGM, &r.FGA, &r.FG3M, &r.FG3A, &r.FTM, &r.FTA, &r.OREB, &r.DREB,
			&r.AST, &r.STL, &r.BLK, &r.TOV, &r.PF, &r.PTS, &r.MIN,
		); err != nil {
			return metrics.GameLog{}, err
		}
		r.GameDate, err = time.Parse(gameDateLayout, gameDate)
		if err != nil {
			return metrics.GameLog{}, fmt.Errorf("game %s: bad stored date %q: %w", r.GameID, gameDate, err)
		}
		r.TeamID = teamID.Int64
		r.TeamName, r.Matchup, r.WL = teamName.String, matchup.String, wl.String
		log.Rows = append(log.Rows, r)
	}
	return log, rows.Err()
}

// PruneFetches deletes all but the newest keep fetches of a season and
// returns how many were removed.
func (db *DB) PruneFetches(season, seasonType string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM feed_fetches
		WHERE season = ? AND season_type = ?
		ORDER BY fetched_at DESC, id DESC LIMIT -1 OFFSET ?`

	if _, err := tx.Exec("DELETE FROM team_games WHERE fetch_id IN ("+stale+")", season, seasonType, keep); err != nil {
		return 0, fmt.Errorf("pruning team games: %w", err)
	}
	result, err := tx.Exec("DELETE FROM feed_fetches WHERE id IN ("+stale+")", season, seasonType, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning fetches: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}
