// Package store provides SQLite persistence for fetched team game logs, so
// the feed loader can serve a season without calling the stats API again.
package store

import "time"

// Fetch records one stored copy of a season's game log.
type Fetch struct {
	ID         int64     `json:"id"`
	Season     string    `json:"season"`
	SeasonType string    `json:"season_type"`
	Source     string    `json:"source"`
	FetchedAt  time.Time `json:"fetched_at"`
	RowCount   int       `json:"row_count"`
	// Columns lists the feed columns the source supplied.
	Columns []string `json:"columns"`
}

// Age returns how long ago the fetch was taken, relative to now.
func (f *Fetch) Age(now time.Time) time.Duration {
	return now.Sub(f.FetchedAt)
}
