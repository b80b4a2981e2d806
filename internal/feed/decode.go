// Package feed acquires team game logs, from a CSV file or the NBA stats
// LeagueGameLog endpoint, and caches fetched seasons in the store.
package feed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

var (
	// ErrUpstream marks a failed call to the stats API.
	ErrUpstream = errors.New("stats api request failed")
	// ErrNoData means a season returned no game rows.
	ErrNoData = errors.New("no games found")
)

// minutesAlias is read as MIN when a feed has no MIN column.
const minutesAlias = "MINUTES"

// dateLayouts are tried in order when decoding GAME_DATE.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"Jan 02, 2006",
}

// CellError reports a feed value that could not be decoded.
type CellError struct {
	Row    int
	Column metrics.Column
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error { return e.Err }

// header maps the recognised feed columns to their position in a record.
type header struct {
	index   map[metrics.Column]int
	columns metrics.ColumnSet
}

// readHeader matches names exactly against the feed columns. Unknown names
// are ignored.
func readHeader(names []string) header {
	known := metrics.NewColumnSet(metrics.FeedColumns...)
	h := header{index: make(map[metrics.Column]int), columns: make(metrics.ColumnSet)}
	alias := -1
	for i, name := range names {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		c := metrics.Column(name)
		if known.Has(c) {
			if _, dup := h.index[c]; !dup {
				h.index[c] = i
				h.columns[c] = true
			}
			continue
		}
		if name == minutesAlias {
			alias = i
		}
	}
	if !h.columns.Has(metrics.ColMIN) && alias >= 0 {
		h.index[metrics.ColMIN] = alias
		h.columns[metrics.ColMIN] = true
	}
	return h
}

// decode converts one record. row is the 1-based data row used in errors.
func (h header) decode(record []string, row int) (metrics.TeamGameRow, error) {
	var r metrics.TeamGameRow
	cell := func(c metrics.Column) string {
		i, ok := h.index[c]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	fail := func(c metrics.Column, err error) error {
		return &CellError{Row: row, Column: c, Value: cell(c), Err: err}
	}

	r.GameID = cell(metrics.ColGameID)
	r.TeamAbbreviation = cell(metrics.ColTeamAbbr)
	r.TeamName = cell(metrics.ColTeamName)
	r.Matchup = cell(metrics.ColMatchup)
	r.WL = cell(metrics.ColWL)

	if h.columns.Has(metrics.ColGameDate) {
		d, err := parseDate(cell(metrics.ColGameDate))
		if err != nil {
			return r, fail(metrics.ColGameDate, err)
		}
		r.GameDate = d
	}

	if s := cell(metrics.ColTeamID); s != "" {
		id, err := parseCount(s)
		if err != nil {
			return r, fail(metrics.ColTeamID, err)
		}
		r.TeamID = int64(id)
	}

	counts := []struct {
		col metrics.Column
		dst *int
	}{
		{metrics.ColFGM, &r.FGM}, {metrics.ColFGA, &r.FGA},
		{metrics.ColFG3M, &r.FG3M}, {metrics.ColFG3A, &r.FG3A},
		{metrics.ColFTM, &r.FTM}, {metrics.ColFTA, &r.FTA},
		{metrics.ColOREB, &r.OREB}, {metrics.ColDREB, &r.DREB},
		{metrics.ColAST, &r.AST}, {metrics.ColSTL, &r.STL},
		{metrics.ColBLK, &r.BLK}, {metrics.ColTOV, &r.TOV},
		{metrics.ColPF, &r.PF}, {metrics.ColPTS, &r.PTS},
	}
	for _, c := range counts {
		if !h.columns.Has(c.col) {
			continue
		}
		n, err := parseCount(cell(c.col))
		if err != nil {
			return r, fail(c.col, err)
		}
		*c.dst = n
	}

	if s := cell(metrics.ColMIN); s != "" {
		m, err := parseMinutes(s)
		if err != nil {
			return r, fail(metrics.ColMIN, err)
		}
		r.MIN = m
	}
	return r, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, errors.New("unrecognised date format")
}

// parseCount accepts "42" and integral floats such as "42.0".
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a whole number")
	}
	return int(f), nil
}

// parseMinutes accepts "240", "240.0" and "240:00".
func parseMinutes(s string) (float64, error) {
	if mins, secs, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mins)
		if err != nil {
			return 0, errors.New("bad minutes")
		}
		sec, err := strconv.Atoi(secs)
		if err != nil || sec < 0 || sec >= 60 {
			return 0, errors.New("bad seconds")
		}
		return float64(m) + float64(sec)/60, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not a number")
	}
	return f, nil
}
