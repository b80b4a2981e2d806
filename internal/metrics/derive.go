package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// possessionFTAFactor is the share of free-throw attempts that end a possession.
const possessionFTAFactor = 0.44

// identityColumns are required for any derivation.
var identityColumns = []Column{ColGameID, ColTeamAbbr, ColGameDate}

// EstimatePossessions returns FGA - OREB + TOV + 0.44 * FTA.
func EstimatePossessions(fga, oreb, tov, fta int) float64 {
	return float64(fga-oreb+tov) + possessionFTAFactor*float64(fta)
}

// EffectiveFGPct returns (FGM + 0.5 * FG3M) / FGA, or NaN when FGA is zero.
func EffectiveFGPct(fgm, fg3m, fga float64) float64 {
	return ratio(fgm+0.5*fg3m, fga)
}

// TrueShootingPct returns PTS / (2 * (FGA + 0.44 * FTA)), or NaN when the
// denominator is zero.
func TrueShootingPct(pts, fga, fta float64) float64 {
	return ratio(pts, 2*(fga+possessionFTAFactor*fta))
}

// ratio divides n by d, yielding NaN instead of an infinity when d is zero.
func ratio(n, d float64) float64 {
	if d == 0 {
		return math.NaN()
	}
	return n / d
}

// Frame is an immutable set of derived team game rows. It is safe for
// concurrent readers; every operation returns new values.
type Frame struct {
	columns ColumnSet
	window  Window
	rows    []DerivedGameRow
}

// Derive converts a game log into a Frame, computing possessions and the
// per-game efficiency fields and pairing each row with its opponent.
func Derive(in GameLog) (*Frame, error) {
	cols := in.Columns
	if cols == nil {
		cols = NewColumnSet(FeedColumns...)
	}
	if missing := cols.Missing(identityColumns); len(missing) > 0 {
		return nil, &DataShapeError{Shape: "derive", Missing: missing}
	}

	useMinutes := cols.Has(ColMIN)
	rows := make([]DerivedGameRow, len(in.Rows))
	byGame := make(map[string][]int, len(in.Rows)/2+1)

	for i, raw := range in.Rows {
		raw.GameID = strings.TrimSpace(raw.GameID)
		raw.TeamAbbreviation = strings.ToUpper(strings.TrimSpace(raw.TeamAbbreviation))
		if raw.GameID == "" {
			return nil, &DataShapeError{Shape: "derive", Reason: fmt.Sprintf("row %d has an empty %s", i, ColGameID)}
		}
		if raw.TeamAbbreviation == "" {
			return nil, &DataShapeError{Shape: "derive", Reason: fmt.Sprintf("row %d has an empty %s", i, ColTeamAbbr)}
		}

		for _, j := range byGame[raw.GameID] {
			if rows[j].TeamAbbreviation == raw.TeamAbbreviation {
				return nil, &DataShapeError{
					Shape:  "derive",
					Reason: fmt.Sprintf("duplicate row for game %s team %s", raw.GameID, raw.TeamAbbreviation),
				}
			}
		}
		byGame[raw.GameID] = append(byGame[raw.GameID], i)
		if n := len(byGame[raw.GameID]); n > 2 {
			return nil, &DataShapeError{
				Shape:  "derive",
				Reason: fmt.Sprintf("game %s has %d team rows, want at most 2", raw.GameID, n),
			}
		}

		rows[i] = deriveRow(raw, useMinutes)
	}

	for _, idx := range byGame {
		if len(idx) != 2 {
			continue
		}
		a, b := &rows[idx[0]], &rows[idx[1]]
		pair(a, b)
		pair(b, a)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rowLess(rows[i], rows[j])
	})

	return &Frame{columns: copyColumns(cols), window: Season, rows: rows}, nil
}

func deriveRow(raw TeamGameRow, useMinutes bool) DerivedGameRow {
	poss := EstimatePossessions(raw.FGA, raw.OREB, raw.TOV, raw.FTA)
	minutes := DefaultTeamMinutes
	if useMinutes && raw.MIN > 0 {
		minutes = raw.MIN
	}
	return DerivedGameRow{
		TeamGameRow:    raw,
		Possessions:    poss,
		Minutes:        minutes,
		OppPossessions: math.NaN(),
		ORtg:           ratio(float64(raw.PTS), poss) * 100,
		EFG:            EffectiveFGPct(float64(raw.FGM), float64(raw.FG3M), float64(raw.FGA)),
		TS:             TrueShootingPct(float64(raw.PTS), float64(raw.FGA), float64(raw.FTA)),
		AstRate:        ratio(float64(raw.AST), poss),
		TovRate:        ratio(float64(raw.TOV), poss),
	}
}

func pair(row, opp *DerivedGameRow) {
	row.Paired = true
	row.OppAbbr = opp.TeamAbbreviation
	row.OppPTS = opp.PTS
	row.OppPossessions = opp.Possessions
}

// rowLess orders rows by date, then game, then team.
func rowLess(a, b DerivedGameRow) bool {
	if !a.GameDate.Equal(b.GameDate) {
		return a.GameDate.Before(b.GameDate)
	}
	if a.GameID != b.GameID {
		return a.GameID < b.GameID
	}
	return a.TeamAbbreviation < b.TeamAbbreviation
}

func copyColumns(cols ColumnSet) ColumnSet {
	out := make(ColumnSet, len(cols))
	for c, ok := range cols {
		out[c] = ok
	}
	return out
}

// Len returns the number of team game rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Rows returns a copy of the derived rows.
func (f *Frame) Rows() []DerivedGameRow {
	out := make([]DerivedGameRow, len(f.rows))
	copy(out, f.rows)
	return out
}

// WindowApplied returns the window the frame was restricted to.
func (f *Frame) WindowApplied() Window {
	return f.window
}

// Columns returns a copy of the columns the source feed supplied.
func (f *Frame) Columns() ColumnSet {
	return copyColumns(f.columns)
}

// Teams returns the distinct team abbreviations, sorted.
func (f *Frame) Teams() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range f.rows {
		if !seen[r.TeamAbbreviation] {
			seen[r.TeamAbbreviation] = true
			out = append(out, r.TeamAbbreviation)
		}
	}
	sort.Strings(out)
	return out
}

// DateRange returns the earliest and latest game dates. Both are zero for an
// empty frame.
func (f *Frame) DateRange() (first, last time.Time) {
	if len(f.rows) == 0 {
		return time.Time{}, time.Time{}
	}
	// rows are date-ordered
	return f.rows[0].GameDate, f.rows[len(f.rows)-1].GameDate
}

// Summary describes a frame's contents.
type Summary struct {
	Teams          []string  `json:"teams"`
	NumTeams       int       `json:"num_teams"`
	TotalTeamGames int       `json:"total_team_games"`
	FirstGame      time.Time `json:"first_game"`
	LastGame       time.Time `json:"last_game"`
}

// Summary returns the frame's team list, row count and date range.
func (f *Frame) Summary() Summary {
	teams := f.Teams()
	first, last := f.DateRange()
	return Summary{
		Teams:          teams,
		NumTeams:       len(teams),
		TotalTeamGames: len(f.rows),
		FirstGame:      first,
		LastGame:       last,
	}
}
