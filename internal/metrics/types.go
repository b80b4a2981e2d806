// Package metrics derives per-game efficiency fields from team box scores and
// aggregates them per team over a window of games.
package metrics

import (
	"sort"
	"time"
)

// Column is an exact, case-sensitive column name of the team game feed.
type Column string

// Feed columns.
const (
	ColGameID   Column = "GAME_ID"
	ColGameDate Column = "GAME_DATE"
	ColTeamID   Column = "TEAM_ID"
	ColTeamAbbr Column = "TEAM_ABBREVIATION"
	ColTeamName Column = "TEAM_NAME"
	ColMatchup  Column = "MATCHUP"
	ColWL       Column = "WL"
	ColFGM      Column = "FGM"
	ColFGA      Column = "FGA"
	ColFG3M     Column = "FG3M"
	ColFG3A     Column = "FG3A"
	ColFTM      Column = "FTM"
	ColFTA      Column = "FTA"
	ColOREB     Column = "OREB"
	ColDREB     Column = "DREB"
	ColAST      Column = "AST"
	ColSTL      Column = "STL"
	ColBLK      Column = "BLK"
	ColTOV      Column = "TOV"
	ColPF       Column = "PF"
	ColPTS      Column = "PTS"
	ColMIN      Column = "MIN"
	ColSeasonID Column = "SEASON_ID"
)

// FeedColumns lists every column the feed decoders recognise, in canonical order.
var FeedColumns = []Column{
	ColSeasonID, ColGameID, ColGameDate, ColTeamID, ColTeamAbbr, ColTeamName, ColMatchup, ColWL,
	ColFGM, ColFGA, ColFG3M, ColFG3A, ColFTM, ColFTA, ColOREB, ColDREB,
	ColAST, ColSTL, ColBLK, ColTOV, ColPF, ColPTS, ColMIN,
}

// DefaultTeamMinutes is the regulation team-minutes assumed for a game when
// the feed has no usable MIN value.
const DefaultTeamMinutes = 240.0

// ColumnSet records which columns a feed actually supplied.
type ColumnSet map[Column]bool

// NewColumnSet builds a set from the given columns.
func NewColumnSet(cols ...Column) ColumnSet {
	s := make(ColumnSet, len(cols))
	for _, c := range cols {
		s[c] = true
	}
	return s
}

// Has reports whether c is present.
func (s ColumnSet) Has(c Column) bool {
	return s[c]
}

// Missing returns the columns of want that are absent, in the order given.
func (s ColumnSet) Missing(want []Column) []Column {
	var out []Column
	for _, c := range want {
		if !s[c] {
			out = append(out, c)
		}
	}
	return out
}

// Sorted returns the columns in lexical order.
func (s ColumnSet) Sorted() []Column {
	out := make([]Column, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// TeamGameRow is one team's box score for one game.
type TeamGameRow struct {
	GameID           string    `json:"game_id"`
	GameDate         time.Time `json:"game_date"`
	TeamID           int64     `json:"team_id,omitempty"`
	TeamAbbreviation string    `json:"team_abbreviation"`
	TeamName         string    `json:"team_name,omitempty"`
	Matchup          string    `json:"matchup,omitempty"`
	WL               string    `json:"wl,omitempty"`

	FGM  int `json:"fgm"`
	FGA  int `json:"fga"`
	FG3M int `json:"fg3m"`
	FG3A int `json:"fg3a"`
	FTM  int `json:"ftm"`
	FTA  int `json:"fta"`
	OREB int `json:"oreb"`
	DREB int `json:"dreb"`
	AST  int `json:"ast"`
	STL  int `json:"stl"`
	BLK  int `json:"blk"`
	TOV  int `json:"tov"`
	PF   int `json:"pf"`
	PTS  int `json:"pts"`

	// MIN is team minutes played (240 for a regulation game).
	MIN float64 `json:"min,omitempty"`
}

// Won reports whether the row records a win.
func (r TeamGameRow) Won() bool {
	return r.WL == "W"
}

// GameLog is the tabular feed of team game rows plus the columns it carried.
// A nil Columns means every feed column is present.
type GameLog struct {
	Columns ColumnSet     `json:"-"`
	Rows    []TeamGameRow `json:"rows"`
}

// DerivedGameRow is a TeamGameRow with its computed per-game fields.
type DerivedGameRow struct {
	TeamGameRow

	// Possessions is the team's estimated possessions in this game.
	Possessions float64
	// Minutes is the resolved team-minutes (MIN, or DefaultTeamMinutes).
	Minutes float64

	// Paired is false when the opponent's row for GameID is not in the feed.
	Paired         bool
	OppAbbr        string
	OppPTS         int
	OppPossessions float64

	// Per-game efficiency fields; NaN where the denominator is zero.
	ORtg    float64
	EFG     float64
	TS      float64
	AstRate float64
	TovRate float64
}
