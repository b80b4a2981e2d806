package metrics

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Shape selects which derived columns an aggregate carries. Every shape is
// computed by the same accumulator, so shared columns are identical.
type Shape int

const (
	// ShapeOffense carries PPG, eFG, TS, AST_RATE and TOV_RATE.
	ShapeOffense Shape = iota
	// ShapeRatings carries PPG plus the opponent-paired ORtg, DRtg, NET_RTG and PACE.
	ShapeRatings
	// ShapeComplete carries every supported metric.
	ShapeComplete
)

func (s Shape) String() string {
	switch s {
	case ShapeOffense:
		return "offense"
	case ShapeRatings:
		return "offense+defense"
	case ShapeComplete:
		return "complete"
	}
	return "unknown"
}

// Columns returns the metrics the shape carries, in display order.
func (s Shape) Columns() []Metric {
	switch s {
	case ShapeOffense:
		return []Metric{PPG, EFG, TS, AstRate, TovRate}
	case ShapeRatings:
		return []Metric{ORtg, DRtg, NetRtg, Pace, PPG}
	case ShapeComplete:
		return Names()
	}
	return nil
}

var (
	offenseColumns = []Column{ColPTS, ColFGM, ColFGA, ColFG3M, ColFTA, ColAST, ColTOV, ColOREB}
	ratingColumns  = []Column{ColPTS, ColFGA, ColFTA, ColOREB, ColTOV}
)

// RequiredColumns returns the feed columns the shape needs.
func (s Shape) RequiredColumns() []Column {
	switch s {
	case ShapeOffense:
		return offenseColumns
	case ShapeRatings:
		return ratingColumns
	}
	seen := make(map[Column]bool)
	var out []Column
	for _, c := range append(append([]Column{}, offenseColumns...), ratingColumns...) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// TeamAggregate holds one team's statistics over a window. Missing values
// (a zero denominator, or no opponent-paired games) are NaN.
type TeamAggregate struct {
	Team       string
	Games      int
	RatedGames int
	Wins       int
	Losses     int

	ORtg    float64
	DRtg    float64
	NetRtg  float64
	Pace    float64
	PPG     float64
	EFG     float64
	TS      float64
	AstRate float64
	TovRate float64
}

// Value returns the value of m and whether it is present.
func (a TeamAggregate) Value(m Metric) (float64, bool) {
	var v float64
	switch m {
	case ORtg:
		v = a.ORtg
	case DRtg:
		v = a.DRtg
	case NetRtg:
		v = a.NetRtg
	case Pace:
		v = a.Pace
	case PPG:
		v = a.PPG
	case EFG:
		v = a.EFG
	case TS:
		v = a.TS
	case AstRate:
		v = a.AstRate
	case TovRate:
		v = a.TovRate
	default:
		return math.NaN(), false
	}
	return v, !math.IsNaN(v)
}

// Table is a per-team aggregate restricted to a shape's columns.
type Table struct {
	Shape   Shape
	Window  Window
	Columns []Metric
	Rows    []TeamAggregate
}

// AggregateOffense aggregates the box-score metrics per team.
func AggregateOffense(f *Frame) (*Table, error) {
	return Aggregate(f, ShapeOffense)
}

// AggregateWithDefense aggregates the opponent-paired ratings and pace per team.
func AggregateWithDefense(f *Frame) (*Table, error) {
	return Aggregate(f, ShapeRatings)
}

// AggregateComplete aggregates every supported metric per team.
func AggregateComplete(f *Frame) (*Table, error) {
	return Aggregate(f, ShapeComplete)
}

// teamTotals accumulates one team's box totals over a window.
type teamTotals struct {
	games, wins, losses int
	points              []float64

	pts, fgm, fga, fg3m, fta, ast, tov float64
	poss                               float64

	// opponent-paired games only
	rated                                int
	pairedPts, pairedOppPts              float64
	pairedPoss, pairedOppPoss, pairedMin float64
}

// Aggregate groups the frame's rows by team and computes shape's columns.
// Teams with no rows in the frame are absent from the result.
func Aggregate(f *Frame, shape Shape) (*Table, error) {
	if missing := f.columns.Missing(shape.RequiredColumns()); len(missing) > 0 {
		return nil, &DataShapeError{Shape: shape.String(), Missing: missing}
	}

	totals := make(map[string]*teamTotals)
	var teams []string
	for _, r := range f.rows {
		t, ok := totals[r.TeamAbbreviation]
		if !ok {
			t = &teamTotals{}
			totals[r.TeamAbbreviation] = t
			teams = append(teams, r.TeamAbbreviation)
		}
		t.add(r)
	}
	sort.Strings(teams)

	table := &Table{
		Shape:   shape,
		Window:  f.window,
		Columns: shape.Columns(),
		Rows:    make([]TeamAggregate, 0, len(teams)),
	}
	for _, team := range teams {
		table.Rows = append(table.Rows, totals[team].aggregate(team, shape))
	}
	return table, nil
}

func (t *teamTotals) add(r DerivedGameRow) {
	t.games++
	switch r.WL {
	case "W":
		t.wins++
	case "L":
		t.losses++
	}
	pts := float64(r.PTS)
	t.points = append(t.points, pts)
	t.pts += pts
	t.fgm += float64(r.FGM)
	t.fga += float64(r.FGA)
	t.fg3m += float64(r.FG3M)
	t.fta += float64(r.FTA)
	t.ast += float64(r.AST)
	t.tov += float64(r.TOV)
	t.poss += r.Possessions

	if r.Paired {
		t.rated++
		t.pairedPts += pts
		t.pairedOppPts += float64(r.OppPTS)
		t.pairedPoss += r.Possessions
		t.pairedOppPoss += r.OppPossessions
		t.pairedMin += r.Minutes
	}
}

func (t *teamTotals) aggregate(team string, shape Shape) TeamAggregate {
	nan := math.NaN()
	a := TeamAggregate{
		Team:       team,
		Games:      t.games,
		RatedGames: t.rated,
		Wins:       t.wins,
		Losses:     t.losses,
		ORtg:       nan,
		DRtg:       nan,
		NetRtg:     nan,
		Pace:       nan,
		PPG:        stat.Mean(t.points, nil),
		EFG:        nan,
		TS:         nan,
		AstRate:    nan,
		TovRate:    nan,
	}

	if shape == ShapeRatings || shape == ShapeComplete {
		a.ORtg = ratio(t.pairedPts, t.pairedPoss) * 100
		a.DRtg = ratio(t.pairedOppPts, t.pairedPoss) * 100
		a.NetRtg = a.ORtg - a.DRtg
		// 48 * average possessions of both sides / (team minutes / 5)
		a.Pace = ratio(48*(t.pairedPoss+t.pairedOppPoss)/2, t.pairedMin/5)
	}
	if shape == ShapeOffense || shape == ShapeComplete {
		a.EFG = EffectiveFGPct(t.fgm, t.fg3m, t.fga)
		a.TS = TrueShootingPct(t.pts, t.fga, t.fta)
		a.AstRate = ratio(t.ast, t.poss)
		a.TovRate = ratio(t.tov, t.poss)
	}
	return a
}

// Len returns the number of team rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Teams returns the team abbreviations in row order.
func (t *Table) Teams() []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Team
	}
	return out
}

// Row returns the aggregate for team, matched case-insensitively.
func (t *Table) Row(team string) (TeamAggregate, bool) {
	team = strings.ToUpper(strings.TrimSpace(team))
	for _, r := range t.Rows {
		if r.Team == team {
			return r, true
		}
	}
	return TeamAggregate{}, false
}

func (t *Table) withRows(rows []TeamAggregate) *Table {
	return &Table{
		Shape:   t.Shape,
		Window:  t.Window,
		Columns: append([]Metric(nil), t.Columns...),
		Rows:    rows,
	}
}

// SortBy returns a copy of the table ordered by m. Missing values sort last
// in either direction; ties break by team abbreviation.
func (t *Table) SortBy(m Metric, ascending bool) *Table {
	rows := append([]TeamAggregate(nil), t.Rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		vi, oki := rows[i].Value(m)
		vj, okj := rows[j].Value(m)
		if oki != okj {
			return oki
		}
		if oki && vi != vj {
			if ascending {
				return vi < vj
			}
			return vi > vj
		}
		return rows[i].Team < rows[j].Team
	})
	return t.withRows(rows)
}

// Head returns a copy holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return t.withRows(append([]TeamAggregate(nil), t.Rows[:n]...))
}

// FilterTeams returns a copy holding only the requested teams that are
// present, in request order. Matching is case-insensitive.
func (t *Table) FilterTeams(teams []string) *Table {
	byTeam := make(map[string]TeamAggregate, len(t.Rows))
	for _, r := range t.Rows {
		byTeam[r.Team] = r
	}
	seen := make(map[string]bool)
	rows := make([]TeamAggregate, 0, len(teams))
	for _, team := range teams {
		team = strings.ToUpper(strings.TrimSpace(team))
		if seen[team] {
			continue
		}
		seen[team] = true
		if r, ok := byTeam[team]; ok {
			rows = append(rows, r)
		}
	}
	return t.withRows(rows)
}

// MarshalJSON encodes the table as an array of row objects keyed by column
// name, in column order. Missing values encode as null.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRowJSON(&buf, r, t.Columns); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeRowJSON(buf *bytes.Buffer, r TeamAggregate, cols []Metric) error {
	team, err := json.Marshal(r.Team)
	if err != nil {
		return err
	}
	buf.WriteString(`{"TEAM_ABBREVIATION":`)
	buf.Write(team)
	buf.WriteString(`,"GAMES":`)
	buf.WriteString(jsonInt(r.Games))
	buf.WriteString(`,"W":`)
	buf.WriteString(jsonInt(r.Wins))
	buf.WriteString(`,"L":`)
	buf.WriteString(jsonInt(r.Losses))
	for _, m := range cols {
		key, err := json.Marshal(string(m))
		if err != nil {
			return err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		v, ok := r.Value(m)
		if !ok || math.IsInf(v, 0) {
			buf.WriteString("null")
			continue
		}
		num, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(num)
	}
	buf.WriteByte('}')
	return nil
}

func jsonInt(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
