package metrics

import "sort"

// Window restricts each team's games before aggregation.
type Window string

// Supported windows.
const (
	Season Window = "SEASON"
	Last5  Window = "LAST_5"
	Last10 Window = "LAST_10"
	Last20 Window = "LAST_20"
)

// Windows lists the supported windows in canonical order.
var Windows = []Window{Season, Last5, Last10, Last20}

// Valid reports whether w is one of the supported windows.
func (w Window) Valid() bool {
	switch w {
	case Season, Last5, Last10, Last20:
		return true
	}
	return false
}

// Games returns the per-team game limit, or 0 for the full season.
func (w Window) Games() int {
	switch w {
	case Last5:
		return 5
	case Last10:
		return 10
	case Last20:
		return 20
	}
	return 0
}

func (w Window) String() string {
	return string(w)
}

// Window returns a frame holding only the rows that fall in w. Each team's
// last-N games are chosen from that team's own schedule, newest first.
// A team with fewer than N games keeps all of them.
func (f *Frame) Window(w Window) *Frame {
	n := w.Games()
	if n <= 0 {
		return &Frame{columns: f.columns, window: w, rows: f.rows}
	}

	byTeam := make(map[string][]int)
	for i, r := range f.rows {
		byTeam[r.TeamAbbreviation] = append(byTeam[r.TeamAbbreviation], i)
	}

	keep := make([]bool, len(f.rows))
	for _, idx := range byTeam {
		sort.SliceStable(idx, func(a, b int) bool {
			ra, rb := f.rows[idx[a]], f.rows[idx[b]]
			if !ra.GameDate.Equal(rb.GameDate) {
				return ra.GameDate.After(rb.GameDate)
			}
			return ra.GameID > rb.GameID
		})
		if len(idx) > n {
			idx = idx[:n]
		}
		for _, i := range idx {
			keep[i] = true
		}
	}

	rows := make([]DerivedGameRow, 0, len(f.rows))
	for i, r := range f.rows {
		if keep[i] {
			rows = append(rows, r)
		}
	}
	return &Frame{columns: f.columns, window: w, rows: rows}
}
