package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// Result is the output of one query: the shaped table and a human-readable
// explanation of what it shows.
type Result struct {
	Spec        ChartSpec
	Table       *metrics.Table
	Explanation string
}

// Empty reports whether no team matched. An empty result is still valid.
func (r *Result) Empty() bool {
	return r.Table == nil || r.Table.Len() == 0
}

// MarshalJSON encodes the result as {spec, explanation, rows}.
func (r *Result) MarshalJSON() ([]byte, error) {
	table := r.Table
	if table == nil {
		table = &metrics.Table{}
	}
	return json.Marshal(struct {
		Spec        ChartSpec      `json:"spec"`
		Explanation string         `json:"explanation"`
		Rows        *metrics.Table `json:"rows"`
	}{r.Spec, r.Explanation, table})
}

// Runner executes validated specs against a derived frame. It holds no
// per-query state and is safe for concurrent use.
type Runner struct {
	log zerolog.Logger
}

// NewRunner creates a Runner that logs query execution at debug level.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log.With().Str("component", "query").Logger()}
}

var defaultRunner = &Runner{log: zerolog.Nop()}

// Run executes spec against f with a non-logging Runner.
func Run(f *metrics.Frame, spec ChartSpec) (*Result, error) {
	return defaultRunner.Run(f, spec)
}

// Run validates spec, windows the frame, aggregates it in the shape the chart
// needs and shapes the table for the chart. Validation happens before any
// aggregation work.
func (r *Runner) Run(f *metrics.Frame, spec ChartSpec) (*Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &metrics.DataShapeError{Shape: "input", Reason: "no game log loaded"}
	}

	shape, err := ShapeFor(spec.chart)
	if err != nil {
		return nil, err
	}

	windowed := f.Window(spec.window)
	base, err := metrics.Aggregate(windowed, shape)
	if err != nil {
		return nil, fmt.Errorf("aggregating %s: %w", spec.window, err)
	}

	var table *metrics.Table
	switch c := spec.chart.(type) {
	case Leaderboard:
		table = base.SortBy(c.Metric, c.Order.Ascending()).Head(c.TopN)
	case Scatter:
		table = base
	case Compare:
		table = base.FilterTeams(c.Teams)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnhandledChart, c)
	}

	r.log.Debug().
		Str("spec", spec.String()).
		Int("rows_in", f.Len()).
		Int("rows_window", windowed.Len()).
		Str("shape", shape.String()).
		Int("teams_out", table.Len()).
		Msg("query executed")

	return &Result{Spec: spec, Table: table, Explanation: Explain(spec)}, nil
}

// ShapeFor picks the aggregation a chart needs. A leaderboard on a rating
// metric uses the ratings shape; every other chart uses the complete shape.
func ShapeFor(c Chart) (metrics.Shape, error) {
	switch c := c.(type) {
	case Leaderboard:
		if c.Metric.IsRating() {
			return metrics.ShapeRatings, nil
		}
		return metrics.ShapeComplete, nil
	case Scatter, Compare:
		return metrics.ShapeComplete, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrUnhandledChart, c)
}

const (
	ratingNote  = "Ratings computed from opponent-paired games using estimated possessions."
	boxNote     = "Metric computed from aggregated team box score totals over the window."
	paceNote    = "PACE = possessions per 48 minutes"
	netRtgNote  = "NET_RTG = ORtg - DRtg"
	scatterNote = "Each point is one team aggregated over the selected window."
	compareNote = "Comparison uses the same metric definitions as leaderboards."
)

// Explain describes spec in one line of " | " separated parts.
func Explain(spec ChartSpec) string {
	parts := []string{
		"Chart type: " + string(spec.Type()),
		"Entity: " + spec.entity,
		"Window: " + string(spec.window),
	}

	switch c := spec.chart.(type) {
	case Leaderboard:
		parts = append(parts, fmt.Sprintf("Metric: %s (sorted %s, top_n=%d)", c.Metric, c.Order, c.TopN))
		switch c.Metric {
		case metrics.NetRtg:
			parts = append(parts, netRtgNote)
		case metrics.Pace:
			parts = append(parts, paceNote)
		}
		if c.Metric.IsRating() {
			parts = append(parts, ratingNote)
		} else {
			parts = append(parts, boxNote)
		}
	case Scatter:
		parts = append(parts, fmt.Sprintf("X: %s, Y: %s", c.X, c.Y), scatterNote, ratingNote)
	case Compare:
		parts = append(parts, "Teams: "+strings.Join(c.Teams, ", "), compareNote, ratingNote)
	}
	return strings.Join(parts, " | ")
}
