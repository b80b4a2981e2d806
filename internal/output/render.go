package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/query"
)

// Options controls result rendering.
type Options struct {
	// Width is the terminal width; zero means 80.
	Width int
	// Title prefixes the section header, e.g. the season label.
	Title string
}

func (o Options) width() int {
	if o.Width <= 0 {
		return 80
	}
	return o.Width
}

// FormatValue formats v the way the catalog says m is displayed.
func FormatValue(m metrics.Metric, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	info, _ := metrics.Lookup(m)
	switch info.Format {
	case metrics.FormatPercent:
		return fmt.Sprintf("%.1f%%", v*100)
	case metrics.FormatRate:
		return fmt.Sprintf("%.3f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func label(m metrics.Metric) string {
	if info, ok := metrics.Lookup(m); ok {
		return info.Label
	}
	return string(m)
}

// RenderResult writes a query result as a styled section for its chart type.
func RenderResult(w io.Writer, res *query.Result, opts Options) error {
	var body string
	switch c := res.Spec.Chart().(type) {
	case query.Leaderboard:
		body = renderLeaderboard(res, c, opts)
	case query.Scatter:
		body = renderScatter(res, c, opts)
	case query.Compare:
		body = renderCompare(res, c, opts)
	default:
		return fmt.Errorf("%w: %T", query.ErrUnhandledChart, c)
	}

	var sb strings.Builder
	sb.WriteString(body)
	if res.Explanation != "" {
		sb.WriteString("\n")
		for _, part := range strings.Split(res.Explanation, " | ") {
			sb.WriteString(" " + StyleMuted.Render(part) + "\n")
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func title(opts Options, s string) string {
	if opts.Title != "" {
		s = opts.Title + " · " + s
	}
	return Section(s, opts.width()-2)
}

func noTeams(head string) string {
	return head + "\n\n " + StyleWarning.Render("No teams matched.") + "\n"
}

func record(r metrics.TeamAggregate) string {
	return fmt.Sprintf("%d-%d", r.Wins, r.Losses)
}

func renderLeaderboard(res *query.Result, c query.Leaderboard, opts Options) string {
	head := title(opts, fmt.Sprintf("%s leaders (%s, %s)", label(c.Metric), res.Spec.Window(), c.Order))
	if res.Empty() {
		return noTeams(head)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range res.Table.Rows {
		if v, ok := r.Value(c.Metric); ok {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}

	headers := []string{"#", "TEAM", "GP", "W-L"}
	for _, m := range res.Table.Columns {
		headers = append(headers, string(m))
	}
	headers = append(headers, "")
	tbl := NewTable(headers...)
	tbl.AlignRight(0, 2, 3)
	for i := range res.Table.Columns {
		tbl.AlignRight(4 + i)
	}

	for i, r := range res.Table.Rows {
		cells := []string{fmt.Sprint(i + 1), StyleBold.Render(r.Team), fmt.Sprint(r.Games), record(r)}
		for _, m := range res.Table.Columns {
			v, _ := r.Value(m)
			s := FormatValue(m, v)
			if m == c.Metric {
				s = StyleBold.Render(s)
			}
			cells = append(cells, s)
		}
		v, _ := r.Value(c.Metric)
		cells = append(cells, Bar(v, lo, hi, 12))
		tbl.AddRow(cells...)
	}
	return head + "\n" + indent(tbl.Render())
}

func renderScatter(res *query.Result, c query.Scatter, opts Options) string {
	head := title(opts, fmt.Sprintf("%s vs %s (%s)", label(c.X), label(c.Y), res.Spec.Window()))
	if res.Empty() {
		return noTeams(head)
	}

	pts := make([]point, 0, res.Table.Len())
	tbl := NewTable("TEAM", "GP", string(c.X), string(c.Y)).AlignRight(1, 2, 3)
	for _, r := range res.Table.Rows {
		x, _ := r.Value(c.X)
		y, _ := r.Value(c.Y)
		pts = append(pts, point{label: r.Team, x: x, y: y})
		tbl.AddRow(StyleBold.Render(r.Team), fmt.Sprint(r.Games), FormatValue(c.X, x), FormatValue(c.Y, y))
	}

	var sb strings.Builder
	sb.WriteString(head + "\n\n")
	sb.WriteString(plot(pts, c.X, c.Y, opts.width()-14, 16))
	sb.WriteString("\n")
	sb.WriteString(indent(tbl.Render()))
	return sb.String()
}

func renderCompare(res *query.Result, c query.Compare, opts Options) string {
	head := title(opts, fmt.Sprintf("%s (%s)", strings.Join(c.Teams, " vs "), res.Spec.Window()))
	if res.Empty() {
		return noTeams(head)
	}

	rows := res.Table.Rows
	headers := []string{"METRIC"}
	for _, r := range rows {
		headers = append(headers, r.Team)
	}
	pairwise := len(rows) == 2
	if pairwise {
		headers = append(headers, "DIFF")
	}
	tbl := NewTable(headers...)
	for i := 1; i < len(headers); i++ {
		tbl.AlignRight(i)
	}

	gp, wl := []string{"GP"}, []string{"W-L"}
	for _, r := range rows {
		gp = append(gp, fmt.Sprint(r.Games))
		wl = append(wl, record(r))
	}
	if pairwise {
		gp, wl = append(gp, ""), append(wl, "")
	}
	tbl.AddRow(gp...)
	tbl.AddRow(wl...)

	for _, m := range res.Table.Columns {
		cells := []string{string(m)}
		best := bestIndex(rows, m)
		for i, r := range rows {
			v, _ := r.Value(m)
			s := FormatValue(m, v)
			if i == best && !pairwise {
				s = StyleSuccess.Render(s)
			}
			cells = append(cells, s)
		}
		if pairwise {
			a, _ := rows[0].Value(m)
			b, _ := rows[1].Value(m)
			d := a - b
			cells = append(cells, TrendArrow(d, FormatValue(m, math.Abs(d)), m.HigherIsBetter()))
		}
		tbl.AddRow(cells...)
	}
	return head + "\n" + indent(tbl.Render())
}

// bestIndex returns the row with the better value of m, or -1 if no row has one.
func bestIndex(rows []metrics.TeamAggregate, m metrics.Metric) int {
	best := -1
	var bv float64
	for i, r := range rows {
		v, ok := r.Value(m)
		if !ok {
			continue
		}
		if best < 0 || (m.HigherIsBetter() && v > bv) || (!m.HigherIsBetter() && v < bv) {
			best, bv = i, v
		}
	}
	return best
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = " " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// RenderCatalog writes the metric catalog as a table.
func RenderCatalog(w io.Writer, infos []metrics.Info) error {
	tbl := NewTable("METRIC", "NAME", "BETTER", "DEFINITION")
	for _, info := range infos {
		better := "higher"
		if !info.HigherIsBetter {
			better = "lower"
		}
		tbl.AddRow(StyleBold.Render(string(info.Name)), info.Label, better, info.Definition)
	}
	_, err := io.WriteString(w, Section("Supported metrics", 78)+"\n"+indent(tbl.Render()))
	return err
}
