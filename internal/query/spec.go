// Package query defines the chart query contract, validates untrusted query
// dictionaries into ChartSpecs, and runs them against a metrics frame.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// ChartType names a chart shape.
type ChartType string

// Supported chart types.
const (
	ChartLeaderboard ChartType = "leaderboard"
	ChartScatter     ChartType = "scatter"
	ChartCompare     ChartType = "compare"
)

// ChartTypes lists the supported chart types.
var ChartTypes = []ChartType{ChartLeaderboard, ChartScatter, ChartCompare}

// EntityTeam is the only supported entity.
const EntityTeam = "team"

// Order is a leaderboard sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Ascending reports whether o sorts smallest first.
func (o Order) Ascending() bool { return o == Asc }

// Defaults applied by FromMap when a key is absent.
const (
	DefaultTopN    = 10
	DefaultMetric  = metrics.NetRtg
	DefaultXMetric = metrics.ORtg
	DefaultYMetric = metrics.DRtg
	DefaultWindow  = metrics.Season
)

// DefaultOrder returns the order used when a leaderboard names none: best
// teams first. That is descending, except for metrics where lower is better
// (DRtg, TOV_RATE), which default to ascending. An explicit order is always
// applied numerically as given.
func DefaultOrder(m metrics.Metric) Order {
	if m.HigherIsBetter() {
		return Desc
	}
	return Asc
}

// Chart is the chart-specific part of a spec. The set of implementations is
// closed: Leaderboard, Scatter and Compare.
type Chart interface {
	Type() ChartType
	isChart()
}

// Leaderboard ranks teams by one metric and keeps the first TopN.
type Leaderboard struct {
	Metric metrics.Metric
	TopN   int
	Order  Order
}

// Scatter plots every team on two metrics.
type Scatter struct {
	X metrics.Metric
	Y metrics.Metric
}

// Compare restricts the table to the listed team abbreviations.
type Compare struct {
	Teams []string
}

func (Leaderboard) Type() ChartType { return ChartLeaderboard }
func (Scatter) Type() ChartType     { return ChartScatter }
func (Compare) Type() ChartType     { return ChartCompare }

func (Leaderboard) isChart() {}
func (Scatter) isChart()     {}
func (Compare) isChart()     {}

// ChartSpec is an immutable, validated chart query. The only way to obtain a
// non-zero ChartSpec is FromMap.
type ChartSpec struct {
	entity string
	window metrics.Window
	chart  Chart
}

// Type returns the chart type, or "" for the zero spec.
func (s ChartSpec) Type() ChartType {
	if s.chart == nil {
		return ""
	}
	return s.chart.Type()
}

// Entity returns the entity the query ranks.
func (s ChartSpec) Entity() string { return s.entity }

// Window returns the normalized window.
func (s ChartSpec) Window() metrics.Window { return s.window }

// Chart returns the chart-specific fields. Compare teams are copied.
func (s ChartSpec) Chart() Chart {
	if c, ok := s.chart.(Compare); ok {
		return Compare{Teams: append([]string(nil), c.Teams...)}
	}
	return s.chart
}

// Validate checks every rule a spec must satisfy before it is run.
func (s ChartSpec) Validate() error {
	if s.chart == nil {
		return invalid("chart_type", nil, "is required; must be one of %s", chartTypeList())
	}
	if s.entity != EntityTeam {
		return invalid("entity", s.entity, "only %q is supported", EntityTeam)
	}
	if !s.window.Valid() {
		return invalid("window", s.window, "unsupported window")
	}

	switch c := s.chart.(type) {
	case Leaderboard:
		if !metrics.Supported(string(c.Metric)) {
			return unsupportedMetric("metric", c.Metric)
		}
		if c.TopN <= 0 {
			return invalid("top_n", c.TopN, "must be a positive integer")
		}
		if c.Order != Asc && c.Order != Desc {
			return invalid("order", c.Order, "must be asc or desc")
		}
	case Scatter:
		if !metrics.Supported(string(c.X)) {
			return unsupportedMetric("x_metric", c.X)
		}
		if !metrics.Supported(string(c.Y)) {
			return unsupportedMetric("y_metric", c.Y)
		}
	case Compare:
		if len(c.Teams) < 2 {
			return invalid("teams", strings.Join(c.Teams, ","), "compare needs at least two team abbreviations")
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnhandledChart, c)
	}
	return nil
}

func unsupportedMetric(field string, m metrics.Metric) error {
	names := make([]string, 0, 9)
	for _, n := range metrics.Names() {
		names = append(names, string(n))
	}
	return invalid(field, m, "unsupported metric; supported: %s", strings.Join(names, ", "))
}

func chartTypeList() string {
	names := make([]string, len(ChartTypes))
	for i, c := range ChartTypes {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// FromMap builds a validated ChartSpec from an untyped dictionary such as a
// decoded JSON body or the output of the natural-language parser. Absent or
// null keys take their defaults; keys that do not apply to the chart type are
// ignored. An invalid dictionary never yields a spec.
func FromMap(d map[string]any) (ChartSpec, error) {
	rawType, ok := lookup(d, "chart_type")
	if !ok {
		return ChartSpec{}, invalid("chart_type", nil, "is required; must be one of %s", chartTypeList())
	}
	typeName, isString := rawType.(string)
	if !isString {
		return ChartSpec{}, invalid("chart_type", rawType, "must be one of %s", chartTypeList())
	}

	spec := ChartSpec{entity: EntityTeam, window: DefaultWindow}

	if v, ok := lookup(d, "entity"); ok {
		e, isString := v.(string)
		if !isString {
			return ChartSpec{}, invalid("entity", v, "only %q is supported", EntityTeam)
		}
		spec.entity = e
	}

	if v, ok := lookup(d, "window"); ok {
		raw, isString := v.(string)
		if !isString {
			return ChartSpec{}, invalid("window", v, "must be a string such as SEASON or LAST_10")
		}
		w, err := NormalizeWindow(raw)
		if err != nil {
			return ChartSpec{}, err
		}
		spec.window = w
	}

	switch ChartType(typeName) {
	case ChartLeaderboard:
		lb := Leaderboard{Metric: DefaultMetric, TopN: DefaultTopN}
		if v, ok := lookup(d, "metric"); ok {
			m, err := metricValue("metric", v)
			if err != nil {
				return ChartSpec{}, err
			}
			lb.Metric = m
		}
		if v, ok := lookup(d, "top_n"); ok {
			n, err := intValue("top_n", v)
			if err != nil {
				return ChartSpec{}, err
			}
			lb.TopN = n
		}
		lb.Order = DefaultOrder(lb.Metric)
		if v, ok := lookup(d, "order"); ok {
			o, err := orderValue(v)
			if err != nil {
				return ChartSpec{}, err
			}
			lb.Order = o
		}
		spec.chart = lb
	case ChartScatter:
		sc := Scatter{X: DefaultXMetric, Y: DefaultYMetric}
		if v, ok := lookup(d, "x_metric"); ok {
			m, err := metricValue("x_metric", v)
			if err != nil {
				return ChartSpec{}, err
			}
			sc.X = m
		}
		if v, ok := lookup(d, "y_metric"); ok {
			m, err := metricValue("y_metric", v)
			if err != nil {
				return ChartSpec{}, err
			}
			sc.Y = m
		}
		spec.chart = sc
	case ChartCompare:
		v, _ := lookup(d, "teams")
		teams, err := teamsValue(v)
		if err != nil {
			return ChartSpec{}, err
		}
		spec.chart = Compare{Teams: teams}
	default:
		return ChartSpec{}, invalid("chart_type", typeName, "must be one of %s", chartTypeList())
	}

	if err := spec.Validate(); err != nil {
		return ChartSpec{}, err
	}
	return spec, nil
}

// lookup returns d[key], treating a nil value as absent.
func lookup(d map[string]any, key string) (any, bool) {
	v, ok := d[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func metricValue(field string, v any) (metrics.Metric, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid(field, v, "must be a metric name")
	}
	return metrics.Metric(s), nil
}

func intValue(field string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.Abs(n) > math.MaxInt32 {
			return 0, invalid(field, v, "must be a positive integer")
		}
		return int(n), nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, invalid(field, v, "must be a positive integer")
		}
		return intValue(field, f)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, invalid(field, v, "must be a positive integer")
		}
		return i, nil
	}
	return 0, invalid(field, v, "must be a positive integer")
}

func orderValue(v any) (Order, error) {
	s, ok := v.(string)
	if !ok {
		return "", invalid("order", v, "must be asc or desc")
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", invalid("order", v, "must be asc or desc")
}

// teamsValue accepts a list of strings or a comma-separated string. Names
// are trimmed, upper-cased and de-duplicated, keeping first occurrence order.
func teamsValue(v any) ([]string, error) {
	var raw []string
	switch t := v.(type) {
	case nil:
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, invalid("teams", item, "team abbreviations must be strings")
			}
			raw = append(raw, s)
		}
	case string:
		raw = strings.Split(t, ",")
	default:
		return nil, invalid("teams", v, "must be a list of team abbreviations")
	}

	seen := make(map[string]bool, len(raw))
	teams := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		teams = append(teams, s)
	}
	return teams, nil
}

// specJSON is the wire form of a ChartSpec.
type specJSON struct {
	ChartType ChartType `json:"chart_type"`
	Entity    string    `json:"entity"`
	Window    string    `json:"window"`
	Metric    string    `json:"metric,omitempty"`
	TopN      int       `json:"top_n,omitempty"`
	Order     Order     `json:"order,omitempty"`
	XMetric   string    `json:"x_metric,omitempty"`
	YMetric   string    `json:"y_metric,omitempty"`
	Teams     []string  `json:"teams,omitempty"`
}

// ToMap returns s as a dictionary that FromMap accepts unchanged.
func (s ChartSpec) ToMap() map[string]any {
	m := map[string]any{
		"chart_type": string(s.Type()),
		"entity":     s.entity,
		"window":     string(s.window),
	}
	switch c := s.chart.(type) {
	case Leaderboard:
		m["metric"] = string(c.Metric)
		m["top_n"] = c.TopN
		m["order"] = string(c.Order)
	case Scatter:
		m["x_metric"] = string(c.X)
		m["y_metric"] = string(c.Y)
	case Compare:
		m["teams"] = append([]string(nil), c.Teams...)
	}
	return m
}

// MarshalJSON encodes s with the same keys FromMap reads.
func (s ChartSpec) MarshalJSON() ([]byte, error) {
	out := specJSON{ChartType: s.Type(), Entity: s.entity, Window: string(s.window)}
	switch c := s.chart.(type) {
	case Leaderboard:
		out.Metric, out.TopN, out.Order = string(c.Metric), c.TopN, c.Order
	case Scatter:
		out.XMetric, out.YMetric = string(c.X), string(c.Y)
	case Compare:
		out.Teams = c.Teams
	case nil:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnhandledChart, c)
	}
	return json.Marshal(out)
}

func (s ChartSpec) String() string {
	switch c := s.chart.(type) {
	case Leaderboard:
		return fmt.Sprintf("leaderboard %s %s top %d (%s)", c.Metric, c.Order, c.TopN, s.window)
	case Scatter:
		return fmt.Sprintf("scatter %s vs %s (%s)", c.X, c.Y, s.window)
	case Compare:
		return fmt.Sprintf("compare %s (%s)", strings.Join(c.Teams, ", "), s.window)
	}
	return "invalid spec"
}
