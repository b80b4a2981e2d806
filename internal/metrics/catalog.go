package metrics

// Metric is the exact, case-sensitive name of a team metric.
type Metric string

// The supported team metrics. This set is the only allow-list in the system.
const (
	ORtg    Metric = "ORtg"
	DRtg    Metric = "DRtg"
	NetRtg  Metric = "NET_RTG"
	Pace    Metric = "PACE"
	PPG     Metric = "PPG"
	EFG     Metric = "eFG"
	TS      Metric = "TS"
	AstRate Metric = "AST_RATE"
	TovRate Metric = "TOV_RATE"
)

// Family groups metrics by how they are computed.
type Family int

const (
	// FamilyRating metrics need the opponent-paired possession path.
	FamilyRating Family = iota
	// FamilyBoxScore metrics come from a team's own box totals.
	FamilyBoxScore
)

// Format describes how a metric value is displayed.
type Format int

const (
	// FormatRating shows one decimal, e.g. 114.2.
	FormatRating Format = iota
	// FormatPercent shows a fraction as a percent, e.g. 55.1%.
	FormatPercent
	// FormatRate shows three decimals, e.g. 0.241.
	FormatRate
	// FormatPoints shows one decimal, e.g. 112.7.
	FormatPoints
)

// Info is the catalog entry for a metric.
type Info struct {
	Name           Metric `json:"name"`
	Label          string `json:"label"`
	Definition     string `json:"definition"`
	HigherIsBetter bool   `json:"higher_is_better"`
	Family         Family `json:"-"`
	Format         Format `json:"-"`
}

var catalog = []Info{
	{ORtg, "Offensive Rating", "Points scored per 100 team possessions", true, FamilyRating, FormatRating},
	{DRtg, "Defensive Rating", "Opponent points allowed per 100 team possessions", false, FamilyRating, FormatRating},
	{NetRtg, "Net Rating", "NET_RTG = ORtg - DRtg", true, FamilyRating, FormatRating},
	{Pace, "Pace", "Estimated possessions per 48 minutes", true, FamilyRating, FormatRating},
	{PPG, "Points Per Game", "Mean points scored per game", true, FamilyBoxScore, FormatPoints},
	{EFG, "Effective FG%", "(FGM + 0.5 * FG3M) / FGA", true, FamilyBoxScore, FormatPercent},
	{TS, "True Shooting %", "PTS / (2 * (FGA + 0.44 * FTA))", true, FamilyBoxScore, FormatPercent},
	{AstRate, "Assist Rate", "Assists per estimated possession", true, FamilyBoxScore, FormatRate},
	{TovRate, "Turnover Rate", "Turnovers per estimated possession", false, FamilyBoxScore, FormatRate},
}

var catalogIndex = func() map[Metric]int {
	idx := make(map[Metric]int, len(catalog))
	for i, info := range catalog {
		idx[info.Name] = i
	}
	return idx
}()

// All returns the catalog in canonical order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the supported metric names in canonical order.
func Names() []Metric {
	out := make([]Metric, len(catalog))
	for i, info := range catalog {
		out[i] = info.Name
	}
	return out
}

// Supported reports whether name is exactly one of the supported metrics.
func Supported(name string) bool {
	_, ok := catalogIndex[Metric(name)]
	return ok
}

// Lookup returns the catalog entry for m.
func Lookup(m Metric) (Info, bool) {
	i, ok := catalogIndex[m]
	if !ok {
		return Info{}, false
	}
	return catalog[i], true
}

// IsRating reports whether m belongs to the rating family (ORtg, DRtg, NET_RTG, PACE).
func (m Metric) IsRating() bool {
	info, ok := Lookup(m)
	return ok && info.Family == FamilyRating
}

// HigherIsBetter reports the metric's better direction. Unknown metrics
// default to higher-is-better.
func (m Metric) HigherIsBetter() bool {
	info, ok := Lookup(m)
	return !ok || info.HigherIsBetter
}

func (m Metric) String() string {
	return string(m)
}
