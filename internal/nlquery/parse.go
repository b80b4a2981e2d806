package nlquery

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/query"
)

// metricPhrase maps wording to a metric. Longer phrases come first so that
// "net rating" wins over a bare "rating".
type metricPhrase struct {
	pattern *regexp.Regexp
	metric  metrics.Metric
}

func phrase(pattern string, m metrics.Metric) metricPhrase {
	return metricPhrase{regexp.MustCompile(`(?i)\b(?:` + pattern + `)(?:\b|$)`), m}
}

var metricPhrases = []metricPhrase{
	phrase(`net\s+rating|net\s*rtg|net_rtg|point\s+differential|net`, metrics.NetRtg),
	phrase(`offensive\s+rating|ortg|offen[cs]es?|offensive|best\s+attacks?`, metrics.ORtg),
	phrase(`defensive\s+rating|drtg|defen[cs]es?|defensive`, metrics.DRtg),
	phrase(`pace|tempo|fastest|slowest|possessions\s+per\s+(?:game|48)`, metrics.Pace),
	phrase(`ppg|points\s+per\s+game|points|scoring`, metrics.PPG),
	phrase(`efg%?|effective\s+field\s+goal(?:\s+(?:percentage|pct|%))?`, metrics.EFG),
	phrase(`true\s+shooting(?:\s+(?:percentage|pct|%))?|ts%?`, metrics.TS),
	phrase(`ast_rate|assist\s+rate|assists?|passing`, metrics.AstRate),
	phrase(`tov_rate|turnover\s+rate|turnovers?|ball\s+security`, metrics.TovRate),
}

var (
	seasonLong  = regexp.MustCompile(`\b(20\d{2})\s*[-/]\s*(20\d{2})\b`)
	seasonShort = regexp.MustCompile(`\b(20\d{2})\s*[-/ ]\s*(\d{2})\b`)

	lastNWindow  = regexp.MustCompile(`(?i)\blast\s+(\d+|[a-z]+)(?:\s+games?)?\b`)
	shortWindow  = regexp.MustCompile(`(?i)\bl(\d+)\b`)
	topNBefore   = regexp.MustCompile(`(?i)\b(?:top|best|worst|bottom)\s+(\d+|[a-z]+)\b`)
	topNAfter    = regexp.MustCompile(`(?i)\b(\d+)\s+(?:best|worst|top|bottom|highest|lowest)\b`)
	compareWords = regexp.MustCompile(`(?i)\b(?:compare|comparison|vs\.?|versus|against|head[- ]to[- ]head)\b`)
	scatterWords = regexp.MustCompile(`(?i)\b(?:scatter|plot|landscape|chart\w*|map|quadrants?)\b`)
	versusWords  = regexp.MustCompile(`(?i)\b(?:vs\.?|versus|against|and)\b`)
	shootingWord = regexp.MustCompile(`(?i)\bshooting\b`)
	efficiency   = regexp.MustCompile(`(?i)\befficiency\b`)
	rankingWords = regexp.MustCompile(`(?i)\b(?:top|best|worst|bottom|rank\w*|leaders?|leaderboard|teams?|highest|lowest|most|fewest|league)\b`)

	worstWords   = regexp.MustCompile(`(?i)\b(?:worst|bottom)\b`)
	bestWords    = regexp.MustCompile(`(?i)\b(?:best|top|leading)\b`)
	lowestWords  = regexp.MustCompile(`(?i)\b(?:lowest|fewest|least|slowest)\b`)
	highestWords = regexp.MustCompile(`(?i)\b(?:highest|most|fastest)\b`)
)

var smallNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7,
	"eight": 8, "nine": 9, "ten": 10, "twelve": 12, "fifteen": 15, "twenty": 20,
}

func number(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	n, ok := smallNumbers[strings.ToLower(s)]
	return n, ok
}

// Parse translates a question into an Outcome. It never guesses a missing
// team or a second scatter axis; it asks instead.
func Parse(text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return clarify("What would you like to see? For example 'Top 10 teams by net rating' or 'Compare Celtics and Lakers'.")
	}

	season := extractSeason(text)
	// season labels contain digits the window and top-N rules must not see
	rest := seasonLong.ReplaceAllString(text, " ")
	rest = seasonShort.ReplaceAllString(rest, " ")

	if msg, out := checkScope(rest); out {
		return Outcome{Kind: KindOutOfScope, Message: msg, Season: season}
	}

	mentioned := findMetrics(rest)
	found := findTeams(rest)

	q := map[string]any{"window": extractWindow(rest)}
	if season != "" {
		q["season"] = season
	}

	switch {
	case len(found) >= 2:
		q["chart_type"] = string(query.ChartCompare)
		q["teams"] = found

	case compareWords.MatchString(rest) && len(mentioned) < 2:
		if len(found) == 1 {
			return clarify(fmt.Sprintf("Which team should %s be compared with?", found[0]))
		}
		return clarify("Which teams should be compared? Name at least two, e.g. 'Compare Celtics and Lakers'.")

	case scatterWords.MatchString(rest) || (len(mentioned) >= 2 && versusWords.MatchString(rest)):
		q["chart_type"] = string(query.ChartScatter)
		switch {
		case len(mentioned) >= 2:
			q["x_metric"], q["y_metric"] = string(mentioned[0]), string(mentioned[1])
		case len(mentioned) == 1:
			return clarify(fmt.Sprintf("Which metric should be plotted against %s?", mentioned[0]))
		case shootingWord.MatchString(rest):
			q["x_metric"], q["y_metric"] = string(metrics.EFG), string(metrics.TS)
		default:
			q["x_metric"], q["y_metric"] = string(metrics.ORtg), string(metrics.DRtg)
		}

	default:
		q["chart_type"] = string(query.ChartLeaderboard)
		var m metrics.Metric
		switch {
		case len(mentioned) > 0:
			m = mentioned[0]
		case efficiency.MatchString(rest) || rankingWords.MatchString(rest):
			m = query.DefaultMetric
		default:
			return clarify("Which metric would you like to rank teams by? (e.g. NET_RTG, ORtg, DRtg, PACE, eFG)")
		}
		q["metric"] = string(m)
		if n, ok := extractTopN(rest); ok {
			q["top_n"] = n
		}
		if o, ok := extractOrder(rest, m); ok {
			q["order"] = string(o)
		}
	}

	return Outcome{Kind: KindQuery, Query: q, Season: season}
}

func clarify(msg string) Outcome {
	return Outcome{Kind: KindClarify, Message: msg}
}

// extractSeason finds a season label such as "2023-24", "2023-2024" or
// "2023/24" and returns it as YYYY-YY.
func extractSeason(text string) string {
	if m := seasonLong.FindStringSubmatch(text); m != nil {
		return m[1] + "-" + m[2][2:]
	}
	if m := seasonShort.FindStringSubmatch(text); m != nil {
		return m[1] + "-" + m[2]
	}
	return ""
}

// extractWindow returns a window string for query.NormalizeWindow. Counts
// other than 5, 10 and 20 are left for normalization to snap.
func extractWindow(text string) string {
	if m := lastNWindow.FindStringSubmatch(text); m != nil {
		if n, ok := number(m[1]); ok {
			return "LAST_" + strconv.Itoa(n)
		}
	}
	if m := shortWindow.FindStringSubmatch(text); m != nil {
		return "LAST_" + m[1]
	}
	return string(metrics.Season)
}

func extractTopN(text string) (int, bool) {
	if m := topNBefore.FindStringSubmatch(text); m != nil {
		if n, ok := number(m[1]); ok {
			return n, true
		}
	}
	if m := topNAfter.FindStringSubmatch(text); m != nil {
		if n, ok := number(m[1]); ok {
			return n, true
		}
	}
	return 0, false
}

// extractOrder maps ranking words to a sort order. "best" and "worst" follow
// the metric's better direction; "highest" and "lowest" are numeric. No
// ranking word leaves the order to query.DefaultOrder.
func extractOrder(text string, m metrics.Metric) (query.Order, bool) {
	best := query.DefaultOrder(m)
	worst := query.Asc
	if best == query.Asc {
		worst = query.Desc
	}
	switch {
	case lowestWords.MatchString(text):
		return query.Asc, true
	case highestWords.MatchString(text):
		return query.Desc, true
	case worstWords.MatchString(text):
		return worst, true
	case bestWords.MatchString(text):
		return best, true
	}
	return "", false
}

// findMetrics returns the distinct metrics mentioned in text, in order of
// first mention. Overlapping phrases count once.
func findMetrics(text string) []metrics.Metric {
	type hit struct {
		metric     metrics.Metric
		start, end int
	}
	var hits []hit
	for _, p := range metricPhrases {
		for _, loc := range p.pattern.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{p.metric, loc[0], loc[1]})
		}
	}
	// earliest first; at the same start the longer phrase wins
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].start != hits[j].start {
			return hits[i].start < hits[j].start
		}
		return hits[i].end > hits[j].end
	})

	var out []metrics.Metric
	seen := make(map[metrics.Metric]bool)
	covered := -1
	for _, h := range hits {
		if h.start < covered {
			continue
		}
		covered = h.end
		if !seen[h.metric] {
			seen[h.metric] = true
			out = append(out, h.metric)
		}
	}
	return out
}
