package nlquery

import (
	"regexp"
	"sort"
	"strings"
)

// team lists the names a question may use for one franchise. Abbreviations
// only match when written in upper case, so "was" or "min" in a sentence are
// not mistaken for Washington or Minnesota.
type team struct {
	abbr  string
	names []string
}

var teams = []team{
	{"ATL", []string{"hawks", "atlanta"}},
	{"BOS", []string{"celtics", "celts", "boston"}},
	{"BKN", []string{"nets", "brooklyn"}},
	{"CHA", []string{"hornets", "charlotte"}},
	{"CHI", []string{"bulls", "chicago"}},
	{"CLE", []string{"cavaliers", "cavs", "cleveland"}},
	{"DAL", []string{"mavericks", "mavs", "dallas"}},
	{"DEN", []string{"nuggets", "denver"}},
	{"DET", []string{"pistons", "detroit"}},
	{"GSW", []string{"warriors", "dubs", "golden state"}},
	{"HOU", []string{"rockets", "houston"}},
	{"IND", []string{"pacers", "indiana"}},
	{"LAC", []string{"clippers", "clips"}},
	{"LAL", []string{"lakers"}},
	{"MEM", []string{"grizzlies", "grizz", "memphis"}},
	{"MIA", []string{"heat", "miami"}},
	{"MIL", []string{"bucks", "milwaukee"}},
	{"MIN", []string{"timberwolves", "wolves", "minnesota"}},
	{"NOP", []string{"pelicans", "pels", "new orleans"}},
	{"NYK", []string{"knicks", "new york"}},
	{"OKC", []string{"thunder", "oklahoma city"}},
	{"ORL", []string{"magic", "orlando"}},
	{"PHI", []string{"76ers", "sixers", "philadelphia", "philly"}},
	{"PHX", []string{"suns", "phoenix"}},
	{"POR", []string{"trail blazers", "blazers", "portland"}},
	{"SAC", []string{"kings", "sacramento"}},
	{"SAS", []string{"spurs", "san antonio"}},
	{"TOR", []string{"raptors", "toronto"}},
	{"UTA", []string{"jazz", "utah"}},
	{"WAS", []string{"wizards", "washington"}},
}

type teamPattern struct {
	abbr string
	name *regexp.Regexp
	code *regexp.Regexp
}

var teamPatterns = func() []teamPattern {
	out := make([]teamPattern, len(teams))
	for i, t := range teams {
		quoted := make([]string, len(t.names))
		for j, n := range t.names {
			quoted[j] = strings.ReplaceAll(regexp.QuoteMeta(n), " ", `\s+`)
		}
		out[i] = teamPattern{
			abbr: t.abbr,
			name: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
			code: regexp.MustCompile(`\b` + t.abbr + `\b`),
		}
	}
	return out
}()

// Abbreviations returns the 30 team abbreviations in alphabetical order.
func Abbreviations() []string {
	out := make([]string, len(teams))
	for i, t := range teams {
		out[i] = t.abbr
	}
	return out
}

// findTeams returns the teams mentioned in text in order of first mention.
func findTeams(text string) []string {
	type hit struct {
		abbr string
		pos  int
	}
	var hits []hit
	for _, p := range teamPatterns {
		pos := -1
		for _, re := range []*regexp.Regexp{p.name, p.code} {
			if loc := re.FindStringIndex(text); loc != nil && (pos < 0 || loc[0] < pos) {
				pos = loc[0]
			}
		}
		if pos >= 0 {
			hits = append(hits, hit{p.abbr, pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.abbr
	}
	return out
}
