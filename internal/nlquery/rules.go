package nlquery

import "regexp"

// scopeRule rejects questions the engine cannot answer. Patterns match whole
// words, case-insensitively.
type scopeRule struct {
	pattern *regexp.Regexp
	message string
}

func rule(pattern, message string) scopeRule {
	return scopeRule{regexp.MustCompile(`(?i)\b(?:` + pattern + `)\b`), message}
}

const (
	tryWindows  = "Try: 'Top 10 teams by net rating over the last 10 games'"
	tryTeams    = "Try: 'Compare Celtics and Lakers' or 'Top teams by offensive rating'"
	tryMetrics  = "Use built-in metrics: NET_RTG, ORtg, DRtg, PACE, PPG, eFG, TS, AST_RATE, TOV_RATE"
	tryShooting = "Try eFG or TS for shooting efficiency, e.g. 'shooting landscape'"
)

var scopeRules = []scopeRule{
	// custom date ranges
	rule(`since|after|before`, "Custom date ranges are not supported. Use SEASON, LAST_5, LAST_10 or LAST_20. "+tryWindows),
	rule(`christmas|thanksgiving|all[- ]star break|january|february|march|april|june|october|november|december`,
		"Calendar filters are not supported. Use SEASON or a last-N games window. "+tryWindows),

	// situational splits
	rule(`clutch|crunch time|close games?|garbage time`, "Situational filters are not supported. "+tryWindows),
	rule(`(?:1st|2nd|3rd|4th|first|second|third|fourth)\s+quarter|quarters?|halftime|first half|second half|overtime`,
		"Quarter and half splits are not available. Try overall team metrics like NET_RTG or ORtg."),
	rule(`home games?|road games?|away games?|on the road`, "Home and away splits are not supported. "+tryWindows),

	// live data and predictions
	rule(`live|real[- ]time|right now|tonight`, "Live data is not available; only completed games are analyzed. "+tryWindows),
	rule(`predict\w*|forecast\w*|projections?|will|odds|betting`, "Predictions are not supported; only historical performance is shown."),

	// players
	rule(`players?|starters?|bench|rookies?|mvp|lebron|curry|jokic|giannis|embiid|tatum|doncic`,
		"Player-level statistics are not supported; only team metrics are available. "+tryTeams),

	// spatial and event data
	rule(`shot charts?|shot locations?|hot zones?`, "Shot location data is not supported. "+tryShooting),
	rule(`play[- ]by[- ]play|lineups?|on/off`, "Play-by-play and lineup data are not available; metrics come from team box scores."),

	// single games
	rule(`game on|box score|final score|who won|last night`,
		"Individual game results are not supported. Try PPG or NET_RTG over a window."),

	// postseason
	rule(`playoffs?|postseason|finals|play[- ]in`, "Postseason filters are not supported; regular season data only."),

	// custom math
	rule(`custom|formulas?|my own|weighted|adjusted`, "Custom formulas are not supported. "+tryMetrics),
}

// checkScope returns the message of the first rule the question breaks.
func checkScope(text string) (string, bool) {
	for _, r := range scopeRules {
		if r.pattern.MatchString(text) {
			return r.message, true
		}
	}
	return "", false
}
