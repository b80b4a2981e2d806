package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

var windowAliases = map[string]metrics.Window{
	"SEASON":         metrics.Season,
	"FULL_SEASON":    metrics.Season,
	"FULL":           metrics.Season,
	"YTD":            metrics.Season,
	"SEASON_TO_DATE": metrics.Season,
	"ALL":            metrics.Season,
	"ALL_GAMES":      metrics.Season,
}

var wordNumbers = map[string]int{
	"ONE": 1, "TWO": 2, "THREE": 3, "FOUR": 4, "FIVE": 5,
	"SIX": 6, "SEVEN": 7, "EIGHT": 8, "NINE": 9, "TEN": 10,
	"ELEVEN": 11, "TWELVE": 12, "FIFTEEN": 15, "TWENTY": 20, "THIRTY": 30,
}

var (
	separators  = regexp.MustCompile(`[\s\-_]+`)
	lastNDigits = regexp.MustCompile(`^(?:LAST_?|L)(\d+)(?:_?GAMES?)?$`)
	lastNWords  = regexp.MustCompile(`^LAST_?([A-Z]+?)(?:_?GAMES?)?$`)
)

// NormalizeWindow maps a loosely spelled window ("last 10", "L10",
// "LAST_TEN", "last-10", "full season") to a supported window. Case is
// ignored and hyphens, spaces and underscores are interchangeable. A last-N
// form with an unsupported N snaps to a bucket; see SnapWindow.
func NormalizeWindow(raw string) (metrics.Window, error) {
	s := strings.Trim(separators.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), "_"), "_")
	if s == "" {
		return "", invalid("window", nil, "must not be empty")
	}
	if w, ok := windowAliases[s]; ok {
		return w, nil
	}

	n, ok := 0, false
	if m := lastNDigits.FindStringSubmatch(s); m != nil {
		v, err := strconv.Atoi(m[1])
		if err != nil {
			// too many digits for an int: still a last-N window
			v = math.MaxInt
		}
		n, ok = v, true
	} else if m := lastNWords.FindStringSubmatch(s); m != nil {
		n, ok = wordNumbers[m[1]]
	}
	if !ok {
		return "", invalid("window", raw, "unsupported window; use SEASON, LAST_5, LAST_10 or LAST_20")
	}
	return SnapWindow(n), nil
}

// SnapWindow maps a last-N game count to the supported bucket:
// N <= 5 is LAST_5, N <= 10 is LAST_10, anything larger is LAST_20.
func SnapWindow(n int) metrics.Window {
	switch {
	case n <= 5:
		return metrics.Last5
	case n <= 10:
		return metrics.Last10
	default:
		return metrics.Last20
	}
}
