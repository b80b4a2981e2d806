package feed

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// FirstKnownSeason is the start year of the oldest season offered by KnownSeasons.
const FirstKnownSeason = 2016

// ErrInvalidSeason is returned for a season label that is not YYYY-YY.
var ErrInvalidSeason = errors.New("invalid season")

var seasonPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2}|\d{4})$`)

// CurrentSeason returns the label of the season in progress at now. A season
// starts in October.
func CurrentSeason(now time.Time) string {
	start := now.Year()
	if now.Month() < time.October {
		start--
	}
	return seasonLabel(start)
}

func seasonLabel(start int) string {
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// NormalizeSeason returns the YYYY-YY label for s. It accepts YYYY-YY and
// YYYY-YYYY and requires consecutive years.
func NormalizeSeason(s string) (string, error) {
	m := seasonPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w %q: want YYYY-YY", ErrInvalidSeason, s)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	want := start + 1
	if len(m[2]) == 2 {
		want %= 100
	}
	if end != want {
		return "", fmt.Errorf("%w %q: years are not consecutive", ErrInvalidSeason, s)
	}
	return seasonLabel(start), nil
}

// KnownSeasons lists seasons from the current one back to FirstKnownSeason,
// newest first.
func KnownSeasons(now time.Time) []string {
	current := now.Year()
	if now.Month() < time.October {
		current--
	}
	var out []string
	for y := current; y >= FirstKnownSeason; y-- {
		out = append(out, seasonLabel(y))
	}
	return out
}

// SeasonInfo describes the games available for a season.
type SeasonInfo struct {
	Season     string `json:"season"`
	SeasonType string `json:"season_type"`
	metrics.Summary
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Stale     bool      `json:"stale,omitempty"`
}

// Describe summarises a loaded season.
func Describe(snap *Snapshot, f *metrics.Frame) SeasonInfo {
	info := SeasonInfo{
		Season:     snap.Season,
		SeasonType: snap.SeasonType,
		Summary:    f.Summary(),
		Stale:      snap.Stale,
	}
	if snap.Fetch != nil {
		info.FetchedAt = snap.Fetch.FetchedAt
	}
	return info
}

// SeasonResult is the outcome of fetching one season.
type SeasonResult struct {
	Season string
	Rows   int
	Cached bool
	Stale  bool
	Err    error
}

// FetchSeasons loads several seasons concurrently, at most limit at a time.
// With force set every season is fetched from the source. A failed season is
// reported in its result and does not stop the others; the returned error is
// set only when ctx ends.
func FetchSeasons(ctx context.Context, l *Loader, seasons []string, limit int, force bool) ([]SeasonResult, error) {
	results := make([]SeasonResult, len(seasons))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, season := range seasons {
		g.Go(func() error {
			load := l.Load
			if force {
				load = l.Refresh
			}
			res := SeasonResult{Season: season}
			snap, err := load(gctx, season)
			if err != nil {
				res.Err = err
			} else {
				res.Season = snap.Season
				res.Rows = len(snap.Log.Rows)
				res.Cached = snap.Cached
				res.Stale = snap.Stale
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}
