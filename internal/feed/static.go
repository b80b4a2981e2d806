package feed

import (
	"context"

	"github.com/blackwell-systems/courtside/internal/metrics"
)

// Static serves one game log, such as a CSV file, for whatever season is
// asked for.
type Static struct {
	frame *metrics.Frame
	snap  *Snapshot
}

// NewStatic derives log once and labels it with season.
func NewStatic(season, seasonType string, log metrics.GameLog) (*Static, error) {
	f, err := metrics.Derive(log)
	if err != nil {
		return nil, err
	}
	if seasonType == "" {
		seasonType = DefaultSeasonType
	}
	return &Static{
		frame: f,
		snap:  &Snapshot{Season: season, SeasonType: seasonType, Log: log, Cached: true},
	}, nil
}

// LoadFrame returns the static frame. The season argument is ignored.
func (s *Static) LoadFrame(ctx context.Context, _ string) (*metrics.Frame, *Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	snap := *s.snap
	return s.frame, &snap, nil
}
