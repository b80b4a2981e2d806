package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/store"
)

// Fetcher downloads a season's team game log.
type Fetcher interface {
	FetchGameLog(ctx context.Context, season, seasonType string) (metrics.GameLog, error)
	Source() string
}

// LoaderConfig controls caching. Zero values take the defaults.
type LoaderConfig struct {
	SeasonType   string
	TTL          time.Duration
	StaleOnError bool
	// Keep is how many fetches per season survive pruning.
	Keep int
	// FetchTimeout bounds a shared fetch, which outlives the caller that
	// started it.
	FetchTimeout time.Duration
}

// Loader defaults.
const (
	DefaultTTL          = time.Hour
	DefaultKeep         = 3
	DefaultFetchTimeout = 2 * time.Minute
)

// Snapshot is a loaded season.
type Snapshot struct {
	Season     string
	SeasonType string
	Log        metrics.GameLog
	// Fetch is the stored copy served, nil when the loader has no store.
	Fetch *store.Fetch
	// Cached is set when the log came from the store without a new fetch.
	Cached bool
	// Stale is set when a refresh failed and an expired copy was served.
	Stale bool
}

// Loader serves seasons from the store while they are fresh and fetches
// them from the source otherwise. Concurrent loads of one season share a
// single fetch.
type Loader struct {
	db      *store.DB
	fetcher Fetcher
	cfg     LoaderConfig
	log     zerolog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewLoader returns a loader backed by db. A nil db disables caching.
func NewLoader(db *store.DB, fetcher Fetcher, cfg LoaderConfig, log zerolog.Logger) *Loader {
	if cfg.SeasonType == "" {
		cfg.SeasonType = DefaultSeasonType
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Keep <= 0 {
		cfg.Keep = DefaultKeep
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Loader{
		db:      db,
		fetcher: fetcher,
		cfg:     cfg,
		log:     log.With().Str("component", "feed").Logger(),
		now:     time.Now,
	}
}

// SetClock replaces the loader's clock.
func (l *Loader) SetClock(now func() time.Time) {
	l.now = now
}

// SeasonType returns the season type the loader requests.
func (l *Loader) SeasonType() string {
	return l.cfg.SeasonType
}

// Load returns the season's game log, from the store when the newest copy is
// younger than the TTL.
func (l *Loader) Load(ctx context.Context, season string) (*Snapshot, error) {
	return l.load(ctx, season, false)
}

// Refresh fetches the season from the source regardless of the cache.
func (l *Loader) Refresh(ctx context.Context, season string) (*Snapshot, error) {
	return l.load(ctx, season, true)
}

// LoadFrame loads a season and derives it.
func (l *Loader) LoadFrame(ctx context.Context, season string) (*metrics.Frame, *Snapshot, error) {
	snap, err := l.Load(ctx, season)
	if err != nil {
		return nil, nil, err
	}
	f, err := metrics.Derive(snap.Log)
	if err != nil {
		return nil, nil, err
	}
	return f, snap, nil
}

func (l *Loader) load(ctx context.Context, season string, force bool) (*Snapshot, error) {
	season, err := NormalizeSeason(season)
	if err != nil {
		return nil, err
	}
	log := l.log.With().Str("season", season).Str("season_type", l.cfg.SeasonType).Logger()

	var latest *store.Fetch
	if l.db != nil {
		latest, err = l.db.LatestFetch(season, l.cfg.SeasonType)
		if err != nil {
			return nil, fmt.Errorf("reading cache: %w", err)
		}
	}
	if latest != nil && !force && latest.Age(l.now()) < l.cfg.TTL {
		log.Debug().Int64("fetch_id", latest.ID).Dur("age", latest.Age(l.now())).Msg("serving cached season")
		return l.fromStore(season, latest, false)
	}

	// The shared fetch outlives the caller that started it; each caller
	// stops waiting on its own ctx.
	ch := l.group.DoChan(season+"|"+l.cfg.SeasonType, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.cfg.FetchTimeout)
		defer cancel()
		return l.fetch(fctx, season)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		if latest != nil && l.cfg.StaleOnError && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).
				Int64("fetch_id", latest.ID).
				Time("fetched_at", latest.FetchedAt).
				Msg("fetch failed, serving stale cached season")
			return l.fromStore(season, latest, true)
		}
		return nil, err
	}
	if shared {
		log.Debug().Msg("joined in-flight fetch")
	}
	snap := *v.(*Snapshot)
	return &snap, nil
}

func (l *Loader) fetch(ctx context.Context, season string) (*Snapshot, error) {
	gl, err := l.fetcher.FetchGameLog(ctx, season, l.cfg.SeasonType)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", season, err)
	}
	if len(gl.Rows) == 0 {
		return nil, fmt.Errorf("fetching %s: %w", season, ErrNoData)
	}
	snap := &Snapshot{Season: season, SeasonType: l.cfg.SeasonType, Log: gl}
	if l.db == nil {
		return snap, nil
	}

	id, err := l.db.SaveGameLog(season, l.cfg.SeasonType, l.fetcher.Source(), l.now(), gl)
	if err != nil {
		return nil, fmt.Errorf("caching %s: %w", season, err)
	}
	snap.Fetch, err = l.db.GetFetch(id)
	if err != nil {
		return nil, err
	}
	removed, err := l.db.PruneFetches(season, l.cfg.SeasonType, l.cfg.Keep)
	if err != nil {
		l.log.Warn().Err(err).Str("season", season).Msg("pruning cached fetches")
	}
	l.log.Info().
		Str("season", season).
		Int("rows", len(gl.Rows)).
		Int64("fetch_id", id).
		Int64("pruned", removed).
		Msg("fetched season")
	return snap, nil
}

func (l *Loader) fromStore(season string, f *store.Fetch, stale bool) (*Snapshot, error) {
	gl, err := l.db.LoadGameLog(f.ID)
	if err != nil {
		return nil, fmt.Errorf("loading cached %s: %w", season, err)
	}
	return &Snapshot{
		Season:     season,
		SeasonType: f.SeasonType,
		Log:        gl,
		Fetch:      f,
		Cached:     true,
		Stale:      stale,
	}, nil
}
