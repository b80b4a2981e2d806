package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/courtside/internal/config"
	"github.com/blackwell-systems/courtside/internal/engine"
	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/logger"
	"github.com/blackwell-systems/courtside/internal/output"
	"github.com/blackwell-systems/courtside/internal/store"
)

// session holds what one command invocation needs. db and loader are nil in
// --file mode.
type session struct {
	cfg    *config.Config
	log    zerolog.Logger
	db     *store.DB
	loader *feed.Loader
	svc    *engine.Service
}

// loadConfig reads configuration and applies the global output flags.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("loading config: %w", err)
	}
	output.AutoColor(os.Stdout, cfg.Output.Color && !flagNoColor)

	lc := logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}
	if flagVerbose {
		lc.Level = "debug"
	}
	return cfg, logger.New(lc), nil
}

// defaultSeason picks --season, then the configured season, then the
// season in progress.
func defaultSeason(cfg *config.Config) string {
	if flagSeason != "" {
		return flagSeason
	}
	if cfg.Season != "" {
		return cfg.Season
	}
	return feed.CurrentSeason(time.Now())
}

// openSession wires config, logging, the cache and the engine.
func openSession() (*session, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: log}
	season := defaultSeason(cfg)

	if flagFile != "" {
		gameLog, err := feed.ReadCSVFile(flagFile)
		if err != nil {
			return nil, err
		}
		static, err := feed.NewStatic(season, cfg.SeasonType, gameLog)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", flagFile, err)
		}
		log.Debug().Str("file", flagFile).Int("rows", len(gameLog.Rows)).Msg("loaded game log file")
		s.svc = engine.New(static, season, log)
		return s, nil
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	s.db = db
	client := feed.NewStatsClient(feed.ClientConfig{
		BaseURL:      cfg.StatsAPI.BaseURL,
		Timeout:      cfg.StatsAPI.Timeout,
		RequestDelay: cfg.StatsAPI.RequestDelay,
	}, log)
	s.loader = feed.NewLoader(db, client, feed.LoaderConfig{
		SeasonType:   cfg.SeasonType,
		TTL:          cfg.Cache.TTL,
		StaleOnError: cfg.Cache.StaleOnError,
		Keep:         cfg.Cache.Keep,
	}, log)
	s.svc = engine.New(s.loader, season, log)
	return s, nil
}

// Close releases the cache.
func (s *session) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// requireLoader fails in --file mode, where there is no feed to fetch from.
func (s *session) requireLoader(cmd string) error {
	if s.loader == nil {
		return fmt.Errorf("%s needs the stats.nba.com feed and cannot be used with --file", cmd)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printResponse writes a query response as JSON or as a rendered chart.
func (s *session) printResponse(w io.Writer, resp *engine.Response) error {
	if flagJSON {
		return writeJSON(w, resp)
	}
	if err := output.RenderResult(w, resp.Result, output.Options{Width: s.cfg.Output.Width, Title: resp.Season}); err != nil {
		return err
	}
	if resp.Stale {
		_, err := fmt.Fprintf(w, "\n %s\n", output.StyleWarning.Render("Showing cached data: the stats feed could not be reached."))
		return err
	}
	return nil
}
