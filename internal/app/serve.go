package app

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/server"
)

var (
	serveAddr     string
	serveSchedule string
	serveWarm     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve the query engine over HTTP:

  GET  /health               Liveness and default season
  GET  /api/metrics          Metric catalog and windows
  POST /api/query            Run a query dictionary
  POST /api/ask              Answer a plain-English question
  GET  /api/seasons          Known seasons
  GET  /api/seasons/{season} Summary of one season

Unless --file is used, the configured seasons are refetched on the refresh
schedule so requests are served from a warm cache.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
	serveCmd.Flags().StringVar(&serveSchedule, "refresh", "", `Cron schedule for cache refresh, e.g. "@every 30m" (default from config)`)
	serveCmd.Flags().BoolVar(&serveWarm, "warm", false, "Refresh the seasons once before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	addr := s.cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	schedule := s.cfg.Serve.RefreshSchedule
	if serveSchedule != "" {
		schedule = serveSchedule
	}

	if s.loader != nil && schedule != "" {
		seasons := s.cfg.Serve.Seasons
		if len(seasons) == 0 {
			seasons = []string{s.svc.DefaultSeason()}
		}
		job := &server.RefreshJob{Loader: s.loader, Seasons: seasons, Log: s.log}

		sched := server.NewScheduler(s.log)
		if err := sched.AddJob(schedule, job); err != nil {
			return err
		}
		if serveWarm {
			if err := sched.RunNow(job); err != nil {
				s.log.Warn().Err(err).Msg("initial refresh failed")
			}
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{Addr: addr, Log: s.log, Service: s.svc})
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
