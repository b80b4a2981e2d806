package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/config"
	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/output"
	"github.com/blackwell-systems/courtside/internal/store"
)

var doctorOnline bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the courtside setup is healthy",
	Long: `Run a series of health checks against the configuration, the feed
cache and, with --online, the stats.nba.com feed. Prints a pass/fail line
for each check and a summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorOnline, "online", false, "Also fetch the default season from stats.nba.com")
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	season := defaultSeason(cfg)

	var checks []doctorCheck
	checks = append(checks, checkConfigFile(flagConfig))
	checks = append(checks, checkSeason(season))
	checks = append(checks, checkLogLevel(cfg.Log.Level))
	checks = append(checks, checkSchedule(cfg.Serve.RefreshSchedule))
	if flagFile != "" {
		checks = append(checks, checkGameLogFile(flagFile))
	} else {
		checks = append(checks, checkDataDir(cfg.DataDir))
		checks = append(checks, checkDatabase(cfg, season, time.Now())...)
		if doctorOnline {
			checks = append(checks, checkFeed(cmd.Context(), cfg, season, log))
		}
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(os.Stdout, doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Println(output.Section("Doctor", cfg.Output.Width-2))
	fmt.Println()

	for _, c := range checks {
		renderDoctorCheck(c)
	}

	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in effect. Running on
// defaults passes; a named file that does not exist fails.
func checkConfigFile(cfgFile string) doctorCheck {
	c := doctorCheck{Name: "Config file", Passed: true}
	path := cfgFile
	if path == "" {
		path = filepath.Join(config.ConfigDir(), "config.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		if cfgFile != "" {
			c.Passed = false
			c.Message = fmt.Sprintf("not found: %s", cfgFile)
			return c
		}
		c.Message = "none, using defaults"
		return c
	}
	c.Message = path
	return c
}

// checkSeason verifies that the default season label is well formed.
func checkSeason(season string) doctorCheck {
	norm, err := feed.NormalizeSeason(season)
	if err != nil {
		return doctorCheck{Name: "Default season", Message: err.Error()}
	}
	return doctorCheck{Name: "Default season", Passed: true, Message: norm}
}

// knownLevels are the level names logger.ParseLevel understands.
var knownLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "warning": true,
	"error": true, "disabled": true, "off": true,
}

// checkLogLevel fails on level names that would silently fall back to info.
func checkLogLevel(level string) doctorCheck {
	c := doctorCheck{Name: "Log level", Passed: true, Message: level}
	switch {
	case level == "":
		c.Message = "info"
	case !knownLevels[strings.ToLower(strings.TrimSpace(level))]:
		c.Passed = false
		c.Message = fmt.Sprintf("unknown level %q, using info", level)
	}
	return c
}

// checkSchedule verifies that the refresh schedule parses.
func checkSchedule(schedule string) doctorCheck {
	c := doctorCheck{Name: "Refresh schedule", Passed: true, Message: schedule}
	if schedule == "" {
		c.Message = "disabled"
		return c
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		c.Passed = false
		c.Message = err.Error()
	}
	return c
}

// checkGameLogFile verifies that a --file game log reads and derives.
func checkGameLogFile(path string) doctorCheck {
	c := doctorCheck{Name: "Game log file"}
	gameLog, err := feed.ReadCSVFile(path)
	if err != nil {
		c.Message = err.Error()
		return c
	}
	frame, err := metrics.Derive(gameLog)
	if err != nil {
		c.Message = err.Error()
		return c
	}
	c.Passed = true
	c.Message = fmt.Sprintf("%d team-games, %d teams", frame.Len(), len(frame.Teams()))
	return c
}

// checkDataDir verifies that the data directory exists or can be created.
func checkDataDir(dir string) doctorCheck {
	c := doctorCheck{Name: "Data directory", Message: dir}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.Message = err.Error()
		return c
	}
	tmp, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		c.Message = fmt.Sprintf("not writable: %s", dir)
		return c
	}
	name := tmp.Name()
	_ = tmp.Close()
	_ = os.Remove(name)
	c.Passed = true
	return c
}

// checkDatabase opens the cache and reports its schema and the age of the
// default season's newest fetch.
func checkDatabase(cfg *config.Config, season string, now time.Time) []doctorCheck {
	dbPath := cfg.DBPath()
	db, err := store.Open(dbPath)
	if err != nil {
		return []doctorCheck{{Name: "SQLite cache", Message: err.Error()}}
	}
	defer db.Close()

	version, err := db.SchemaVersion()
	if err != nil {
		return []doctorCheck{{Name: "SQLite cache", Message: err.Error()}}
	}
	checks := []doctorCheck{{
		Name:    "SQLite cache",
		Passed:  true,
		Message: fmt.Sprintf("%s (schema v%d)", dbPath, version),
	}}

	cached := doctorCheck{Name: "Cached season"}
	norm, err := feed.NormalizeSeason(season)
	if err != nil {
		cached.Message = err.Error()
		return append(checks, cached)
	}
	f, err := db.LatestFetch(norm, cfg.SeasonType)
	switch {
	case err != nil:
		cached.Message = err.Error()
	case f == nil:
		cached.Message = fmt.Sprintf("%s not cached (run 'courtside fetch %s')", norm, norm)
	default:
		age := f.Age(now).Round(time.Minute)
		cached.Passed = f.Age(now) < cfg.Cache.TTL
		cached.Message = fmt.Sprintf("%s, %d rows, fetched %s ago", norm, f.RowCount, age)
		if !cached.Passed {
			cached.Message += " (expired)"
		}
	}
	return append(checks, cached)
}

// checkFeed fetches the default season from the stats API without caching it.
func checkFeed(ctx context.Context, cfg *config.Config, season string, log zerolog.Logger) doctorCheck {
	c := doctorCheck{Name: "Stats feed"}
	client := feed.NewStatsClient(feed.ClientConfig{
		BaseURL:      cfg.StatsAPI.BaseURL,
		Timeout:      cfg.StatsAPI.Timeout,
		RequestDelay: cfg.StatsAPI.RequestDelay,
	}, log)
	start := time.Now()
	gameLog, err := client.FetchGameLog(ctx, season, cfg.SeasonType)
	if err != nil {
		c.Message = err.Error()
		return c
	}
	c.Passed = true
	c.Message = fmt.Sprintf("%s: %d rows in %s", client.Source(), len(gameLog.Rows), time.Since(start).Round(time.Millisecond))
	return c
}
