package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/courtside/internal/config"
	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/store"
)

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"leaderboard": false, "scatter": false, "compare": false, "query": false,
		"ask": false, "fetch": false, "seasons": false, "metrics": false,
		"doctor": false, "serve": false, "mcp": false,
	}
	for _, cmd := range rootCmd.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s subcommand not registered on rootCmd", name)
		}
	}
}

func TestCheckSeason(t *testing.T) {
	if c := checkSeason("2024-2025"); !c.Passed || c.Message != "2024-25" {
		t.Errorf("checkSeason(2024-2025) = %+v", c)
	}
	if c := checkSeason("2024"); c.Passed {
		t.Error("checkSeason(2024) should fail")
	}
}

func TestCheckLogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "WARN", "off"} {
		if c := checkLogLevel(level); !c.Passed {
			t.Errorf("checkLogLevel(%q) failed: %s", level, c.Message)
		}
	}
	if c := checkLogLevel("loud"); c.Passed {
		t.Error("checkLogLevel(loud) should fail")
	}
}

func TestCheckSchedule(t *testing.T) {
	tests := map[string]bool{
		"":           true,
		"@every 30m": true,
		"@hourly":    true,
		"0 6 * * *":  true,
		"every hour": false,
		"61 * * * *": false,
	}
	for schedule, want := range tests {
		if c := checkSchedule(schedule); c.Passed != want {
			t.Errorf("checkSchedule(%q).Passed = %v, want %v (%s)", schedule, c.Passed, want, c.Message)
		}
	}
}

func TestCheckConfigFile(t *testing.T) {
	if c := checkConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); c.Passed {
		t.Error("an explicit missing config file should fail")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("season: 2023-24\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c := checkConfigFile(path); !c.Passed || c.Message != path {
		t.Errorf("checkConfigFile = %+v", c)
	}
}

func TestCheckGameLogFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	csv := "GAME_ID,GAME_DATE,TEAM_ABBREVIATION,WL,PTS,FGM,FGA,FG3M,FTA,OREB,TOV,AST,MIN\n" +
		"G1,2024-10-22,BOS,W,110,40,85,14,20,10,12,25,240\n" +
		"G1,2024-10-22,NYK,L,104,38,88,11,18,9,14,21,240\n"
	if err := os.WriteFile(good, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	c := checkGameLogFile(good)
	if !c.Passed {
		t.Fatalf("checkGameLogFile failed: %s", c.Message)
	}
	if c.Message != "2 team-games, 2 teams" {
		t.Errorf("Message = %q", c.Message)
	}

	if c := checkGameLogFile(filepath.Join(dir, "missing.csv")); c.Passed {
		t.Error("missing file should fail")
	}
}

func TestCheckDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{DataDir: dir, DBName: "test.db", SeasonType: "Regular Season"}
	cfg.Cache.TTL = time.Hour
	now := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

	checks := checkDatabase(cfg, "2024-25", now)
	if len(checks) != 2 {
		t.Fatalf("got %d checks, want 2", len(checks))
	}
	if !checks[0].Passed {
		t.Errorf("cache check failed: %s", checks[0].Message)
	}
	if checks[1].Passed || !strings.Contains(checks[1].Message, "not cached") {
		t.Errorf("season check = %+v", checks[1])
	}

	db, err := store.Open(cfg.DBPath())
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2024, time.October, 22, 0, 0, 0, 0, time.UTC)
	gameLog := metrics.GameLog{Rows: []metrics.TeamGameRow{
		{GameID: "G1", GameDate: day, TeamAbbreviation: "BOS", WL: "W", PTS: 110},
		{GameID: "G1", GameDate: day, TeamAbbreviation: "NYK", WL: "L", PTS: 104},
	}}
	if _, err := db.SaveGameLog("2024-25", "Regular Season", "test", now.Add(-10*time.Minute), gameLog); err != nil {
		t.Fatal(err)
	}
	db.Close()

	checks = checkDatabase(cfg, "2024-25", now)
	if !checks[1].Passed {
		t.Errorf("fresh fetch should pass: %s", checks[1].Message)
	}
	checks = checkDatabase(cfg, "2024-25", now.Add(2*time.Hour))
	if checks[1].Passed || !strings.Contains(checks[1].Message, "expired") {
		t.Errorf("old fetch should be expired: %+v", checks[1])
	}
}

func TestLatestFetches(t *testing.T) {
	t0 := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	fetches := []store.Fetch{
		{ID: 1, Season: "2024-25", SeasonType: "Regular Season", FetchedAt: t0},
		{ID: 2, Season: "2024-25", SeasonType: "Regular Season", FetchedAt: t0.Add(time.Hour)},
		{ID: 3, Season: "2024-25", SeasonType: "Playoffs", FetchedAt: t0.Add(2 * time.Hour)},
		{ID: 4, Season: "2023-24", SeasonType: "Regular Season", FetchedAt: t0},
	}
	got := latestFetches(fetches, "Regular Season")
	if len(got) != 2 {
		t.Fatalf("got %d seasons, want 2", len(got))
	}
	if got["2024-25"].ID != 2 {
		t.Errorf("2024-25 latest = %d, want 2", got["2024-25"].ID)
	}
}

func TestFetchStatus(t *testing.T) {
	if s := fetchStatus(feedResult(false, false, nil)); s != "fetched" {
		t.Errorf("status = %q", s)
	}
	if s := fetchStatus(feedResult(true, false, nil)); s != "cached" {
		t.Errorf("status = %q", s)
	}
	if s := fetchStatus(feedResult(true, true, nil)); s != "stale" {
		t.Errorf("status = %q", s)
	}
	if s := fetchStatus(feedResult(false, false, os.ErrNotExist)); s != "error" {
		t.Errorf("status = %q", s)
	}
}

func feedResult(cached, stale bool, err error) feed.SeasonResult {
	return feed.SeasonResult{Season: "2024-25", Cached: cached, Stale: stale, Err: err}
}
