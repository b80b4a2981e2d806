package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/output"
	"github.com/blackwell-systems/courtside/internal/store"
)

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "List seasons and cached fetches",
	Args:  cobra.NoArgs,
	RunE:  runSeasons,
}

var seasonInfoCmd = &cobra.Command{
	Use:   "info [SEASON]",
	Short: "Summarise the games loaded for a season",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSeasonInfo,
}

func init() {
	seasonsCmd.AddCommand(seasonInfoCmd)
	rootCmd.AddCommand(seasonsCmd)
}

// seasonRow is the JSON form of one season in the listing.
type seasonRow struct {
	Season    string     `json:"season"`
	Cached    bool       `json:"cached"`
	Rows      int        `json:"rows,omitempty"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Fresh     bool       `json:"fresh"`
}

// latestFetches indexes the newest fetch of each season of one season type.
func latestFetches(fetches []store.Fetch, seasonType string) map[string]store.Fetch {
	latest := make(map[string]store.Fetch)
	for _, f := range fetches {
		if f.SeasonType != seasonType {
			continue
		}
		if cur, ok := latest[f.Season]; !ok || f.FetchedAt.After(cur.FetchedAt) {
			latest[f.Season] = f
		}
	}
	return latest
}

func runSeasons(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.requireLoader("seasons"); err != nil {
		return err
	}

	fetches, err := s.db.ListFetches()
	if err != nil {
		return fmt.Errorf("listing cache: %w", err)
	}
	latest := latestFetches(fetches, s.loader.SeasonType())
	now := time.Now()

	var rows []seasonRow
	for _, season := range feed.KnownSeasons(now) {
		row := seasonRow{Season: season}
		if f, ok := latest[season]; ok {
			at := f.FetchedAt
			row.Cached, row.Rows, row.FetchedAt = true, f.RowCount, &at
			row.Fresh = f.Age(now) < s.cfg.Cache.TTL
		}
		rows = append(rows, row)
	}

	if flagJSON {
		return writeJSON(os.Stdout, rows)
	}

	tbl := output.NewTable("SEASON", "ROWS", "FETCHED", "CACHE").AlignRight(1)
	for _, r := range rows {
		if !r.Cached {
			tbl.AddRow(r.Season, "", "", output.StyleMuted.Render("not cached"))
			continue
		}
		state := output.StyleSuccess.Render("fresh")
		if !r.Fresh {
			state = output.StyleWarning.Render("expired")
		}
		tbl.AddRow(r.Season, fmt.Sprint(r.Rows), r.FetchedAt.Local().Format("2006-01-02 15:04"), state)
	}
	fmt.Println(output.Section(fmt.Sprintf("Seasons (%s)", s.loader.SeasonType()), s.cfg.Output.Width-2))
	fmt.Println()
	tbl.Print()
	return nil
}

func runSeasonInfo(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	season := ""
	if len(args) == 1 {
		season = args[0]
	}
	info, err := s.svc.SeasonInfo(cmd.Context(), season)
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(os.Stdout, info)
	}

	fmt.Println(output.Section(fmt.Sprintf("%s %s", info.Season, info.SeasonType), s.cfg.Output.Width-2))
	fmt.Println()
	tbl := output.NewTable("ITEM", "VALUE")
	tbl.AddRow("Teams", fmt.Sprint(info.NumTeams))
	tbl.AddRow("Team games", fmt.Sprint(info.TotalTeamGames))
	if !info.FirstGame.IsZero() {
		tbl.AddRow("Dates", info.FirstGame.Format("2006-01-02")+" to "+info.LastGame.Format("2006-01-02"))
	}
	if !info.FetchedAt.IsZero() {
		tbl.AddRow("Fetched", info.FetchedAt.Local().Format("2006-01-02 15:04"))
	}
	if info.Stale {
		tbl.AddRow("Status", output.StyleWarning.Render("stale"))
	}
	tbl.Print()
	return nil
}
