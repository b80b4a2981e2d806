package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/feed"
	"github.com/blackwell-systems/courtside/internal/output"
)

var (
	fetchAll      bool
	fetchForce    bool
	fetchParallel int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [SEASON...]",
	Short: "Download seasons into the cache",
	Long: `Download league game logs from stats.nba.com into the local cache.
Seasons with a fresh cached copy are skipped unless --force is given.

Examples:
  courtside fetch 2024-25 2023-24
  courtside fetch --all --force`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "Fetch every known season")
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "Refetch even when the cache is fresh")
	fetchCmd.Flags().IntVar(&fetchParallel, "parallel", 1, "Seasons fetched at once")
	rootCmd.AddCommand(fetchCmd)
}

// fetchOutput is the JSON form of one season's fetch result.
type fetchOutput struct {
	Season string `json:"season"`
	Rows   int    `json:"rows"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func fetchStatus(r feed.SeasonResult) string {
	switch {
	case r.Err != nil:
		return "error"
	case r.Stale:
		return "stale"
	case r.Cached:
		return "cached"
	default:
		return "fetched"
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.requireLoader("fetch"); err != nil {
		return err
	}

	seasons := args
	switch {
	case fetchAll:
		seasons = feed.KnownSeasons(time.Now())
	case len(seasons) == 0:
		seasons = []string{s.svc.DefaultSeason()}
	}

	results, err := feed.FetchSeasons(cmd.Context(), s.loader, seasons, fetchParallel, fetchForce)
	if err != nil {
		return err
	}

	failed := 0
	out := make([]fetchOutput, 0, len(results))
	for _, r := range results {
		o := fetchOutput{Season: r.Season, Rows: r.Rows, Status: fetchStatus(r)}
		if r.Err != nil {
			o.Error = r.Err.Error()
			failed++
		}
		out = append(out, o)
	}

	if flagJSON {
		if err := writeJSON(os.Stdout, out); err != nil {
			return err
		}
	} else {
		tbl := output.NewTable("SEASON", "ROWS", "STATUS").AlignRight(1)
		for _, o := range out {
			status := output.StyleSuccess.Render(o.Status)
			switch o.Status {
			case "error":
				status = output.StyleError.Render(o.Error)
			case "stale":
				status = output.StyleWarning.Render(o.Status)
			case "cached":
				status = output.StyleMuted.Render(o.Status)
			}
			tbl.AddRow(o.Season, fmt.Sprint(o.Rows), status)
		}
		fmt.Println(output.Section("Fetch", s.cfg.Output.Width-2))
		fmt.Println()
		tbl.Print()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d seasons failed", failed, len(results))
	}
	return nil
}
