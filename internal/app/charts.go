package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	chartWindow string
	lbMetric    string
	lbTop       int
	lbOrder     string
	scatterX    string
	scatterY    string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank teams by one metric",
	Long: `Rank teams by a metric over a window of recent games.

Without --order, teams are listed best first: descending for most metrics,
ascending for DRtg and TOV_RATE.

Examples:
  courtside leaderboard --metric NET_RTG --top 5
  courtside leaderboard --metric DRtg --window last_10`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

var scatterCmd = &cobra.Command{
	Use:   "scatter",
	Short: "Plot every team on two metrics",
	Args:  cobra.NoArgs,
	RunE:  runScatter,
}

var compareCmd = &cobra.Command{
	Use:   "compare TEAM [TEAM...]",
	Short: "Put selected teams side by side",
	Long: `Compare teams by abbreviation on every metric. With exactly two
teams a DIFF column shows which side leads.

Example:
  courtside compare BOS NYK --window last_5`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompare,
}

var queryCmd = &cobra.Command{
	Use:   "query JSON",
	Short: "Run a JSON query dictionary",
	Long: `Run a query given as a JSON object, or read it from stdin with "-".

Example:
  courtside query '{"chart_type":"scatter","x_metric":"ORtg","y_metric":"DRtg"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runQueryJSON,
}

func init() {
	for _, c := range []*cobra.Command{leaderboardCmd, scatterCmd, compareCmd} {
		c.Flags().StringVar(&chartWindow, "window", "", "SEASON, LAST_5, LAST_10 or LAST_20 (other last-N values snap)")
	}
	leaderboardCmd.Flags().StringVar(&lbMetric, "metric", "", "Metric to rank by (default NET_RTG)")
	leaderboardCmd.Flags().IntVar(&lbTop, "top", 10, "Number of teams to show")
	leaderboardCmd.Flags().StringVar(&lbOrder, "order", "", "asc or desc (default: best first)")
	scatterCmd.Flags().StringVar(&scatterX, "x", "ORtg", "Metric on the x axis")
	scatterCmd.Flags().StringVar(&scatterY, "y", "DRtg", "Metric on the y axis")

	rootCmd.AddCommand(leaderboardCmd, scatterCmd, compareCmd, queryCmd)
}

// setIfChanged copies a flag into the query dictionary only when the user set
// it, so omitted keys get the query defaults.
func setIfChanged(flags *pflag.FlagSet, d map[string]any, flag, key string, v any) {
	if flags.Changed(flag) {
		d[key] = v
	}
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	d := map[string]any{"chart_type": "leaderboard"}
	flags := cmd.Flags()
	setIfChanged(flags, d, "window", "window", chartWindow)
	setIfChanged(flags, d, "metric", "metric", lbMetric)
	setIfChanged(flags, d, "top", "top_n", lbTop)
	setIfChanged(flags, d, "order", "order", lbOrder)
	return runDict(cmd, d)
}

func runScatter(cmd *cobra.Command, args []string) error {
	d := map[string]any{"chart_type": "scatter", "x_metric": scatterX, "y_metric": scatterY}
	setIfChanged(cmd.Flags(), d, "window", "window", chartWindow)
	return runDict(cmd, d)
}

func runCompare(cmd *cobra.Command, args []string) error {
	var teams []string
	for _, a := range args {
		teams = append(teams, strings.Split(a, ",")...)
	}
	d := map[string]any{"chart_type": "compare", "teams": teams}
	setIfChanged(cmd.Flags(), d, "window", "window", chartWindow)
	return runDict(cmd, d)
}

func runQueryJSON(cmd *cobra.Command, args []string) error {
	var r io.Reader = strings.NewReader(args[0])
	if args[0] == "-" {
		r = cmd.InOrStdin()
	}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var d map[string]any
	if err := dec.Decode(&d); err != nil {
		return fmt.Errorf("parsing query JSON: %w", err)
	}
	return runDict(cmd, d)
}

func runDict(cmd *cobra.Command, d map[string]any) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	resp, err := s.svc.Query(cmd.Context(), d, "")
	if err != nil {
		return err
	}
	return s.printResponse(os.Stdout, resp)
}
