// Package app contains the Cobra command tree for courtside.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/mcp"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
	mcp.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagFile    string
	flagSeason  string
)

var rootCmd = &cobra.Command{
	Use:   "courtside",
	Short: "NBA team metrics from the command line",
	Long: `courtside answers questions about NBA team performance. It pulls the
league game log from stats.nba.com, caches it in SQLite, derives possession
based metrics and renders leaderboards, scatter plots and team comparisons.

Run 'courtside' with no arguments to see the available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("courtside", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  leaderboard  Rank teams by one metric")
		fmt.Println("  scatter      Plot every team on two metrics")
		fmt.Println("  compare      Put selected teams side by side")
		fmt.Println("  query        Run a JSON query dictionary")
		fmt.Println("  ask          Ask a question in plain English")
		fmt.Println("  fetch        Download seasons into the cache")
		fmt.Println("  seasons      List seasons and cached fetches")
		fmt.Println("  metrics      Describe the supported metrics")
		fmt.Println("  doctor       Check configuration and cache health")
		fmt.Println("  serve        Run the HTTP API")
		fmt.Println("  mcp          Run an MCP stdio server")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/courtside/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "Read the game log from a CSV file instead of stats.nba.com")
	rootCmd.PersistentFlags().StringVar(&flagSeason, "season", "", "Season label such as 2024-25 (default: current season)")
}
