package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server",
	Long: `Start a Model Context Protocol stdio server so an assistant can query
team metrics. The server exposes four tools:

  run_query     Run a leaderboard, scatter or compare query dictionary
  ask           Answer a plain-English question about team metrics
  list_metrics  Supported metrics and windows
  season_info   Teams, games and dates of a loaded season

Add to an MCP client configuration:
  {"mcpServers":{"courtside":{"command":"courtside","args":["mcp"]}}}

Logs go to stderr; stdout carries only protocol messages.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcp.NewServer(s.svc, s.log)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
