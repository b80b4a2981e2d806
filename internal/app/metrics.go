package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/metrics"
	"github.com/blackwell-systems/courtside/internal/output"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Describe the supported metrics",
	Long: `List every team metric courtside computes with its definition and
whether a higher or lower value is better. Ratings are per 100 possessions,
estimated as FGA - OREB + TOV + 0.44 * FTA.`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

// metricsOutput is the JSON-serializable output for the metrics command.
type metricsOutput struct {
	Metrics []metrics.Info `json:"metrics"`
	Windows []string       `json:"windows"`
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if _, _, err := loadConfig(); err != nil {
		return err
	}

	windows := make([]string, 0, len(metrics.Windows))
	for _, w := range metrics.Windows {
		windows = append(windows, string(w))
	}

	if flagJSON {
		return writeJSON(os.Stdout, metricsOutput{Metrics: metrics.All(), Windows: windows})
	}
	if err := output.RenderCatalog(os.Stdout, metrics.All()); err != nil {
		return err
	}
	fmt.Printf("\n %s %s\n", output.StyleMuted.Render("Windows:"), strings.Join(windows, ", "))
	return nil
}
