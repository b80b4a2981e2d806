package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/courtside/internal/nlquery"
	"github.com/blackwell-systems/courtside/internal/output"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION",
	Short: "Ask a question in plain English",
	Long: `Translate a plain-English question into a query and run it. Questions
outside what the metrics can answer get an explanation instead.

Examples:
  courtside ask "top 5 defenses over the last 10 games"
  courtside ask "compare the Celtics and Knicks in 2023-24"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	question := strings.Join(args, " ")
	ans, err := s.svc.Ask(cmd.Context(), question, flagSeason)
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(os.Stdout, ans)
	}

	switch ans.Outcome {
	case nlquery.KindClarify:
		fmt.Printf(" %s\n", output.StyleWarning.Render(ans.Message))
		return nil
	case nlquery.KindOutOfScope:
		fmt.Printf(" %s\n", output.StyleError.Render("Can't answer that."))
		fmt.Printf(" %s\n", output.StyleMuted.Render(ans.Message))
		return nil
	}

	fmt.Printf(" %s %s\n\n", output.StyleMuted.Render("Query:"), ans.Result.Result.Spec)
	return s.printResponse(os.Stdout, ans.Result)
}
