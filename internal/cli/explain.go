package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var explainLimit int

var explainCmd = &cobra.Command{
	Use:   "explain [message]",
	Short: "Show the closest catalog phrases for a message",
	Long: `Ranks catalog phrases by cosine similarity to the message and prints the
top candidates with their scores and owning intents. Nothing is recorded.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	explainCmd.Flags().IntVarP(&explainLimit, "limit", "n", 5, "maximum number of candidates")
	rootCmd.AddCommand(explainCmd)
}

func runExplain(cmd *cobra.Command, args []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}
	candidates, err := assistant.Explain(strings.Join(args, " "), explainLimit)
	if err != nil {
		return fmt.Errorf("explain failed: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No candidates.")
		return nil
	}
	for i, c := range candidates {
		fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %.4f  %-12s %s\n", i+1, c.Score, c.Intent, c.Phrase)
	}
	return nil
}
