package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [conversation-id]",
	Short: "Print the recorded turns of a conversation",
	Long: `Prints the turns recorded under a conversation ID, oldest first.

Requires the Redis history store (history.type: redis). The in-memory store
is discarded when each intentbot process exits, so there is nothing to show.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}
	if historyBackend == "memory" {
		return errors.New("history requires the redis store (set history.type: redis); the in-memory store does not outlive a single run")
	}
	turns, err := assistant.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(turns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No turns recorded.")
		return nil
	}
	for _, t := range turns {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-4s %s\n", t.At.Format("2006-01-02 15:04:05"), t.Sender, t.Text)
	}
	return nil
}
