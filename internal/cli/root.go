// Package cli wires configuration and the assistant engine behind cobra commands.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"intentbot/internal/domain"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile string
	verbose bool
)

// Assistant is the subset of the engine the commands drive.
type Assistant interface {
	Reply(ctx context.Context, conversationID, input string) (domain.Reply, error)
	Explain(input string, topK int) ([]domain.Candidate, error)
	History(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)
}

// assistantService is built on first use by setupAssistant. Tests replace it.
var assistantService Assistant

// shutdown releases whatever setupAssistant acquired.
var shutdown = func() {}

var rootCmd = &cobra.Command{
	Use:   "intentbot",
	Short: "Rule-based conversational assistant",
	Long: `intentbot answers messages by matching them against a catalog of example
phrases with TF-IDF cosine similarity and filling a reply template from the
matched intent.

Running without a subcommand starts the interactive chat.`,
	SilenceUsage: true,
}

func init() {
	// Assigned here: setupAssistant inspects rootCmd itself.
	rootCmd.PersistentPreRunE = setupAssistant
	rootCmd.RunE = runChat
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to YAML config file (default ./intentbot.yaml or ~/.config/intentbot/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	shutdown()
	if err != nil {
		os.Exit(1)
	}
}

func requireAssistant() (Assistant, error) {
	if assistantService == nil {
		return nil, errors.New("assistant not configured")
	}
	return assistantService, nil
}
