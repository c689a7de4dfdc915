package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"intentbot/internal/domain"
)

var (
	askJSON           bool
	askConversationID string
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message and print the reply",
	Long: `Sends a single message through the assistant and prints the reply.
Pass --conversation to continue an existing conversation's history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the reply as JSON")
	askCmd.Flags().StringVar(&askConversationID, "conversation", "", "conversation ID to record the turn under (default: new)")
	rootCmd.AddCommand(askCmd)
}

// askResult is the JSON shape of a reply.
type askResult struct {
	ConversationID string  `json:"conversation_id"`
	Reply          string  `json:"reply"`
	Intent         string  `json:"intent,omitempty"`
	Phrase         string  `json:"phrase,omitempty"`
	Score          float64 `json:"score"`
	Fallback       bool    `json:"fallback"`
	Reason         string  `json:"reason,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	assistant, err := requireAssistant()
	if err != nil {
		return err
	}
	id := askConversationID
	if id == "" {
		id = uuid.NewString()
	}
	input := strings.Join(args, " ")

	reply, err := assistant.Reply(cmd.Context(), id, input)
	if err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	if askJSON {
		return outputAskJSON(cmd, id, reply)
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
	return nil
}

func outputAskJSON(cmd *cobra.Command, id string, reply domain.Reply) error {
	out := askResult{
		ConversationID: id,
		Reply:          reply.Text,
		Intent:         reply.Intent,
		Fallback:       reply.Fallback,
	}
	if reply.Match != nil {
		out.Phrase = reply.Match.Phrase
		out.Score = reply.Match.Score
	}
	if reply.Reason != nil {
		out.Reason = reply.Reason.Error()
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
