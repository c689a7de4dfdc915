package history

import (
	"context"

	"intentbot/internal/domain"
)

// Store persists conversation turns in submission order.
type Store interface {
	Append(ctx context.Context, conversationID string, turn domain.ConversationTurn) error
	Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error)
	Clear(ctx context.Context, conversationID string) error
}
