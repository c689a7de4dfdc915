package memory

import (
	"context"
	"sync"

	"intentbot/internal/domain"
)

// Storage keeps conversations in process memory.
type Storage struct {
	mu            sync.RWMutex
	conversations map[string][]domain.ConversationTurn
}

func NewStorage() *Storage {
	return &Storage{conversations: make(map[string][]domain.ConversationTurn)}
}

func (s *Storage) Append(_ context.Context, conversationID string, turn domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationID] = append(s.conversations[conversationID], turn)
	return nil
}

// Load returns a copy of the conversation; unknown IDs yield an empty history.
func (s *Storage) Load(_ context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.conversations[conversationID]
	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *Storage) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}
