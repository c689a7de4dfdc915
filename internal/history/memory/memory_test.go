package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentbot/internal/domain"
)

func TestStorage_AppendLoadClear(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	require.NoError(t, s.Append(ctx, "c1", domain.ConversationTurn{Text: "hi", Sender: domain.SenderUser}))
	require.NoError(t, s.Append(ctx, "c1", domain.ConversationTurn{Text: "Hello!", Sender: domain.SenderAI}))
	require.NoError(t, s.Append(ctx, "c2", domain.ConversationTurn{Text: "other", Sender: domain.SenderUser}))

	turns, err := s.Load(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, domain.SenderUser, turns[0].Sender)
	assert.Equal(t, "Hello!", turns[1].Text)

	// returned slice is a copy
	turns[0].Text = "mutated"
	again, _ := s.Load(ctx, "c1")
	assert.Equal(t, "hi", again[0].Text)

	require.NoError(t, s.Clear(ctx, "c1"))
	turns, err = s.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	turns, _ = s.Load(ctx, "c2")
	assert.Len(t, turns, 1)
}

func TestStorage_ConcurrentConversations(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Append(ctx, id, domain.ConversationTurn{Text: fmt.Sprint(j)})
			}
		}(fmt.Sprintf("c%d", i))
	}
	wg.Wait()
	for i := 0; i < 8; i++ {
		turns, err := s.Load(ctx, fmt.Sprintf("c%d", i))
		require.NoError(t, err)
		require.Len(t, turns, 50)
		assert.Equal(t, "0", turns[0].Text)
		assert.Equal(t, "49", turns[49].Text)
	}
}
