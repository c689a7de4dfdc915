package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	goredis "github.com/redis/go-redis/v9"

	"intentbot/internal/domain"
)

// DefaultKeyPrefix namespaces conversation lists.
const DefaultKeyPrefix = "conversation:"

// Config holds connection details for the Redis history store.
type Config struct {
	URL       string
	KeyPrefix string
	TTL       time.Duration
}

// Storage keeps each conversation as a Redis list of JSON-encoded turns.
type Storage struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// Open parses cfg.URL, connects and verifies the server responds.
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewStorage(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewStorage wraps an existing client. A zero ttl keeps conversations forever.
func NewStorage(client *goredis.Client, prefix string, ttl time.Duration) *Storage {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Storage{client: client, prefix: prefix, ttl: ttl}
}

func (s *Storage) key(conversationID string) string {
	return s.prefix + conversationID
}

// Append pushes the turn and refreshes the conversation TTL.
func (s *Storage) Append(ctx context.Context, conversationID string, turn domain.ConversationTurn) error {
	data, err := sonic.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}
	key := s.key(conversationID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context, conversationID string) ([]domain.ConversationTurn, error) {
	raw, err := s.client.LRange(ctx, s.key(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return decodeTurns(raw)
}

func (s *Storage) Clear(ctx context.Context, conversationID string) error {
	return s.client.Del(ctx, s.key(conversationID)).Err()
}

// Close releases the client.
func (s *Storage) Close() error {
	return s.client.Close()
}

func decodeTurns(raw []string) ([]domain.ConversationTurn, error) {
	turns := make([]domain.ConversationTurn, 0, len(raw))
	for i, item := range raw {
		var turn domain.ConversationTurn
		if err := sonic.UnmarshalString(item, &turn); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn %d: %w", i, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
