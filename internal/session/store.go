// Package session persists conversation history in redis so multi-turn
// chats survive across requests. The tool dispatch core never sees this
// layer; conversation identifiers are opaque pass-through tokens.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"weather-agent/internal/llm"
)

// Store keeps a bounded, TTL-limited message list per conversation.
type Store struct {
	rdb         *redis.Client
	ttl         time.Duration
	maxMessages int64
}

// NewStore builds a Store. ttl <= 0 means histories never expire;
// maxMessages <= 0 means they are never trimmed.
func NewStore(rdb *redis.Client, ttl time.Duration, maxMessages int) *Store {
	return &Store{rdb: rdb, ttl: ttl, maxMessages: int64(maxMessages)}
}

func conversationKey(id string) string { return "conversation:" + id }

// History returns the stored messages for a conversation, oldest first.
// An unknown conversation yields an empty history, not an error.
func (s *Store) History(ctx context.Context, conversationID string) ([]llm.Message, error) {
	values, err := s.rdb.LRange(ctx, conversationKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", conversationID, err)
	}

	messages := make([]llm.Message, 0, len(values))
	for _, value := range values {
		var msg llm.Message
		if err := json.Unmarshal([]byte(value), &msg); err != nil {
			return nil, fmt.Errorf("corrupt message in conversation %s: %w", conversationID, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Append stores messages at the end of a conversation and refreshes its
// retention bounds.
func (s *Store) Append(ctx context.Context, conversationID string, messages ...llm.Message) error {
	if len(messages) == 0 {
		return nil
	}

	encoded := make([]interface{}, 0, len(messages))
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("encoding message for conversation %s: %w", conversationID, err)
		}
		encoded = append(encoded, data)
	}

	key := conversationKey(conversationID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, key, encoded...)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("appending to conversation %s: %w", conversationID, err)
	}
	return nil
}
