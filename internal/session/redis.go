package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultTTL — срок жизни истории чата.
const defaultTTL = 24 * time.Hour

// RedisStore — Redis-реализация HistoryStore с TTL.
// Ключ: history:<user_id>, значение — JSON-массив сообщений.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт новый RedisStore.
// ttl <= 0 означает TTL по умолчанию (24 часа).
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// key возвращает Redis-ключ истории пользователя.
func key(userID int64) string {
	return fmt.Sprintf("history:%d", userID)
}

// History возвращает историю пользователя.
func (s *RedisStore) History(ctx context.Context, userID int64) ([]Message, error) {
	data, err := s.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	return messages, nil
}

// Append добавляет сообщения и продлевает TTL.
func (s *RedisStore) Append(ctx context.Context, userID int64, messages ...Message) error {
	existing, err := s.History(ctx, userID)
	if err != nil {
		return err
	}

	combined := append(existing, messages...)
	data, err := json.Marshal(combined)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := s.client.Set(ctx, key(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Clear удаляет историю пользователя.
func (s *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
