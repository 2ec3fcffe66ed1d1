// Package session хранит историю чата по ключу пользователя.
//
// Абстракция HistoryStore позволяет подменять backend: Redis
// с TTL для multi-process деплоя, in-memory для тестов и локальной
// разработки. In-memory вариант не переживает рестарт процесса.
package session

import (
	"context"
	"sync"
	"time"
)

// Message — одно сообщение в истории чата.
type Message struct {
	// Role — "user" или "assistant".
	Role string `json:"role"`

	// Text — текст сообщения.
	Text string `json:"text"`

	// CreatedAt — время сообщения.
	CreatedAt time.Time `json:"created_at"`
}

// HistoryStore — контракт хранилища истории чата.
type HistoryStore interface {
	// History возвращает историю для ключа (nil, если истории нет).
	History(ctx context.Context, userID int64) ([]Message, error)

	// Append добавляет сообщения в историю и продлевает её TTL.
	Append(ctx context.Context, userID int64, messages ...Message) error

	// Clear удаляет историю.
	Clear(ctx context.Context, userID int64) error
}

// MemoryStore — in-memory реализация HistoryStore.
// Single-process placeholder: подходит для тестов и локальной
// разработки, в production используется RedisStore.
type MemoryStore struct {
	mu      sync.RWMutex
	history map[int64][]Message
}

// NewMemoryStore создаёт новый MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history: make(map[int64][]Message),
	}
}

// History возвращает копию истории пользователя.
func (s *MemoryStore) History(_ context.Context, userID int64) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.history[userID]
	if !ok {
		return nil, nil
	}
	out := make([]Message, len(stored))
	copy(out, stored)
	return out, nil
}

// Append добавляет сообщения в историю.
func (s *MemoryStore) Append(_ context.Context, userID int64, messages ...Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[userID] = append(s.history[userID], messages...)
	return nil
}

// Clear удаляет историю пользователя.
func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, userID)
	return nil
}
