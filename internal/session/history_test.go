package session

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_AppendAndHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Пустая история — не ошибка
	history, err := store.History(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d messages", len(history))
	}

	now := time.Now()
	err = store.Append(ctx, 1,
		Message{Role: "user", Text: "hello", CreatedAt: now},
		Message{Role: "assistant", Text: "hi there", CreatedAt: now},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err = store.History(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Error("message order not preserved")
	}
}

func TestMemoryStore_IsolatedPerUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Append(ctx, 1, Message{Role: "user", Text: "from user 1"})
	store.Append(ctx, 2, Message{Role: "user", Text: "from user 2"})

	history, _ := store.History(ctx, 1)
	if len(history) != 1 || history[0].Text != "from user 1" {
		t.Error("histories of different users must be isolated")
	}
}

func TestMemoryStore_Clear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Append(ctx, 1, Message{Role: "user", Text: "hello"})

	if err := store.Clear(ctx, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, _ := store.History(ctx, 1)
	if len(history) != 0 {
		t.Error("history should be empty after clear")
	}
}

func TestMemoryStore_HistoryReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	store.Append(ctx, 1, Message{Role: "user", Text: "original"})

	history, _ := store.History(ctx, 1)
	history[0].Text = "mutated"

	again, _ := store.History(ctx, 1)
	if again[0].Text != "original" {
		t.Error("History must return a copy, not internal state")
	}
}
