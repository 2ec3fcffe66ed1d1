package reconciler

import (
	"context"
	"errors"
	"testing"

	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/repo"
)

type fakePendingStore struct {
	pending  []domain.Request
	listErr  error
	failErrs map[int64]error // ошибки Fail по id
	failed   []int64
	failMsg  string
}

func (s *fakePendingStore) ListPending(_ context.Context, _ int, _ int) ([]domain.Request, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.pending, nil
}

func (s *fakePendingStore) Fail(_ context.Context, id int64, errorMsg string, _ *int64) (*domain.Request, error) {
	if err, ok := s.failErrs[id]; ok {
		return nil, err
	}
	s.failed = append(s.failed, id)
	s.failMsg = errorMsg
	return &domain.Request{ID: id, Status: domain.RequestStatusFailed}, nil
}

func TestSweep_FailsStaleRequests(t *testing.T) {
	store := &fakePendingStore{
		pending: []domain.Request{
			{ID: 1, Status: domain.RequestStatusPending},
			{ID: 2, Status: domain.RequestStatusPending},
		},
	}

	rec := New(Config{Store: store})

	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.failed) != 2 {
		t.Fatalf("expected 2 failed, got %d", len(store.failed))
	}
	if store.failMsg == "" {
		t.Error("fail message should be set")
	}
}

func TestSweep_EmptyBatch(t *testing.T) {
	store := &fakePendingStore{}
	rec := New(Config{Store: store})

	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.failed) != 0 {
		t.Error("nothing should be failed")
	}
}

func TestSweep_SkipsAlreadyTerminal(t *testing.T) {
	// Гонка: запись стала терминальной между ListPending и Fail.
	store := &fakePendingStore{
		pending: []domain.Request{
			{ID: 1, Status: domain.RequestStatusPending},
			{ID: 2, Status: domain.RequestStatusPending},
		},
		failErrs: map[int64]error{1: repo.ErrInvalidState},
	}

	rec := New(Config{Store: store})

	if err := rec.Sweep(context.Background()); err != nil {
		t.Fatalf("race with a terminal update is not an error: %v", err)
	}

	if len(store.failed) != 1 || store.failed[0] != 2 {
		t.Errorf("expected only request 2 failed, got %v", store.failed)
	}
}

func TestSweep_ListError(t *testing.T) {
	store := &fakePendingStore{listErr: errors.New("db down")}
	rec := New(Config{Store: store})

	if err := rec.Sweep(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
