package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/mq"
	"github.com/sijin77/my-ml-app/internal/repo"
)

// --- Фейковые коллабораторы ---

type fakeStore struct {
	created  *domain.Request
	record   *domain.Request // текущее состояние записи
	failErr  error           // ошибка Fail (для проверки best-effort)
	failMsgs []string
}

func (s *fakeStore) Create(_ context.Context, req *domain.Request) error {
	req.ID = 1
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	s.created = req
	clone := *req
	s.record = &clone
	return nil
}

func (s *fakeStore) Complete(_ context.Context, id int64, outputData string, metrics *string, executionTimeMs *int64, cost float64) (*domain.Request, error) {
	if s.record == nil || s.record.ID != id {
		return nil, repo.ErrNotFound
	}
	if err := s.record.MarkCompleted(outputData, metrics, executionTimeMs, cost); err != nil {
		return nil, repo.ErrInvalidState
	}
	return s.record, nil
}

func (s *fakeStore) Fail(_ context.Context, id int64, errorMsg string, executionTimeMs *int64) (*domain.Request, error) {
	s.failMsgs = append(s.failMsgs, errorMsg)
	if s.failErr != nil {
		return nil, s.failErr
	}
	if s.record == nil || s.record.ID != id {
		return nil, repo.ErrNotFound
	}
	if err := s.record.MarkFailed(errorMsg, executionTimeMs); err != nil {
		return nil, repo.ErrInvalidState
	}
	return s.record, nil
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (*domain.Request, error) {
	if s.record == nil || s.record.ID != id {
		return nil, repo.ErrNotFound
	}
	return s.record, nil
}

type fakeModels struct {
	model *domain.Model
	err   error
}

func (m *fakeModels) GetByID(_ context.Context, id int64) (*domain.Model, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.model, nil
}

type fakeQueue struct {
	reply   *mq.Reply
	err     error
	called  bool
	payload mq.JobPayload
	timeout time.Duration
}

func (q *fakeQueue) Call(_ context.Context, payload mq.JobPayload, timeout time.Duration) (*mq.Reply, error) {
	q.called = true
	q.payload = payload
	q.timeout = timeout
	if q.err != nil {
		return nil, q.err
	}
	return q.reply, nil
}

func newTestOrchestrator(store *fakeStore, queue *fakeQueue) *Orchestrator {
	return New(Config{
		Requests: store,
		Models:   &fakeModels{model: &domain.Model{ID: 1, Name: "echo", CostPerRequest: 0.01}},
		Queue:    queue,
	})
}

// --- Тесты ---

func TestProcessPredictionRequest_Success(t *testing.T) {
	execMs := int64(120)
	store := &fakeStore{}
	queue := &fakeQueue{reply: &mq.Reply{
		Success:         true,
		OutputData:      "hi there",
		ExecutionTimeMs: &execMs,
	}}

	orch := newTestOrchestrator(store, queue)

	record, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", domain.RequestTypePrediction, 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Status != domain.RequestStatusCompleted {
		t.Errorf("expected completed, got %s", record.Status)
	}
	if record.OutputData == nil || *record.OutputData != "hi there" {
		t.Error("output data not recorded")
	}
	if record.ExecutionTimeMs == nil || *record.ExecutionTimeMs != 120 {
		t.Error("execution time not recorded")
	}
	// Стоимость берётся из модели, не из захардкоженной константы
	if record.Cost != 0.01 {
		t.Errorf("expected cost 0.01, got %f", record.Cost)
	}

	// Запись создана до вызова очереди
	if store.created == nil {
		t.Fatal("record was not created")
	}
	if store.created.Status != domain.RequestStatusPending {
		t.Errorf("record should be created pending, got %s", store.created.Status)
	}
	if queue.payload.Text != "hello" {
		t.Errorf("unexpected payload %q", queue.payload.Text)
	}
	if queue.timeout != 30*time.Second {
		t.Errorf("unexpected timeout %v", queue.timeout)
	}
}

func TestProcessPredictionRequest_WorkerFailure(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{reply: &mq.Reply{
		Success: false,
		Error:   "model exploded",
	}}

	orch := newTestOrchestrator(store, queue)

	record, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", domain.RequestTypePrediction, 0)
	if err != nil {
		t.Fatalf("worker failure is not a caller error, got: %v", err)
	}

	if record.Status != domain.RequestStatusFailed {
		t.Errorf("expected failed, got %s", record.Status)
	}
	if record.OutputData != nil {
		t.Error("failed record must not have output data")
	}
	if record.OutputMetrics == nil || *record.OutputMetrics != "model exploded" {
		t.Error("error text not recorded in metrics")
	}
	if record.Cost != 0 {
		t.Error("failure must not set cost")
	}
}

func TestProcessPredictionRequest_WorkerFailureWithoutMessage(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{reply: &mq.Reply{Success: false}}

	orch := newTestOrchestrator(store, queue)

	record, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.OutputMetrics == nil || *record.OutputMetrics != "Unknown error" {
		t.Error("empty worker error should default to \"Unknown error\"")
	}
}

func TestProcessPredictionRequest_QueueTimeout(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{err: mq.ErrTimeout}

	orch := newTestOrchestrator(store, queue)

	_, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", domain.RequestTypePrediction, time.Second)
	if !errors.Is(err, mq.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	// Запись доведена до терминального статуса, не брошена pending
	if store.record.Status != domain.RequestStatusFailed {
		t.Errorf("expected failed, got %s", store.record.Status)
	}
}

func TestProcessPredictionRequest_QueueErrorStoreFailure(t *testing.T) {
	// Если терминальная запись не записалась, исходная ошибка очереди
	// всё равно возвращается вызывающему.
	store := &fakeStore{failErr: errors.New("db down")}
	queue := &fakeQueue{err: mq.ErrConnection}

	orch := newTestOrchestrator(store, queue)

	_, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", domain.RequestTypePrediction, time.Second)
	if !errors.Is(err, mq.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}

	if len(store.failMsgs) != 1 {
		t.Errorf("expected one Fail attempt, got %d", len(store.failMsgs))
	}
}

func TestProcessPredictionRequest_Validation(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}
	orch := newTestOrchestrator(store, queue)

	cases := []struct {
		name        string
		userID      int64
		modelID     int64
		input       string
		requestType domain.RequestType
		want        error
	}{
		{"empty input", 1, 1, "", domain.RequestTypePrediction, ErrEmptyInput},
		{"zero user", 0, 1, "hello", domain.RequestTypePrediction, ErrValidation},
		{"negative model", 1, -1, "hello", domain.RequestTypePrediction, ErrValidation},
		{"unknown type", 1, 1, "hello", domain.RequestType("batch"), ErrValidation},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orch.ProcessPredictionRequest(context.Background(), tc.userID, tc.modelID, tc.input, tc.requestType, 0)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// Валидация происходит до любых побочных эффектов
	if store.created != nil {
		t.Error("validation failure must not create a record")
	}
	if queue.called {
		t.Error("validation failure must not call the queue")
	}
}

func TestProcessPredictionRequest_ModelNotFound(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{}

	orch := New(Config{
		Requests: store,
		Models:   &fakeModels{err: repo.ErrNotFound},
		Queue:    queue,
	})

	_, err := orch.ProcessPredictionRequest(context.Background(), 1, 42, "hello", domain.RequestTypePrediction, 0)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if store.created != nil {
		t.Error("missing model must not create a record")
	}
	if queue.called {
		t.Error("missing model must not call the queue")
	}
}

func TestProcessPredictionRequest_DefaultType(t *testing.T) {
	store := &fakeStore{}
	queue := &fakeQueue{reply: &mq.Reply{Success: true, OutputData: "ok"}}

	orch := newTestOrchestrator(store, queue)

	if _, err := orch.ProcessPredictionRequest(context.Background(), 1, 1, "hello", "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.created.Type != domain.RequestTypePrediction {
		t.Errorf("empty request type should default to prediction, got %s", store.created.Type)
	}
}

func TestGetRequest(t *testing.T) {
	store := &fakeStore{record: &domain.Request{ID: 7, Status: domain.RequestStatusCompleted}}
	orch := newTestOrchestrator(store, &fakeQueue{})

	record, err := orch.GetRequest(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.ID != 7 {
		t.Errorf("expected id 7, got %d", record.ID)
	}

	if _, err := orch.GetRequest(context.Background(), 8); !errors.Is(err, repo.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
