package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/mq"
	"github.com/sijin77/my-ml-app/internal/telemetry"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// RecordStore — контракт хранилища записей о запросах.
// Реализуется repo.RequestRepo.
type RecordStore interface {
	// Create создаёт запись; ErrNotFound, если пользователь/модель не существуют.
	Create(ctx context.Context, req *domain.Request) error

	// Complete переводит запись в completed с результатом.
	Complete(ctx context.Context, id int64, outputData string, metrics *string, executionTimeMs *int64, cost float64) (*domain.Request, error)

	// Fail переводит запись в failed с текстом ошибки.
	Fail(ctx context.Context, id int64, errorMsg string, executionTimeMs *int64) (*domain.Request, error)

	// GetByID возвращает запись по ID.
	GetByID(ctx context.Context, id int64) (*domain.Request, error)
}

// ModelStore — контракт каталога моделей (источник cost_per_request).
type ModelStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Model, error)
}

// QueueClient — контракт RPC-клиента очереди.
// Реализуется mq.RPCClient.
type QueueClient interface {
	Call(ctx context.Context, payload mq.JobPayload, timeout time.Duration) (*mq.Reply, error)
}

// Orchestrator — сага одного prediction-запроса.
type Orchestrator struct {
	requests RecordStore
	models   ModelStore
	queue    QueueClient

	timeout time.Duration
	logger  *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	Requests RecordStore
	Models   ModelStore
	Queue    QueueClient

	// Timeout — таймаут ожидания ответа по умолчанию (default: 30s).
	Timeout time.Duration

	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		requests: cfg.Requests,
		models:   cfg.Models,
		queue:    cfg.Queue,
		timeout:  timeout,
		logger:   logger,
	}
}

// ProcessPredictionRequest обрабатывает один запрос к ML-модели:
//
//  1. Валидирует вход (ошибка — до каких-либо записей в БД).
//  2. Создаёт запись в статусе pending. Ошибка создания (нет такого
//     пользователя или модели) останавливает операцию без побочных эффектов.
//  3. Отправляет задание в очередь и ждёт ответ не дольше timeout.
//  4. Успешный ответ → запись completed с результатом, метриками,
//     временем выполнения и стоимостью model.CalculateCost(1).
//  5. Ответ с ошибкой → запись failed, текст ошибки в output_metrics;
//     вызывающему возвращается failed-запись без ошибки.
//  6. Ошибка очереди (timeout/connection/прочее) → best-effort перевод
//     записи в failed, затем исходная ошибка возвращается вызывающему.
//     Если терминальная запись сама не записалась, это логируется,
//     но исходная ошибка всё равно возвращается (запись может остаться
//     pending — остаточный риск, который добирает reconciler).
//
// Ровно один Create и максимум один терминальный Update на вызов.
func (o *Orchestrator) ProcessPredictionRequest(ctx context.Context, userID, modelID int64, inputData string, requestType domain.RequestType, timeout time.Duration) (*domain.Request, error) {
	start := time.Now()
	defer func() { requestDuration.Observe(time.Since(start).Seconds()) }()

	if timeout <= 0 {
		timeout = o.timeout
	}
	if requestType == "" {
		requestType = domain.RequestTypePrediction
	}

	if err := validateInput(userID, modelID, inputData, requestType); err != nil {
		return nil, err
	}

	// Модель загружается до создания записи: она источник стоимости,
	// и её отсутствие — NotFound без побочных эффектов.
	model, err := o.models.GetByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	req := &domain.Request{
		UserID:    userID,
		ModelID:   modelID,
		Type:      requestType,
		InputData: inputData,
		Status:    domain.RequestStatusPending,
	}
	if err := o.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	logger := telemetry.WithRequestID(o.logger, req.ID)
	logger.Info("request created",
		"user_id", userID,
		"model_id", modelID,
		"request_type", requestType,
	)

	reply, err := o.queue.Call(ctx, mq.JobPayload{Text: inputData}, timeout)
	if err != nil {
		return nil, o.handleQueueError(ctx, logger, req.ID, err)
	}

	if reply.Success {
		return o.handleSuccessReply(ctx, logger, req.ID, model, reply)
	}
	return o.handleFailedReply(ctx, logger, req.ID, reply)
}

// GetRequest возвращает запись о запросе по ID.
func (o *Orchestrator) GetRequest(ctx context.Context, id int64) (*domain.Request, error) {
	return o.requests.GetByID(ctx, id)
}

// validateInput проверяет корректность входных данных.
func validateInput(userID, modelID int64, inputData string, requestType domain.RequestType) error {
	if inputData == "" {
		return ErrEmptyInput
	}
	if userID <= 0 || modelID <= 0 {
		return ErrValidation
	}
	if !requestType.Valid() {
		return ErrValidation
	}
	return nil
}

// handleSuccessReply доводит запись до completed.
func (o *Orchestrator) handleSuccessReply(ctx context.Context, logger *slog.Logger, requestID int64, model *domain.Model, reply *mq.Reply) (*domain.Request, error) {
	cost := model.CalculateCost(1)
	metrics := marshalMetrics(reply.Metrics)

	req, err := o.requests.Complete(ctx, requestID, reply.OutputData, metrics, reply.ExecutionTimeMs, cost)
	if err != nil {
		return nil, err
	}

	requestsTotal.WithLabelValues(outcomeCompleted).Inc()
	logger.Info("request completed",
		"cost", cost,
		"execution_time_ms", reply.ExecutionTimeMs,
	)
	return req, nil
}

// handleFailedReply доводит запись до failed по ответу воркера.
// Ошибка воркера — не ошибка оркестрации: вызывающий получает
// failed-запись без error.
func (o *Orchestrator) handleFailedReply(ctx context.Context, logger *slog.Logger, requestID int64, reply *mq.Reply) (*domain.Request, error) {
	errorMsg := reply.Error
	if errorMsg == "" {
		errorMsg = "Unknown error"
	}

	req, err := o.requests.Fail(ctx, requestID, errorMsg, reply.ExecutionTimeMs)
	if err != nil {
		return nil, err
	}

	requestsTotal.WithLabelValues(outcomeFailed).Inc()
	logger.Info("request failed by worker", "error", errorMsg)
	return req, nil
}

// handleQueueError — best-effort перевод записи в failed перед
// пробросом ошибки очереди вызывающему.
func (o *Orchestrator) handleQueueError(ctx context.Context, logger *slog.Logger, requestID int64, queueErr error) error {
	requestsTotal.WithLabelValues(classifyOutcome(queueErr)).Inc()
	logger.Error("queue call failed", "error", queueErr)

	// Терминальную запись пишем даже если исходный контекст отменён
	failCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		failCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	if _, err := o.requests.Fail(failCtx, requestID, queueErr.Error(), nil); err != nil {
		// Запись могла остаться pending — логируем, исходную ошибку не глотаем
		logger.Error("failed to mark request as failed",
			"original_error", queueErr,
			"store_error", err,
		)
	}
	return queueErr
}

// classifyOutcome сопоставляет ошибку очереди с label метрики.
func classifyOutcome(err error) string {
	switch {
	case errors.Is(err, mq.ErrTimeout):
		return outcomeTimeout
	case errors.Is(err, mq.ErrConnection):
		return outcomeConnection
	default:
		return outcomeFailed
	}
}

// marshalMetrics сериализует метрики воркера в текст для output_metrics.
func marshalMetrics(metrics map[string]any) *string {
	if metrics == nil {
		metrics = map[string]any{}
	}
	data, err := json.Marshal(metrics)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
