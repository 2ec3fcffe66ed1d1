package domain

import (
	"errors"
	"time"
)

// ErrInvalidTransition — попытка недопустимого перехода статуса
// (например, перевод терминальной записи обратно в pending).
var ErrInvalidTransition = errors.New("invalid status transition")

// Request — запись о запросе к ML-модели на протяжении всего жизненного цикла.
//
// Создаётся оркестратором в статусе pending до отправки задания в очередь
// и доводится до терминального статуса (completed/failed) после получения
// ответа — или ошибки — от очереди. Запись никогда не удаляется
// оркестратором, политика хранения внешняя.
type Request struct {
	// ID — идентификатор записи, назначается БД при создании.
	ID int64 `json:"id"`

	// UserID — ссылка на пользователя, от имени которого выполнен запрос.
	UserID int64 `json:"user_id"`

	// ModelID — ссылка на ML-модель.
	ModelID int64 `json:"model_id"`

	// Type — тип запроса: prediction или custom.
	Type RequestType `json:"request_type"`

	// InputData — входные данные в текстовом формате.
	InputData string `json:"input_data"`

	// OutputData — выходные данные. Заполняется только при completed.
	OutputData *string `json:"output_data,omitempty"`

	// OutputMetrics — метрики выполнения или текст ошибки при failed.
	OutputMetrics *string `json:"output_metrics,omitempty"`

	// Cost — стоимость запроса в условных единицах.
	// Ноль до завершения; устанавливается только при completed.
	Cost float64 `json:"cost"`

	// ExecutionTimeMs — время выполнения в миллисекундах.
	// Nil, пока неизвестно.
	ExecutionTimeMs *int64 `json:"execution_time_ms,omitempty"`

	// Status — текущий статус выполнения.
	Status RequestStatus `json:"status"`

	// CreatedAt — время создания записи.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsFinished возвращает true, если запрос в терминальном статусе.
func (r *Request) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkProcessing переводит запись в статус processing.
func (r *Request) MarkProcessing() error {
	return r.transition(RequestStatusProcessing)
}

// MarkCompleted переводит запись в статус completed с результатом.
func (r *Request) MarkCompleted(outputData string, metrics *string, executionTimeMs *int64, cost float64) error {
	if err := r.transition(RequestStatusCompleted); err != nil {
		return err
	}
	r.OutputData = &outputData
	r.OutputMetrics = metrics
	r.ExecutionTimeMs = executionTimeMs
	r.Cost = cost
	return nil
}

// MarkFailed переводит запись в статус failed.
// Текст ошибки сохраняется в OutputMetrics; OutputData остаётся пустым,
// Cost не меняется.
func (r *Request) MarkFailed(errorMsg string, executionTimeMs *int64) error {
	if err := r.transition(RequestStatusFailed); err != nil {
		return err
	}
	if errorMsg == "" {
		errorMsg = "Unknown error"
	}
	r.OutputMetrics = &errorMsg
	r.ExecutionTimeMs = executionTimeMs
	return nil
}

// MarkCancelled переводит запись в статус cancelled.
func (r *Request) MarkCancelled() error {
	return r.transition(RequestStatusCancelled)
}

// transition выполняет переход статуса с проверкой допустимости.
func (r *Request) transition(next RequestStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	r.Status = next
	r.UpdatedAt = time.Now()
	return nil
}

// RequestStats — агрегированная статистика запросов пользователя.
type RequestStats struct {
	TotalRequests     int64   `json:"total_requests"`
	CompletedRequests int64   `json:"completed_requests"`
	FailedRequests    int64   `json:"failed_requests"`
	TotalCost         float64 `json:"total_cost"`
	AvgExecutionMs    float64 `json:"avg_execution_time"`
}
