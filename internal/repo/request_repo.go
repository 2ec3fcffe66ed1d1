package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijin77/my-ml-app/internal/domain"
)

// RequestRepo — репозиторий для записей о ML-запросах.
//
// Контракт Record Store, который потребляет оркестратор: Create,
// терминальные обновления (Complete/Fail), чтение по id/пользователю.
// Каждая операция — отдельная транзакция; оркестратор намеренно
// не оборачивает create+update в одну (pending-запись должна быть
// видна снаружи, пока задание выполняется).
type RequestRepo struct {
	pool *pgxpool.Pool
}

// NewRequestRepo создаёт новый RequestRepo.
func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

const requestColumns = `
	id, user_id, model_id, request_type, input_data, output_data,
	output_metrics, cost, execution_time_ms, status, created_at, updated_at
`

// Create создаёт запись о запросе в статусе pending.
// Возвращает ErrNotFound, если пользователь или модель не существуют.
func (r *RequestRepo) Create(ctx context.Context, req *domain.Request) error {
	query := `
		INSERT INTO requests (user_id, model_id, request_type, input_data, cost, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		req.UserID,
		req.ModelID,
		req.Type,
		req.InputData,
		req.Cost,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 foreign_key_violation — нет такого пользователя или модели
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("referenced entity: %w", ErrNotFound)
		}
		return fmt.Errorf("insert request: %w", err)
	}
	return nil
}

// GetByID возвращает запись по ID.
func (r *RequestRepo) GetByID(ctx context.Context, id int64) (*domain.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	return scanRequest(r.pool.QueryRow(ctx, query, id))
}

// Complete переводит запись в статус completed с результатом.
// Переход разрешён только из нетерминального статуса; попытка
// обновить терминальную запись возвращает ErrInvalidState.
func (r *RequestRepo) Complete(ctx context.Context, id int64, outputData string, metrics *string, executionTimeMs *int64, cost float64) (*domain.Request, error) {
	query := `
		UPDATE requests
		SET status = 'completed', output_data = $2, output_metrics = $3,
		    execution_time_ms = $4, cost = $5, updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'processing')
		RETURNING ` + requestColumns
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, outputData, metrics, executionTimeMs, cost))
	if errors.Is(err, ErrNotFound) {
		return nil, r.classifyUpdateMiss(ctx, id)
	}
	return req, err
}

// Fail переводит запись в статус failed с текстом ошибки в output_metrics.
// OutputData и Cost не меняются.
func (r *RequestRepo) Fail(ctx context.Context, id int64, errorMsg string, executionTimeMs *int64) (*domain.Request, error) {
	if errorMsg == "" {
		errorMsg = "Unknown error"
	}
	query := `
		UPDATE requests
		SET status = 'failed', output_metrics = $2, execution_time_ms = $3,
		    updated_at = now()
		WHERE id = $1 AND status IN ('pending', 'processing')
		RETURNING ` + requestColumns
	req, err := scanRequest(r.pool.QueryRow(ctx, query, id, errorMsg, executionTimeMs))
	if errors.Is(err, ErrNotFound) {
		return nil, r.classifyUpdateMiss(ctx, id)
	}
	return req, err
}

// classifyUpdateMiss различает "записи нет" и "запись в терминальном статусе".
func (r *RequestRepo) classifyUpdateMiss(ctx context.Context, id int64) error {
	var status domain.RequestStatus
	err := r.pool.QueryRow(ctx, `SELECT status FROM requests WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check request status: %w", err)
	}
	return fmt.Errorf("request %d is %s: %w", id, status, ErrInvalidState)
}

// ListByUser возвращает запросы пользователя, старые первыми.
func (r *RequestRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

// ListByModel возвращает запросы к конкретной модели.
func (r *RequestRepo) ListByModel(ctx context.Context, modelID int64, limit int) ([]domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE model_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, modelID, limit)
}

// ListPending возвращает записи в статусе pending старше cutoffSeconds.
// Используется reconciler'ом для принудительного завершения зависших запросов.
func (r *RequestRepo) ListPending(ctx context.Context, cutoffSeconds int, limit int) ([]domain.Request, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE status = 'pending'
		  AND created_at < now() - make_interval(secs => $1)
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, cutoffSeconds, limit)
}

// UserStats возвращает агрегированную статистику запросов пользователя.
func (r *RequestRepo) UserStats(ctx context.Context, userID int64) (*domain.RequestStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'completed'),
			count(*) FILTER (WHERE status != 'completed'),
			coalesce(sum(cost) FILTER (WHERE status = 'completed'), 0),
			coalesce(avg(execution_time_ms) FILTER (WHERE status = 'completed'), 0)
		FROM requests
		WHERE user_id = $1
	`
	var stats domain.RequestStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalRequests,
		&stats.CompletedRequests,
		&stats.FailedRequests,
		&stats.TotalCost,
		&stats.AvgExecutionMs,
	)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return &stats, nil
}

// list выполняет запрос и сканирует результат в слайс.
func (r *RequestRepo) list(ctx context.Context, query string, args ...any) ([]domain.Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.Request
	for rows.Next() {
		req, err := scanRequestFromRows(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// --- Helpers ---

// scanRequest сканирует одну строку в Request.
func scanRequest(row pgx.Row) (*domain.Request, error) {
	var req domain.Request
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.ModelID,
		&req.Type,
		&req.InputData,
		&req.OutputData,
		&req.OutputMetrics,
		&req.Cost,
		&req.ExecutionTimeMs,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return &req, nil
}

// scanRequestFromRows сканирует строку из rows в Request.
func scanRequestFromRows(rows pgx.Rows) (*domain.Request, error) {
	var req domain.Request
	err := rows.Scan(
		&req.ID,
		&req.UserID,
		&req.ModelID,
		&req.Type,
		&req.InputData,
		&req.OutputData,
		&req.OutputMetrics,
		&req.Cost,
		&req.ExecutionTimeMs,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan request: %w", err)
	}
	return &req, nil
}
