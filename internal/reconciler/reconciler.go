// Package reconciler принудительно завершает зависшие запросы.
//
// Если API-процесс умер между созданием pending-записи и терминальным
// обновлением (или терминальная запись сама не записалась), запись
// остаётся pending навсегда. Reconciler периодически находит такие
// записи — pending старше дедлайна — и переводит их в failed.
// Поздний ответ воркера при этом просто теряется: reply-очередь
// клиента давно снесена.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/repo"
)

// Default configuration values.
const (
	defaultSchedule      = "@every 1m"
	defaultCutoffSeconds = 300
	defaultBatchSize     = 100
)

// failMessage пишется в output_metrics принудительно завершённой записи.
const failMessage = "request timed out: no reply received (reconciler)"

// PendingStore — контракт хранилища для reconciler.
// Реализуется repo.RequestRepo.
type PendingStore interface {
	ListPending(ctx context.Context, cutoffSeconds int, limit int) ([]domain.Request, error)
	Fail(ctx context.Context, id int64, errorMsg string, executionTimeMs *int64) (*domain.Request, error)
}

// Reconciler — периодический sweep pending-записей.
type Reconciler struct {
	store PendingStore

	schedule      string
	cutoffSeconds int
	batchSize     int

	cron   *cron.Cron
	logger *slog.Logger
	mu     sync.Mutex
}

// Config — конфигурация Reconciler.
type Config struct {
	Store PendingStore

	// Schedule — cron-выражение запуска sweep (default: @every 1m).
	Schedule string

	// CutoffSeconds — возраст pending-записи, после которого она
	// считается зависшей (default: 300; должен превышать максимальный
	// таймаут запроса, иначе sweep завершит ещё живые ожидания).
	CutoffSeconds int

	// BatchSize — количество записей за один sweep (default: 100).
	BatchSize int

	Logger *slog.Logger
}

// New создаёт новый Reconciler.
func New(cfg Config) *Reconciler {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = defaultSchedule
	}

	cutoff := cfg.CutoffSeconds
	if cutoff <= 0 {
		cutoff = defaultCutoffSeconds
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		store:         cfg.Store,
		schedule:      schedule,
		cutoffSeconds: cutoff,
		batchSize:     batchSize,
		logger:        logger,
	}
}

// Start запускает периодический sweep.
func (r *Reconciler) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return fmt.Errorf("reconciler already started")
	}

	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		if err := r.Sweep(ctx); err != nil {
			r.logger.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	c.Start()
	r.cron = c

	r.logger.Info("reconciler started",
		"schedule", r.schedule,
		"cutoff_seconds", r.cutoffSeconds,
	)
	return nil
}

// Stop останавливает sweep и ждёт завершения текущего прохода.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	r.logger.Info("reconciler stopped")
}

// Sweep выполняет один проход: находит зависшие pending-записи
// и переводит их в failed. Ошибка одной записи не блокирует остальные.
func (r *Reconciler) Sweep(ctx context.Context) error {
	stale, err := r.store.ListPending(ctx, r.cutoffSeconds, r.batchSize)
	if err != nil {
		return fmt.Errorf("list stale pending requests: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	r.logger.Info("found stale pending requests", "count", len(stale))

	var failed int
	for i := range stale {
		req := &stale[i]

		if _, err := r.store.Fail(ctx, req.ID, failMessage, nil); err != nil {
			// Гонка с опоздавшим терминальным обновлением — не ошибка
			if errors.Is(err, repo.ErrInvalidState) {
				r.logger.Debug("request already terminal, skipping", "request_id", req.ID)
				continue
			}
			r.logger.Error("failed to force-fail request",
				"request_id", req.ID,
				"error", err,
			)
			continue
		}
		failed++
	}

	r.logger.Info("sweep completed", "stale", len(stale), "failed", failed)
	return nil
}
