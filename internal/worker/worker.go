package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sijin77/my-ml-app/internal/mq"
)

// Default configuration values.
const defaultPrefetch = 1

// Worker потребляет задания из ml_requests и отвечает в reply-to.
type Worker struct {
	conn      *mq.Connection
	predictor Predictor

	consumer *mq.Consumer
	prefetch int

	// Lifecycle
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopped    bool
	stoppedMu  sync.RWMutex
}

// Config — конфигурация Worker.
type Config struct {
	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	// Predictor — модель (опционально; если nil — EchoPredictor).
	Predictor Predictor

	// Prefetch — количество заданий в обработке одновременно (default: 1,
	// как у исходного ML-сервиса: модель обрабатывает по одному).
	Prefetch int

	// Logger
	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	predictor := cfg.Predictor
	if predictor == nil {
		predictor = EchoPredictor{}
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = defaultPrefetch
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Worker{
		conn:      cfg.Conn,
		predictor: predictor,
		prefetch:  prefetch,
		logger:    logger,
	}
}

// Start запускает Worker.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker", "queue", mq.QueueMLRequests, "prefetch", w.prefetch)

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    mq.QueueMLRequests,
		Handler:  w.handleJob,
		Prefetch: w.prefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("job consumer error", "error", err)
		}
	}()

	w.logger.Info("worker started")
	return nil
}

// Stop останавливает Worker.
func (w *Worker) Stop() {
	w.stoppedMu.Lock()
	w.stopped = true
	w.stoppedMu.Unlock()

	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()
	w.logger.Info("worker stopped")
}

// IsStopped проверяет, остановлен ли Worker.
func (w *Worker) IsStopped() bool {
	w.stoppedMu.RLock()
	defer w.stoppedMu.RUnlock()
	return w.stopped
}

// handleJob обрабатывает одно задание из очереди.
func (w *Worker) handleJob(ctx context.Context, d amqp.Delivery) error {
	var payload mq.JobPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		return fmt.Errorf("unmarshal job: %w", err)
	}

	reply := w.runPrediction(ctx, payload)

	// Без reply-to ответ некуда отправлять: клиент уже отвалился
	// по таймауту или задание пришло fire-and-forget
	if d.ReplyTo == "" {
		w.logger.Warn("job has no reply-to, dropping reply",
			"correlation_id", d.CorrelationId,
			"success", reply.Success,
		)
		return nil
	}

	return w.publishReply(ctx, d.ReplyTo, d.CorrelationId, reply)
}

// runPrediction выполняет предсказание, превращая любые ошибки
// в неуспешный Reply.
func (w *Worker) runPrediction(ctx context.Context, payload mq.JobPayload) *mq.Reply {
	start := time.Now()

	output, metrics, err := func() (output string, metrics map[string]any, err error) {
		// Паника предиктора — это failed reply, а не смерть consumer'а
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("predictor panic: %v", r)
			}
		}()
		return w.predictor.Predict(ctx, payload.Text)
	}()

	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		w.logger.Error("prediction failed", "error", err)
		return &mq.Reply{
			Success:         false,
			Error:           fmt.Sprintf("Prediction failed: %s", err),
			ExecutionTimeMs: &elapsed,
		}
	}

	return &mq.Reply{
		Success:         true,
		OutputData:      output,
		Metrics:         metrics,
		ExecutionTimeMs: &elapsed,
	}
}

// publishReply публикует ответ в приватную очередь клиента
// с тем же correlation id.
func (w *Worker) publishReply(ctx context.Context, replyTo, correlationID string, reply *mq.Reply) error {
	body, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("marshal reply: %w", err)
	}

	return w.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			"",      // default exchange
			replyTo, // routing key — приватная очередь клиента
			false,
			false,
			amqp.Publishing{
				ContentType:   "application/json",
				CorrelationId: correlationID,
				Body:          body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish reply to %s: %w", replyTo, err)
		}

		w.logger.Debug("reply published",
			"reply_to", replyTo,
			"correlation_id", correlationID,
			"success", reply.Success,
		)
		return nil
	})
}
