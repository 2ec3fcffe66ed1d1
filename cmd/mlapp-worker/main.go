// MLApp Worker — обслуживает очередь ML-заданий.
//
// Worker:
//   - Получает задания из очереди ml_requests (prefetch 1)
//   - Прогоняет текст через Predictor
//   - Публикует ответ в reply-очередь запросившего с тем же CorrelationId
//
// Workers масштабируются горизонтально: очередь общая,
// брокер раздаёт задания round-robin.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sijin77/my-ml-app/internal/mq"
	"github.com/sijin77/my-ml-app/internal/telemetry"
	"github.com/sijin77/my-ml-app/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting mlapp-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// RabbitMQ
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	// Создаём worker
	w := worker.New(worker.Config{
		Conn:   mqConn,
		Logger: logger,
	})

	// Запускаем worker
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	// Останавливаем worker
	w.Stop()
	logger.Info("mlapp-worker stopped")
}
