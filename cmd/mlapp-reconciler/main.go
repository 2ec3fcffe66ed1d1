// MLApp Reconciler — фоновая зачистка зависших запросов.
//
// Запросы, оставшиеся pending дольше порога (оркестратор упал между
// созданием записи и терминальным обновлением), периодически переводятся
// в failed. Поздние ответы воркеров к этому моменту уже отброшены:
// reply-очередь запросившего удалена вместе с его каналом.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sijin77/my-ml-app/internal/reconciler"
	"github.com/sijin77/my-ml-app/internal/repo"
	"github.com/sijin77/my-ml-app/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting mlapp-reconciler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	cutoff := 0
	if v := os.Getenv("RECONCILER_CUTOFF_SEC"); v != "" {
		cutoff, _ = strconv.Atoi(v)
	}

	rec := reconciler.New(reconciler.Config{
		Store:         repo.NewRequestRepo(pool),
		Schedule:      os.Getenv("RECONCILER_SCHEDULE"),
		CutoffSeconds: cutoff,
		Logger:        logger,
	})

	if err := rec.Start(ctx); err != nil {
		logger.Error("failed to start reconciler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8083"
	if v := os.Getenv("RECONCILER_PORT"); v != "" {
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

	rec.Stop()
	logger.Info("mlapp-reconciler stopped")
}
