// MLApp API — HTTP сервер платформы.
//
// Принимает запросы на предсказания, синхронно ждёт ответа воркера
// через RabbitMQ RPC и отдаёт итоговую запись. Остальные маршруты —
// CRUD вокруг пользователей, балансов и каталога моделей.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/sijin77/my-ml-app/internal/api"
	"github.com/sijin77/my-ml-app/internal/auth"
	"github.com/sijin77/my-ml-app/internal/mq"
	"github.com/sijin77/my-ml-app/internal/orchestrator"
	"github.com/sijin77/my-ml-app/internal/repo"
	"github.com/sijin77/my-ml-app/internal/session"
	"github.com/sijin77/my-ml-app/internal/telemetry"
)

var (
	startTime = time.Now()
	reqTotal  = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mlapp_api_http_requests_total",
		Help: "Total HTTP requests handled by mlapp_api",
	})
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting mlapp-api")

	// Подключаемся к базе данных
	pool, err := repo.NewPool(context.Background())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Создаём репозитории
	userRepo := repo.NewUserRepo(pool)
	modelRepo := repo.NewModelRepo(pool)
	requestRepo := repo.NewRequestRepo(pool)
	transactionRepo := repo.NewTransactionRepo(pool)

	// RPC клиент к очереди ML-заданий
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}
	rpc := mq.NewRPCClient(mqURL, logger)
	defer rpc.Close()
	if err := rpc.Connect(); err != nil {
		// Соединение поднимется лениво при первом запросе.
		logger.Warn("RabbitMQ not available yet", "error", err)
	} else {
		logger.Info("RabbitMQ connected")
	}

	orch := orchestrator.New(orchestrator.Config{
		Requests: requestRepo,
		Models:   modelRepo,
		Queue:    rpc,
		Logger:   logger,
	})

	// История чата: Redis, если задан, иначе in-memory.
	var history session.HistoryStore = session.NewMemoryStore()
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		store := session.NewRedisStore(redis.NewClient(opts), 0)
		defer store.Close()
		history = store
		logger.Info("chat history in Redis")
	}

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		UserRepo:        userRepo,
		ModelRepo:       modelRepo,
		RequestRepo:     requestRepo,
		TransactionRepo: transactionRepo,
		Orchestrator:    orch,
		Tokens:          auth.NewTokenIssuer(0),
		History:         history,
		Logger:          logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		reqTotal.Inc()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	addr := ":8080"
	if v := os.Getenv("API_PORT"); v != "" {
		addr = ":" + v
	}

	// Создаём HTTP сервер с возможностью graceful shutdown
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Ожидаем сигнал завершения
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	<-ctx.Done()
	logger.Info("shutting down")

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
