package api

import (
	"log/slog"

	"github.com/sijin77/my-ml-app/internal/auth"
	"github.com/sijin77/my-ml-app/internal/orchestrator"
	"github.com/sijin77/my-ml-app/internal/repo"
	"github.com/sijin77/my-ml-app/internal/session"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	userRepo        *repo.UserRepo
	modelRepo       *repo.ModelRepo
	requestRepo     *repo.RequestRepo
	transactionRepo *repo.TransactionRepo
	orchestrator    *orchestrator.Orchestrator
	tokens          *auth.TokenIssuer
	history         session.HistoryStore
	logger          *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	UserRepo        *repo.UserRepo
	ModelRepo       *repo.ModelRepo
	RequestRepo     *repo.RequestRepo
	TransactionRepo *repo.TransactionRepo
	Orchestrator    *orchestrator.Orchestrator
	Tokens          *auth.TokenIssuer
	History         session.HistoryStore
	Logger          *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		userRepo:        cfg.UserRepo,
		modelRepo:       cfg.ModelRepo,
		requestRepo:     cfg.RequestRepo,
		transactionRepo: cfg.TransactionRepo,
		orchestrator:    cfg.Orchestrator,
		tokens:          cfg.Tokens,
		history:         cfg.History,
		logger:          cfg.Logger,
	}
}
