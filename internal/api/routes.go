package api

import (
	"net/http"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Middleware chains
	open := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)
	protected := Chain(
		Recovery(h.logger),
		Logging(h.logger),
		Auth(h.tokens),
	)

	// Auth
	mux.Handle("POST /api/v1/auth/register", open(http.HandlerFunc(h.Register)))
	mux.Handle("POST /api/v1/auth/login", open(http.HandlerFunc(h.Login)))

	// Users
	mux.Handle("GET /api/v1/users", protected(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /api/v1/users/{id}", protected(http.HandlerFunc(h.GetUser)))
	mux.Handle("GET /api/v1/users/{id}/requests", protected(http.HandlerFunc(h.ListUserRequests)))
	mux.Handle("GET /api/v1/users/{id}/stats", protected(http.HandlerFunc(h.GetUserStats)))

	// Transactions
	mux.Handle("POST /api/v1/users/{id}/deposit", protected(http.HandlerFunc(h.Deposit)))
	mux.Handle("POST /api/v1/users/{id}/withdraw", protected(http.HandlerFunc(h.Withdraw)))
	mux.Handle("GET /api/v1/users/{id}/transactions", protected(http.HandlerFunc(h.ListTransactions)))

	// Models
	mux.Handle("GET /api/v1/models", open(http.HandlerFunc(h.ListModels)))
	mux.Handle("POST /api/v1/models", protected(http.HandlerFunc(h.CreateModel)))
	mux.Handle("GET /api/v1/models/{id}", open(http.HandlerFunc(h.GetModel)))
	mux.Handle("GET /api/v1/models/{id}/settings", protected(http.HandlerFunc(h.GetModelSettings)))
	mux.Handle("PUT /api/v1/models/{id}/settings", protected(http.HandlerFunc(h.UpdateModelSettings)))

	// Predictions
	mux.Handle("POST /api/v1/predictions", protected(http.HandlerFunc(h.CreatePrediction)))
	mux.Handle("GET /api/v1/requests/{id}", protected(http.HandlerFunc(h.GetRequest)))

	// Chat
	mux.Handle("POST /api/v1/chat/messages", protected(http.HandlerFunc(h.SendChatMessage)))
	mux.Handle("GET /api/v1/chat/history", protected(http.HandlerFunc(h.GetChatHistory)))
	mux.Handle("DELETE /api/v1/chat/history", protected(http.HandlerFunc(h.ClearChatHistory)))
}
