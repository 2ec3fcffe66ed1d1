package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/session"
)

// validate — общий валидатор DTO. Потокобезопасен, кэширует метаданные структур.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Auth DTOs

// RegisterRequest — запрос на регистрацию пользователя.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest — запрос на вход.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse — ответ с токеном доступа.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// User DTOs

// UserResponse — ответ с пользователем.
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Balance   float64   `json:"balance"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain конвертирует domain.User в UserResponse.
func UserFromDomain(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Balance:   u.Balance,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// Transaction DTOs

// AmountRequest — запрос на пополнение или списание.
type AmountRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=256"`
}

// TransactionResponse — ответ с транзакцией.
type TransactionResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"transaction_type"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain конвертирует domain.Transaction в TransactionResponse.
func TransactionFromDomain(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

// Model DTOs

// CreateModelRequest — запрос на регистрацию модели в каталоге.
type CreateModelRequest struct {
	Name           string         `json:"name" validate:"required,max=128"`
	Version        string         `json:"version" validate:"required"`
	InputType      string         `json:"input_type" validate:"required,oneof=text image tabular audio"`
	OutputType     string         `json:"output_type" validate:"required,oneof=classification regression generation detection"`
	CostPerRequest float64        `json:"cost_per_request" validate:"gte=0"`
	Description    string         `json:"description"`
	Config         map[string]any `json:"config"`
}

// UpdateSettingsRequest — запрос на массовое обновление настроек модели.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

// Prediction DTOs

// CreatePredictionRequest — запрос на ML-предсказание.
type CreatePredictionRequest struct {
	UserID      int64  `json:"user_id" validate:"required,gt=0"`
	ModelID     int64  `json:"model_id" validate:"required,gt=0"`
	InputData   string `json:"input_data" validate:"required"`
	RequestType string `json:"request_type" validate:"omitempty,oneof=prediction custom"`
	TimeoutSec  int    `json:"timeout_sec" validate:"omitempty,gt=0,lte=300"`
}

// RequestResponse — ответ с записью ML-запроса.
type RequestResponse struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	ModelID         int64     `json:"model_id"`
	RequestType     string    `json:"request_type"`
	InputData       string    `json:"input_data"`
	OutputData      *string   `json:"output_data"`
	OutputMetrics   *string   `json:"output_metrics,omitempty"`
	Cost            float64   `json:"cost"`
	ExecutionTimeMs *int64    `json:"execution_time_ms"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RequestFromDomain конвертирует domain.Request в RequestResponse.
func RequestFromDomain(r *domain.Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		ModelID:         r.ModelID,
		RequestType:     string(r.Type),
		InputData:       r.InputData,
		OutputData:      r.OutputData,
		OutputMetrics:   r.OutputMetrics,
		Cost:            r.Cost,
		ExecutionTimeMs: r.ExecutionTimeMs,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

// Chat DTOs

// ChatMessageRequest — сообщение пользователя в чат.
type ChatMessageRequest struct {
	ModelID int64  `json:"model_id" validate:"omitempty,gt=0"`
	Text    string `json:"text" validate:"required,max=4096"`
}

// ChatMessageResponse — ответ модели на сообщение.
type ChatMessageResponse struct {
	Answer    string `json:"answer"`
	RequestID int64  `json:"request_id"`
}

// ChatHistoryResponse — история чата пользователя.
type ChatHistoryResponse struct {
	Messages []session.Message `json:"messages"`
}
