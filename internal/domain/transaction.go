package domain

import "time"

// TransactionStatus — статус транзакции.
type TransactionStatus string

const (
	// TransactionStatusPending — транзакция создана, но не подтверждена.
	TransactionStatusPending TransactionStatus = "pending"

	// TransactionStatusCompleted — транзакция выполнена.
	TransactionStatusCompleted TransactionStatus = "completed"

	// TransactionStatusFailed — транзакция отклонена.
	TransactionStatusFailed TransactionStatus = "failed"
)

// Transaction — движение средств по балансу пользователя.
type Transaction struct {
	// ID — идентификатор транзакции, назначается БД при создании.
	ID int64 `json:"id"`

	// UserID — ссылка на пользователя.
	UserID int64 `json:"user_id"`

	// Amount — сумма транзакции (всегда положительная).
	Amount float64 `json:"amount"`

	// Type — тип: deposit, withdrawal или refund.
	Type TransactionType `json:"transaction_type"`

	// Status — статус транзакции.
	Status TransactionStatus `json:"status"`

	// Description — описание транзакции.
	Description string `json:"description,omitempty"`

	// RelatedTransactionID — ссылка на связанную транзакцию
	// (например, refund ссылается на исходное списание).
	RelatedTransactionID *int64 `json:"related_transaction_id,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`
}

// IsCompleted возвращает true, если транзакция выполнена.
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}
