package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijin77/my-ml-app/internal/domain"
)

// TransactionRepo — репозиторий для транзакций по балансу.
//
// Deposit и Withdraw атомарно пишут транзакцию и обновляют баланс
// пользователя в одной транзакции БД.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

// NewTransactionRepo создаёт новый TransactionRepo.
func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

const transactionColumns = `
	id, user_id, amount, transaction_type, status, description,
	related_transaction_id, created_at
`

// Deposit пополняет баланс пользователя и записывает транзакцию.
func (r *TransactionRepo) Deposit(ctx context.Context, userID int64, amount float64, description string) (*domain.Transaction, error) {
	return r.apply(ctx, userID, amount, domain.TransactionTypeDeposit, description, nil)
}

// Withdraw списывает средства с баланса.
// Возвращает ErrInsufficientFunds, если баланса не хватает.
func (r *TransactionRepo) Withdraw(ctx context.Context, userID int64, amount float64, description string) (*domain.Transaction, error) {
	return r.apply(ctx, userID, amount, domain.TransactionTypeWithdrawal, description, nil)
}

// Refund возвращает средства со ссылкой на исходную транзакцию.
func (r *TransactionRepo) Refund(ctx context.Context, userID int64, amount float64, description string, relatedID int64) (*domain.Transaction, error) {
	return r.apply(ctx, userID, amount, domain.TransactionTypeRefund, description, &relatedID)
}

// apply атомарно обновляет баланс и записывает транзакцию.
func (r *TransactionRepo) apply(ctx context.Context, userID int64, amount float64, txType domain.TransactionType, description string, relatedID *int64) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", ErrInvalidState)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку пользователя на время проверки баланса
	var balance float64
	err = tx.QueryRow(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock user: %w", err)
	}

	delta := amount
	if txType == domain.TransactionTypeWithdrawal {
		if balance < amount {
			return nil, ErrInsufficientFunds
		}
		delta = -amount
	}

	if _, err := tx.Exec(ctx,
		`UPDATE users SET balance = balance + $2, updated_at = now() WHERE id = $1`,
		userID, delta,
	); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	record := &domain.Transaction{
		UserID:               userID,
		Amount:               amount,
		Type:                 txType,
		Status:               domain.TransactionStatusCompleted,
		Description:          description,
		RelatedTransactionID: relatedID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, amount, transaction_type, status, description, related_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`,
		record.UserID,
		record.Amount,
		record.Type,
		record.Status,
		nullString(record.Description),
		record.RelatedTransactionID,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return record, nil
}

// GetByID возвращает транзакцию по ID.
func (r *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

// ListByUser возвращает транзакции пользователя, новые первыми.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var description *string
		err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Status,
			&description, &t.RelatedTransactionID, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if description != nil {
			t.Description = *description
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// scanTransaction сканирует одну строку в Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var description *string
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Amount,
		&t.Type,
		&t.Status,
		&description,
		&t.RelatedTransactionID,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if description != nil {
		t.Description = *description
	}
	return &t, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
