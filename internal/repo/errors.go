package repo

import "errors"

// Общие ошибки репозиториев.
var (
	// ErrNotFound — запись не найдена в БД (или отсутствует внешняя сущность).
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запись уже существует (конфликт уникальности).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidState — операция невозможна в текущем состоянии
	// (например, обновление записи в терминальном статусе).
	ErrInvalidState = errors.New("invalid state")

	// ErrInsufficientFunds — на балансе недостаточно средств для списания.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
