package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrValidation — входные данные не прошли проверку.
	// Возвращается до создания записи, никаких побочных эффектов.
	ErrValidation = errors.New("invalid request input")

	// ErrEmptyInput — пустые входные данные.
	ErrEmptyInput = errors.New("input data is empty")
)
