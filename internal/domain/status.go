package domain

// RequestStatus — статус выполнения ML-запроса.
//
// Жизненный цикл:
//
//	pending → processing → completed
//	                     ↘ failed
//	pending → failed (timeout, обрыв соединения с брокером)
//	pending → cancelled
//
// Из терминальных статусов (completed/failed/cancelled) переходов нет.
type RequestStatus string

const (
	// RequestStatusPending — запись создана, ответ от воркера ещё не получен.
	RequestStatusPending RequestStatus = "pending"

	// RequestStatusProcessing — запрос взят воркером в обработку.
	RequestStatusProcessing RequestStatus = "processing"

	// RequestStatusCompleted — получен успешный ответ, результат сохранён.
	RequestStatusCompleted RequestStatus = "completed"

	// RequestStatusFailed — ответ с ошибкой, timeout или обрыв соединения.
	RequestStatusFailed RequestStatus = "failed"

	// RequestStatusCancelled — запрос отменён.
	RequestStatusCancelled RequestStatus = "cancelled"
)

// IsTerminal возвращает true, если статус финальный.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusFailed, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// Valid проверяет, что статус — одно из известных значений.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusProcessing,
		RequestStatusCompleted, RequestStatusFailed, RequestStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo проверяет допустимость перехода статуса.
// Разрешены только движения вперёд; из терминального статуса выхода нет.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	if s.IsTerminal() {
		return false
	}

	switch s {
	case RequestStatusPending:
		switch next {
		case RequestStatusProcessing, RequestStatusCompleted,
			RequestStatusFailed, RequestStatusCancelled:
			return true
		}
	case RequestStatusProcessing:
		switch next {
		case RequestStatusCompleted, RequestStatusFailed, RequestStatusCancelled:
			return true
		}
	}
	return false
}

// RequestType — тип ML-запроса.
type RequestType string

const (
	// RequestTypePrediction — обычный запрос на предсказание.
	RequestTypePrediction RequestType = "prediction"

	// RequestTypeCustom — произвольный запрос к модели.
	RequestTypeCustom RequestType = "custom"
)

// Valid проверяет, что тип — одно из известных значений.
func (t RequestType) Valid() bool {
	return t == RequestTypePrediction || t == RequestTypeCustom
}

// TransactionType — тип транзакции по балансу пользователя.
type TransactionType string

const (
	// TransactionTypeDeposit — пополнение баланса.
	TransactionTypeDeposit TransactionType = "deposit"

	// TransactionTypeWithdrawal — списание с баланса.
	TransactionTypeWithdrawal TransactionType = "withdrawal"

	// TransactionTypeRefund — возврат средств.
	TransactionTypeRefund TransactionType = "refund"
)

// Valid проверяет, что тип — одно из известных значений.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeRefund:
		return true
	default:
		return false
	}
}
