package api

import (
	"encoding/json"
	"net/http"
)

// Deposit пополняет баланс пользователя.
// POST /api/v1/users/{id}/deposit
func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	tx, err := h.transactionRepo.Deposit(r.Context(), id, req.Amount, req.Description)
	if HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	h.logger.Info("balance deposited", "user_id", id, "amount", req.Amount)
	Created(w, TransactionFromDomain(tx))
}

// Withdraw списывает средства с баланса пользователя.
// При нехватке средств возвращает 422.
// POST /api/v1/users/{id}/withdraw
func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	tx, err := h.transactionRepo.Withdraw(r.Context(), id, req.Amount, req.Description)
	if HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	h.logger.Info("balance withdrawn", "user_id", id, "amount", req.Amount)
	Created(w, TransactionFromDomain(tx))
}

// ListTransactions возвращает историю транзакций пользователя.
// GET /api/v1/users/{id}/transactions?limit=...
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	if _, err := h.userRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	transactions, err := h.transactionRepo.ListByUser(r.Context(), id, queryInt(r, "limit", 50))
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		result[i] = TransactionFromDomain(&transactions[i])
	}

	List(w, result, len(result))
}
