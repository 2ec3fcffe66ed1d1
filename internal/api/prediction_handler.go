package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sijin77/my-ml-app/internal/domain"
)

// CreatePrediction создаёт ML-запрос и синхронно ждёт результата.
// Возвращает итоговую запись: completed с результатом либо failed
// с текстом ошибки. Таймаут очереди отдаётся как 504.
// POST /api/v1/predictions
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req CreatePredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	var timeout time.Duration
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec) * time.Second
	}

	record, err := h.orchestrator.ProcessPredictionRequest(
		r.Context(),
		req.UserID,
		req.ModelID,
		req.InputData,
		domain.RequestType(req.RequestType),
		timeout,
	)
	if HandleOrchestratorError(w, h.logger, err) {
		return
	}

	Created(w, RequestFromDomain(record))
}

// GetRequest возвращает запись ML-запроса по ID.
// GET /api/v1/requests/{id}
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid request id")
		return
	}

	record, err := h.requestRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "request not found") {
		return
	}

	Success(w, RequestFromDomain(record))
}
