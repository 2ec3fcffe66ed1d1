package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sijin77/my-ml-app/internal/domain"
	"github.com/sijin77/my-ml-app/internal/session"
)

// defaultChatModelID — модель, обслуживающая чат, если клиент не выбрал свою.
const defaultChatModelID int64 = 1

// SendChatMessage принимает сообщение пользователя, прогоняет его через
// оркестратор и сохраняет пару вопрос/ответ в историю сессии.
// POST /api/v1/chat/messages
func (h *Handler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		Unauthorized(w, "authentication required")
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	modelID := req.ModelID
	if modelID == 0 {
		modelID = defaultChatModelID
	}

	now := time.Now()
	if err := h.history.Append(r.Context(), userID, session.Message{
		Role:      "user",
		Text:      req.Text,
		CreatedAt: now,
	}); err != nil {
		h.logger.Warn("failed to append chat history", "user_id", userID, "error", err)
	}

	record, err := h.orchestrator.ProcessPredictionRequest(
		r.Context(), userID, modelID, req.Text, domain.RequestTypePrediction, 0,
	)
	if HandleOrchestratorError(w, h.logger, err) {
		return
	}

	var answer string
	if record.OutputData != nil {
		answer = *record.OutputData
	}

	if record.Status == domain.RequestStatusCompleted {
		if err := h.history.Append(r.Context(), userID, session.Message{
			Role:      "assistant",
			Text:      answer,
			CreatedAt: time.Now(),
		}); err != nil {
			h.logger.Warn("failed to append chat history", "user_id", userID, "error", err)
		}
	}

	Success(w, ChatMessageResponse{
		Answer:    answer,
		RequestID: record.ID,
	})
}

// GetChatHistory возвращает историю чата текущего пользователя.
// GET /api/v1/chat/history
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		Unauthorized(w, "authentication required")
		return
	}

	messages, err := h.history.History(r.Context(), userID)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, ChatHistoryResponse{Messages: messages})
}

// ClearChatHistory очищает историю чата текущего пользователя.
// DELETE /api/v1/chat/history
func (h *Handler) ClearChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		Unauthorized(w, "authentication required")
		return
	}

	if err := h.history.Clear(r.Context(), userID); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	NoContent(w)
}
