package api

import (
	"encoding/json"
	"net/http"

	"github.com/sijin77/my-ml-app/internal/domain"
)

// CreateModel регистрирует модель в каталоге.
// POST /api/v1/models
func (h *Handler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var req CreateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}
	if !domain.ValidVersion(req.Version) {
		BadRequest(w, "version must be in major.minor.patch format")
		return
	}

	model := &domain.Model{
		Name:           req.Name,
		Version:        req.Version,
		InputType:      domain.ModelInputType(req.InputType),
		OutputType:     domain.ModelOutputType(req.OutputType),
		CostPerRequest: req.CostPerRequest,
		Description:    req.Description,
		Config:         req.Config,
	}

	if err := h.modelRepo.Create(r.Context(), model); HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.logger.Info("model registered", "model_id", model.ID, "name", model.Name, "version", model.Version)
	Created(w, model)
}

// GetModel возвращает модель по ID.
// GET /api/v1/models/{id}
func (h *Handler) GetModel(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid model id")
		return
	}

	model, err := h.modelRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "model not found") {
		return
	}

	Success(w, model)
}

// ListModels возвращает каталог моделей.
// GET /api/v1/models?input_type=...&limit=...&offset=...
func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	if inputType := r.URL.Query().Get("input_type"); inputType != "" {
		t := domain.ModelInputType(inputType)
		if !t.Valid() {
			BadRequest(w, "invalid input_type")
			return
		}
		models, err := h.modelRepo.ListByInputType(r.Context(), t, limit)
		if HandleRepoError(w, h.logger, err, "") {
			return
		}
		List(w, models, len(models))
		return
	}

	models, err := h.modelRepo.List(r.Context(), limit, queryInt(r, "offset", 0))
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, models, len(models))
}

// GetModelSettings возвращает настройки модели.
// GET /api/v1/models/{id}/settings
func (h *Handler) GetModelSettings(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid model id")
		return
	}

	if _, err := h.modelRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "model not found") {
		return
	}

	settings, err := h.modelRepo.GetSettings(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, settings, len(settings))
}

// UpdateModelSettings массово обновляет настройки модели (upsert).
// PUT /api/v1/models/{id}/settings
func (h *Handler) UpdateModelSettings(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid model id")
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	if _, err := h.modelRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "model not found") {
		return
	}

	if err := h.modelRepo.UpsertSettings(r.Context(), id, req.Settings); HandleRepoError(w, h.logger, err, "") {
		return
	}

	settings, err := h.modelRepo.GetSettings(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	List(w, settings, len(settings))
}
