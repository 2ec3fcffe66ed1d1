package api

import (
	"encoding/json"
	"net/http"

	"github.com/sijin77/my-ml-app/internal/auth"
	"github.com/sijin77/my-ml-app/internal/domain"
)

// Register регистрирует нового пользователя.
// POST /api/v1/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	user := &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := h.userRepo.Create(r.Context(), user); HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	Created(w, UserFromDomain(user))
}

// Login проверяет учётные данные и выдаёт JWT.
// POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		BadRequest(w, err.Error())
		return
	}

	user, err := h.userRepo.GetByUsername(r.Context(), req.Username)
	if err != nil {
		// Не раскрываем, существует ли пользователь.
		Unauthorized(w, "invalid credentials")
		return
	}

	if !user.IsActive || !auth.CheckPassword(req.Password, user.PasswordHash) {
		Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Success(w, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        UserFromDomain(user),
	})
}
