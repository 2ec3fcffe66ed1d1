package api

import (
	"net/http"
	"strconv"
)

// GetUser возвращает пользователя по ID.
// GET /api/v1/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	Success(w, UserFromDomain(user))
}

// ListUsers возвращает список пользователей.
// GET /api/v1/users?limit=...&offset=...
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, err := h.userRepo.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]UserResponse, len(users))
	for i := range users {
		result[i] = UserFromDomain(&users[i])
	}

	List(w, result, len(result))
}

// ListUserRequests возвращает историю ML-запросов пользователя.
// GET /api/v1/users/{id}/requests?limit=...
func (h *Handler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	// Проверяем, что пользователь существует
	if _, err := h.userRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	requests, err := h.requestRepo.ListByUser(r.Context(), id, queryInt(r, "limit", 50))
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]RequestResponse, len(requests))
	for i := range requests {
		result[i] = RequestFromDomain(&requests[i])
	}

	List(w, result, len(result))
}

// GetUserStats возвращает агрегированную статистику ML-запросов пользователя.
// GET /api/v1/users/{id}/stats
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		BadRequest(w, "invalid user id")
		return
	}

	if _, err := h.userRepo.GetByID(r.Context(), id); HandleRepoError(w, h.logger, err, "user not found") {
		return
	}

	stats, err := h.requestRepo.UserStats(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	Success(w, stats)
}

// parseID извлекает целочисленный path-параметр.
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// queryInt парсит query-параметр в int с дефолтным значением.
func queryInt(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
