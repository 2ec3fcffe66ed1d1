package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sijin77/my-ml-app/internal/auth"
	"github.com/sijin77/my-ml-app/internal/mq"
	"github.com/sijin77/my-ml-app/internal/orchestrator"
	"github.com/sijin77/my-ml-app/internal/repo"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestHandleOrchestratorError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", orchestrator.ErrValidation, http.StatusBadRequest, ""},
		{"empty input", orchestrator.ErrEmptyInput, http.StatusBadRequest, ""},
		// ErrNotFound приходит и за отсутствующую модель, и за
		// отсутствующего пользователя (FK в requests), поэтому
		// сообщение не называет конкретную сущность.
		{"referent missing", repo.ErrNotFound, http.StatusNotFound, "user or model not found"},
		{"timeout", mq.ErrTimeout, http.StatusGatewayTimeout, ""},
		{"connection", mq.ErrConnection, http.StatusInternalServerError, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			if !HandleOrchestratorError(rec, discardLogger(), tc.err) {
				t.Fatal("error should be handled")
			}
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}

			var er ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&er); err != nil {
				t.Fatalf("response is not an error envelope: %v", err)
			}
			if tc.wantMsg != "" && er.Error.Message != tc.wantMsg {
				t.Errorf("expected message %q, got %q", tc.wantMsg, er.Error.Message)
			}
		})
	}

	rec := httptest.NewRecorder()
	if HandleOrchestratorError(rec, discardLogger(), nil) {
		t.Error("nil error must not be handled")
	}
}

func TestHandleRepoError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{repo.ErrNotFound, http.StatusNotFound},
		{repo.ErrAlreadyExists, http.StatusConflict},
		{repo.ErrInvalidState, http.StatusUnprocessableEntity},
		{repo.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		if !HandleRepoError(rec, discardLogger(), tc.err, "missing") {
			t.Fatalf("%v should be handled", tc.err)
		}
		if rec.Code != tc.wantStatus {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.wantStatus, rec.Code)
		}
	}
}

func TestAuthMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer(time.Hour)

	var gotUserID int64
	handler := Auth(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	}))

	// Без токена
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// С мусорным токеном
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}

	// С валидным токеном
	token, err := issuer.Issue(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if gotUserID != 42 {
		t.Errorf("expected user id 42, got %d", gotUserID)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(mw("outer"), mw("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("unexpected middleware order %v", order)
	}
}

func TestCreatePredictionRequest_Validation(t *testing.T) {
	valid := CreatePredictionRequest{UserID: 1, ModelID: 1, InputData: "hello"}
	if err := validate.Struct(valid); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	invalid := []CreatePredictionRequest{
		{UserID: 0, ModelID: 1, InputData: "hello"},
		{UserID: 1, ModelID: 1, InputData: ""},
		{UserID: 1, ModelID: 1, InputData: "hello", RequestType: "batch"},
		{UserID: 1, ModelID: 1, InputData: "hello", TimeoutSec: -5},
	}
	for i, req := range invalid {
		if err := validate.Struct(req); err == nil {
			t.Errorf("case %d should be rejected", i)
		}
	}
}

func TestRecovery(t *testing.T) {
	handler := Recovery(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
}
