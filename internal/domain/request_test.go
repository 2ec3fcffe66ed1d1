package domain

import (
	"errors"
	"testing"
)

func TestRequest_Lifecycle(t *testing.T) {
	req := &Request{Status: RequestStatusPending}

	if req.IsFinished() {
		t.Error("pending request should not be finished")
	}

	if err := req.MarkProcessing(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != RequestStatusProcessing {
		t.Errorf("expected processing, got %s", req.Status)
	}

	execMs := int64(120)
	metrics := `{"tokens": 3}`
	if err := req.MarkCompleted("hi there", &metrics, &execMs, 0.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != RequestStatusCompleted {
		t.Errorf("expected completed, got %s", req.Status)
	}
	if req.OutputData == nil || *req.OutputData != "hi there" {
		t.Error("output data not recorded")
	}
	if req.Cost != 0.5 {
		t.Errorf("expected cost 0.5, got %f", req.Cost)
	}
	if !req.IsFinished() {
		t.Error("completed request should be finished")
	}
}

func TestRequest_TerminalIsImmutable(t *testing.T) {
	// Терминальная запись не переходит ни в какой другой статус.
	for _, status := range []RequestStatus{
		RequestStatusCompleted,
		RequestStatusFailed,
		RequestStatusCancelled,
	} {
		req := &Request{Status: status}

		if err := req.MarkProcessing(); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s → processing: expected ErrInvalidTransition, got %v", status, err)
		}
		if err := req.MarkCompleted("x", nil, nil, 0); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s → completed: expected ErrInvalidTransition, got %v", status, err)
		}
		if err := req.MarkFailed("boom", nil); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s → failed: expected ErrInvalidTransition, got %v", status, err)
		}
	}
}

func TestRequest_MarkFailed_DefaultMessage(t *testing.T) {
	req := &Request{Status: RequestStatusPending}

	if err := req.MarkFailed("", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.OutputMetrics == nil || *req.OutputMetrics != "Unknown error" {
		t.Error("empty error message should default to \"Unknown error\"")
	}
	if req.OutputData != nil {
		t.Error("failed request must not have output data")
	}
	if req.Cost != 0 {
		t.Error("failure must not set cost")
	}
}

func TestRequestStatus_Valid(t *testing.T) {
	valid := []RequestStatus{
		RequestStatusPending, RequestStatusProcessing,
		RequestStatusCompleted, RequestStatusFailed, RequestStatusCancelled,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}

	if RequestStatus("unknown").Valid() {
		t.Error("unknown status should be invalid")
	}
}

func TestRequestType_Valid(t *testing.T) {
	if !RequestTypePrediction.Valid() || !RequestTypeCustom.Valid() {
		t.Error("known request types should be valid")
	}
	if RequestType("batch").Valid() {
		t.Error("unknown request type should be invalid")
	}
}
