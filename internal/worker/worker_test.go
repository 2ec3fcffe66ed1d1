package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sijin77/my-ml-app/internal/mq"
)

func TestRunPrediction_Success(t *testing.T) {
	w := New(Config{})

	reply := w.runPrediction(context.Background(), mq.JobPayload{Text: "hello"})

	if !reply.Success {
		t.Fatalf("expected success, got error %q", reply.Error)
	}
	if reply.OutputData != "echo: hello" {
		t.Errorf("unexpected output %q", reply.OutputData)
	}
	if reply.ExecutionTimeMs == nil {
		t.Error("execution time not measured")
	}
	if reply.Metrics["input_len"] != 5 {
		t.Errorf("unexpected metrics %v", reply.Metrics)
	}
}

func TestRunPrediction_PredictorError(t *testing.T) {
	w := New(Config{
		Predictor: PredictorFunc(func(_ context.Context, _ string) (string, map[string]any, error) {
			return "", nil, errors.New("model not loaded")
		}),
	})

	reply := w.runPrediction(context.Background(), mq.JobPayload{Text: "hello"})

	if reply.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(reply.Error, "Prediction failed") || !strings.Contains(reply.Error, "model not loaded") {
		t.Errorf("unexpected error text %q", reply.Error)
	}
	if reply.ExecutionTimeMs == nil {
		t.Error("execution time should be measured even on failure")
	}
}

func TestRunPrediction_PredictorPanic(t *testing.T) {
	w := New(Config{
		Predictor: PredictorFunc(func(_ context.Context, _ string) (string, map[string]any, error) {
			panic("boom")
		}),
	})

	// Паника предиктора превращается в failed reply
	reply := w.runPrediction(context.Background(), mq.JobPayload{Text: "hello"})

	if reply.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(reply.Error, "panic") {
		t.Errorf("unexpected error text %q", reply.Error)
	}
}

func TestHandleJob_NoReplyTo(t *testing.T) {
	w := New(Config{})

	body, _ := json.Marshal(mq.JobPayload{Text: "hello"})
	d := amqp.Delivery{Body: body, CorrelationId: "abc"}

	// Без reply-to задание обрабатывается, ответ отбрасывается
	if err := w.handleJob(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleJob_BadPayload(t *testing.T) {
	w := New(Config{})

	d := amqp.Delivery{Body: []byte("not json")}

	if err := w.handleJob(context.Background(), d); err == nil {
		t.Fatal("expected unmarshal error")
	}
}
