package mq

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func testRPCClient() *RPCClient {
	return NewRPCClient("amqp://unused", slog.New(slog.DiscardHandler))
}

func replyDelivery(t *testing.T, correlationID string, reply Reply) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(reply)
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	return amqp.Delivery{CorrelationId: correlationID, Body: body}
}

func TestAwaitReplyMatchingCorrelationID(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery, 1)
	deliveries <- replyDelivery(t, "corr-1", Reply{Success: true, OutputData: "Predicted: hello"})

	reply, err := c.awaitReply(context.Background(), deliveries, nil, "corr-1", time.Second)
	if err != nil {
		t.Fatalf("awaitReply: %v", err)
	}
	if !reply.Success {
		t.Error("expected successful reply")
	}
	if reply.OutputData != "Predicted: hello" {
		t.Errorf("unexpected output: %q", reply.OutputData)
	}
}

func TestAwaitReplyDropsMismatchedCorrelationID(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- replyDelivery(t, "someone-else", Reply{Success: true, OutputData: "stale"})
	deliveries <- replyDelivery(t, "corr-2", Reply{Success: true, OutputData: "fresh"})

	reply, err := c.awaitReply(context.Background(), deliveries, nil, "corr-2", time.Second)
	if err != nil {
		t.Fatalf("awaitReply: %v", err)
	}
	if reply.OutputData != "fresh" {
		t.Errorf("expected the matching reply, got %q", reply.OutputData)
	}
}

func TestAwaitReplyTimeout(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery)

	_, err := c.awaitReply(context.Background(), deliveries, nil, "corr-3", 10*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestAwaitReplyClosedDeliveries(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery)
	close(deliveries)

	_, err := c.awaitReply(context.Background(), deliveries, nil, "corr-4", time.Second)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestAwaitReplyChannelClosed(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery)
	notifyClose := make(chan *amqp.Error, 1)
	notifyClose <- &amqp.Error{Code: amqp.ChannelError, Reason: "connection reset"}

	_, err := c.awaitReply(context.Background(), deliveries, notifyClose, "corr-5", time.Second)
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}

func TestAwaitReplyContextCancelled(t *testing.T) {
	c := testRPCClient()
	deliveries := make(chan amqp.Delivery)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.awaitReply(ctx, deliveries, nil, "corr-6", time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
