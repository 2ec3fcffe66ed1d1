package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RPCClient — одноразовый запрос/ответ поверх общей durable очереди.
//
// Схема вызова:
//  1. Генерируется свежий correlation id (uuid).
//  2. Объявляется приватная exclusive auto-delete очередь для ответа,
//     живущая ровно один вызов.
//  3. Задание публикуется в ml_requests с reply-to, correlation id
//     и expiration = timeout.
//  4. Вызов блокируется (не блокируя другие горутины) до прихода
//     ответа с совпадающим correlation id, либо истечения timeout.
//
// Очередь-на-вызов вместо одной общей reply-очереди с демультиплексацией:
// чуть дороже на setup, зато нет head-of-line blocking и очистка
// атомарна — канал закрывается вместе с вызовом. Correlation id
// защищает от доставки чужого ответа, если очередь когда-либо
// переиспользуется.
//
// Соединение разделяется между вызовами; каждый вызов открывает
// собственный AMQP-канал, поэтому конкурентные вызовы независимы.
type RPCClient struct {
	url    string
	logger *slog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	closed bool
}

// NewRPCClient создаёт RPC-клиент. Соединение устанавливается
// в Connect или лениво при первом вызове.
func NewRPCClient(url string, logger *slog.Logger) *RPCClient {
	return &RPCClient{
		url:    url,
		logger: logger,
	}
}

// Connect устанавливает соединение с брокером и объявляет durable
// очередь заданий. Идемпотентен — повторный вызов на живом соединении
// ничего не делает. Возвращает ErrConnection, если брокер недоступен.
func (c *RPCClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectLocked()
}

func (c *RPCClient) connectLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w: %s", ErrConnection, err)
	}

	// Объявляем очередь заданий на временном канале: очередь durable,
	// переживает рестарт брокера.
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w: %s", ErrConnection, err)
	}
	_, err = ch.QueueDeclare(
		QueueMLRequests, // name
		true,            // durable
		false,           // delete when unused
		false,           // exclusive
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare queue %s: %w: %s", QueueMLRequests, ErrConnection, err)
	}
	ch.Close()

	c.conn = conn
	c.logger.Info("rpc client connected", "queue", QueueMLRequests)
	return nil
}

// channel возвращает свежий AMQP-канал, подключаясь при необходимости.
func (c *RPCClient) channel() (*amqp.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(); err != nil {
		return nil, err
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w: %s", ErrConnection, err)
	}
	return ch, nil
}

// Call отправляет задание и ждёт ответ не дольше timeout.
//
// Возвращает:
//   - ответ воркера при совпадении correlation id;
//   - ErrTimeout, если ответ не пришёл вовремя;
//   - ErrConnection при обрыве соединения во время ожидания;
//   - ctx.Err(), если контекст отменён раньше.
func (c *RPCClient) Call(ctx context.Context, payload JobPayload, timeout time.Duration) (*Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	ch, err := c.channel()
	if err != nil {
		return nil, err
	}
	// Закрытие канала сносит exclusive reply-очередь вместе с
	// неразобранными сообщениями — поздний ответ воркера просто теряется.
	defer ch.Close()

	// Приватная очередь для ответа, живёт один вызов
	replyQueue, err := ch.QueueDeclare(
		"",    // name (server-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare reply queue: %w: %s", ErrConnection, err)
	}

	deliveries, err := ch.Consume(
		replyQueue.Name, // queue
		"",              // consumer tag
		true,            // auto-ack
		true,            // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume reply queue: %w: %s", ErrConnection, err)
	}

	correlationID := uuid.New().String()

	err = ch.PublishWithContext(
		ctx,
		"",              // default exchange
		QueueMLRequests, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			ReplyTo:       replyQueue.Name,
			Expiration:    strconv.FormatInt(timeout.Milliseconds(), 10),
			Body:          body,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("publish job: %w: %s", ErrConnection, err)
	}

	c.logger.Debug("job published",
		"correlation_id", correlationID,
		"reply_queue", replyQueue.Name,
		"timeout", timeout,
	)

	notifyClose := ch.NotifyClose(make(chan *amqp.Error, 1))

	return c.awaitReply(ctx, deliveries, notifyClose, correlationID, timeout)
}

// awaitReply ждёт ответ с совпадающим correlation id не дольше timeout.
// Чужие ответы (переиспользованная очередь) отбрасываются, ожидание
// продолжается на остатке таймера.
func (c *RPCClient) awaitReply(ctx context.Context, deliveries <-chan amqp.Delivery, notifyClose <-chan *amqp.Error, correlationID string, timeout time.Duration) (*Reply, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-timer.C:
			return nil, fmt.Errorf("correlation_id %s: %w", correlationID, ErrTimeout)

		case amqpErr := <-notifyClose:
			return nil, fmt.Errorf("channel closed while waiting: %w: %v", ErrConnection, amqpErr)

		case d, ok := <-deliveries:
			if !ok {
				return nil, fmt.Errorf("deliveries channel closed: %w", ErrConnection)
			}
			if d.CorrelationId != correlationID {
				c.logger.Warn("dropping reply with mismatched correlation id",
					"expected", correlationID,
					"got", d.CorrelationId,
				)
				continue
			}

			var reply Reply
			if err := json.Unmarshal(d.Body, &reply); err != nil {
				return nil, fmt.Errorf("unmarshal reply: %w", err)
			}

			c.logger.Debug("reply received",
				"correlation_id", correlationID,
				"success", reply.Success,
			)
			return &reply, nil
		}
	}
}

// Close закрывает соединение. Безопасен для повторных вызовов;
// ошибки teardown логируются и не пробрасываются — метод зовётся
// на путях shutdown.
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing rpc connection", "error", err)
		}
	}
	c.conn = nil
	c.logger.Info("rpc client closed")
}
