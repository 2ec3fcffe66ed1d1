package mq

import "errors"

// Ошибки RPC-клиента. Caller обязан различать их: timeout не стоит
// повторять вслепую (задание может ещё выполниться на стороне воркера),
// ошибку соединения можно retry-ить с backoff.
var (
	// ErrTimeout — ответ не получен в отведённое время.
	ErrTimeout = errors.New("no reply received within timeout")

	// ErrConnection — брокер недоступен или соединение оборвалось.
	ErrConnection = errors.New("broker connection error")

	// ErrClosed — клиент закрыт.
	ErrClosed = errors.New("rpc client closed")
)
