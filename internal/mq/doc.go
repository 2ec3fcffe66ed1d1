// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - rpc.go        — RPC-клиент: запрос в общую очередь, ответ в приватную
//   - consumer.go   — потребление заданий из очереди (сторона воркера)
//   - wire.go       — формат сообщений (job и reply)
//
// Паттерн — классический RPC поверх брокера: клиент публикует задание
// в общую durable очередь ml_requests с reply-to и correlation id,
// воркер отвечает в приватную очередь клиента с тем же correlation id.
package mq
