// Package api содержит HTTP API сервер.
//
// Структура:
//   - handler.go             — Handler с DI (репозитории, оркестратор, logger)
//   - routes.go              — регистрация маршрутов
//   - middleware.go          — middleware (logging, recovery, auth)
//   - response.go            — унифицированные JSON-ответы и обработка ошибок
//   - dto.go                 — Data Transfer Objects (request/response)
//   - auth_handler.go        — регистрация и вход (/auth)
//   - user_handler.go        — обработчики для /users
//   - transaction_handler.go — пополнение, списание, история транзакций
//   - model_handler.go       — каталог моделей и их настройки
//   - prediction_handler.go  — создание ML-запроса и чтение результата
//   - chat_handler.go        — чат поверх оркестратора с историей сессии
//
// API предоставляет REST endpoints для управления пользователями,
// балансами, каталогом моделей и ML-запросами.
package api
