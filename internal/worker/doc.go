// Package worker выполняет ML-задания из очереди.
//
// Worker — stateless компонент системы, который:
//   - Потребляет задания из durable очереди ml_requests (prefetch 1)
//   - Выполняет inference через Predictor
//   - Публикует ответ в reply-to задания с тем же correlation id
//
// Workers масштабируются горизонтально — несколько экземпляров
// потребляют из одной очереди. Задание без reply-to обрабатывается,
// но ответ не отправляется (клиент уже не ждёт).
//
// Ошибки предсказания не роняют consumer: они превращаются в ответ
// {"success": false, "error": ...}, чтобы клиент получил терминальный
// исход вместо таймаута.
package worker
