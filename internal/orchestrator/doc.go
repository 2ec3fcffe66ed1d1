// Package orchestrator координирует выполнение одного ML-запроса.
//
// Orchestrator отвечает за:
//   - Валидацию входных данных до каких-либо побочных эффектов
//   - Создание записи о запросе в статусе pending
//   - Отправку задания в очередь и ожидание коррелированного ответа
//   - Доведение записи до терминального статуса (completed/failed)
//     даже при ошибках messaging-слоя
//
// Это сага поверх двух внешних систем (БД и брокер): запись
// создаётся строго до отправки задания и обновляется строго после
// исхода — persisted-состояние никогда не расходится с фактическим
// результатом очереди, кроме двойного сбоя (см. ProcessPredictionRequest).
package orchestrator
