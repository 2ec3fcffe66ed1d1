package mq

// QueueMLRequests — общая durable очередь заданий для ML-воркеров.
const QueueMLRequests = "ml_requests"

// JobPayload — тело задания в очереди ml_requests.
//
// Метаданные (reply-to, correlation id, expiration) передаются
// через свойства AMQP-сообщения, не в теле.
type JobPayload struct {
	// Text — входные данные запроса в текстовом формате.
	Text string `json:"text"`
}

// Reply — тело ответа воркера в приватной очереди клиента.
type Reply struct {
	// Success — признак успешного выполнения.
	Success bool `json:"success"`

	// OutputData — результат. Присутствует при Success=true.
	OutputData string `json:"output_data,omitempty"`

	// Error — описание ошибки. Присутствует при Success=false.
	Error string `json:"error,omitempty"`

	// Metrics — произвольные диагностические метрики выполнения.
	Metrics map[string]any `json:"metrics,omitempty"`

	// ExecutionTimeMs — время выполнения в миллисекундах.
	ExecutionTimeMs *int64 `json:"execution_time_ms,omitempty"`
}
