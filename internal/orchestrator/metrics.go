package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики исходов обработки запросов.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mlapp_prediction_requests_total",
		Help: "Prediction requests by terminal outcome",
	}, []string{"outcome"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mlapp_prediction_request_duration_seconds",
		Help:    "End-to-end prediction request duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Возможные значения label outcome.
const (
	outcomeCompleted  = "completed"
	outcomeFailed     = "failed"
	outcomeTimeout    = "timeout"
	outcomeConnection = "connection_error"
)
