package worker

import (
	"context"
	"fmt"
	"strings"
)

// Predictor — интерфейс модели, выполняющей inference.
// Реализация может оборачивать локальную модель, внешний HTTP-сервис
// или что угодно ещё — воркеру важен только контракт.
type Predictor interface {
	// Predict выполняет предсказание для текстового входа.
	// Возвращает результат и произвольные метрики выполнения.
	Predict(ctx context.Context, text string) (string, map[string]any, error)
}

// EchoPredictor — предиктор по умолчанию для локальной разработки
// и тестов: возвращает детерминированный ответ на основе входа.
type EchoPredictor struct{}

// Predict возвращает эхо входного текста.
func (EchoPredictor) Predict(_ context.Context, text string) (string, map[string]any, error) {
	metrics := map[string]any{
		"input_len": len(text),
	}
	return fmt.Sprintf("echo: %s", strings.TrimSpace(text)), metrics, nil
}

// PredictorFunc — адаптер функции к интерфейсу Predictor.
type PredictorFunc func(ctx context.Context, text string) (string, map[string]any, error)

// Predict вызывает f.
func (f PredictorFunc) Predict(ctx context.Context, text string) (string, map[string]any, error) {
	return f(ctx, text)
}
