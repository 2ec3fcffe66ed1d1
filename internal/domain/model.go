package domain

import (
	"strconv"
	"strings"
	"time"
)

// ModelInputType — тип входных данных модели.
type ModelInputType string

const (
	ModelInputText    ModelInputType = "text"
	ModelInputImage   ModelInputType = "image"
	ModelInputTabular ModelInputType = "tabular"
	ModelInputAudio   ModelInputType = "audio"
)

// Valid проверяет, что тип — одно из известных значений.
func (t ModelInputType) Valid() bool {
	switch t {
	case ModelInputText, ModelInputImage, ModelInputTabular, ModelInputAudio:
		return true
	default:
		return false
	}
}

// ModelOutputType — тип выходных данных модели.
type ModelOutputType string

const (
	ModelOutputClassification ModelOutputType = "classification"
	ModelOutputRegression     ModelOutputType = "regression"
	ModelOutputGeneration     ModelOutputType = "generation"
	ModelOutputDetection      ModelOutputType = "detection"
)

// Valid проверяет, что тип — одно из известных значений.
func (t ModelOutputType) Valid() bool {
	switch t {
	case ModelOutputClassification, ModelOutputRegression,
		ModelOutputGeneration, ModelOutputDetection:
		return true
	default:
		return false
	}
}

// Model — ML-модель в каталоге.
type Model struct {
	// ID — идентификатор модели, назначается БД при создании.
	ID int64 `json:"id"`

	// Name — название модели (например, "Qwen2-VL-2B").
	Name string `json:"name"`

	// Version — версия в формате major.minor.patch.
	Version string `json:"version"`

	// InputType — тип входных данных.
	InputType ModelInputType `json:"input_type"`

	// OutputType — тип выходных данных.
	OutputType ModelOutputType `json:"output_type"`

	// CostPerRequest — стоимость одного запроса в условных единицах.
	CostPerRequest float64 `json:"cost_per_request"`

	// Description — описание модели.
	Description string `json:"description,omitempty"`

	// Config — конфигурация модели в JSON.
	Config map[string]any `json:"config,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// CalculateCost возвращает стоимость requestsCount запросов к модели.
func (m *Model) CalculateCost(requestsCount int) float64 {
	return m.CostPerRequest * float64(requestsCount)
}

// ValidVersion проверяет формат версии major.minor.patch.
func ValidVersion(version string) bool {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil || p == "" {
			return false
		}
	}
	return true
}

// ModelSetting — именованный параметр модели (key/value).
type ModelSetting struct {
	ID        int64     `json:"id"`
	ModelID   int64     `json:"model_id"`
	Parameter string    `json:"parameter"`
	Value     string    `json:"parameter_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
