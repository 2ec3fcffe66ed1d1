package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sijin77/my-ml-app/internal/domain"
)

// ModelRepo — репозиторий для каталога ML-моделей и их настроек.
type ModelRepo struct {
	pool *pgxpool.Pool
}

// NewModelRepo создаёт новый ModelRepo.
func NewModelRepo(pool *pgxpool.Pool) *ModelRepo {
	return &ModelRepo{pool: pool}
}

const modelColumns = `
	id, name, version, input_type, output_type, cost_per_request,
	description, config, created_at, updated_at
`

// Create создаёт новую модель.
func (r *ModelRepo) Create(ctx context.Context, model *domain.Model) error {
	configJSON, err := json.Marshal(model.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	query := `
		INSERT INTO models (name, version, input_type, output_type, cost_per_request, description, config)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		model.Name,
		model.Version,
		model.InputType,
		model.OutputType,
		model.CostPerRequest,
		nullString(model.Description),
		configJSON,
	).Scan(&model.ID, &model.CreatedAt, &model.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert model: %w", err)
	}
	return nil
}

// GetByID возвращает модель по ID.
func (r *ModelRepo) GetByID(ctx context.Context, id int64) (*domain.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE id = $1`
	return scanModel(r.pool.QueryRow(ctx, query, id))
}

// List возвращает модели постранично.
func (r *ModelRepo) List(ctx context.Context, limit, offset int) ([]domain.Model, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM models
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// ListByInputType возвращает модели с указанным типом входных данных.
func (r *ModelRepo) ListByInputType(ctx context.Context, inputType domain.ModelInputType, limit int) ([]domain.Model, error) {
	query := `
		SELECT ` + modelColumns + `
		FROM models
		WHERE input_type = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, inputType, limit)
}

// list выполняет запрос и сканирует результат в слайс.
func (r *ModelRepo) list(ctx context.Context, query string, args ...any) ([]domain.Model, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var models []domain.Model
	for rows.Next() {
		m, err := scanModelFromRows(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}
	return models, rows.Err()
}

// --- Настройки моделей ---

// GetSettings возвращает настройки модели.
func (r *ModelRepo) GetSettings(ctx context.Context, modelID int64) ([]domain.ModelSetting, error) {
	query := `
		SELECT id, model_id, parameter, parameter_value, created_at, updated_at
		FROM model_settings
		WHERE model_id = $1
		ORDER BY parameter ASC
	`
	rows, err := r.pool.Query(ctx, query, modelID)
	if err != nil {
		return nil, fmt.Errorf("list model settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.ModelSetting
	for rows.Next() {
		var s domain.ModelSetting
		err := rows.Scan(&s.ID, &s.ModelID, &s.Parameter, &s.Value, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan model setting: %w", err)
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// UpsertSettings массово создаёт или обновляет настройки модели.
// Возвращает ErrNotFound, если модели не существует.
func (r *ModelRepo) UpsertSettings(ctx context.Context, modelID int64, settings map[string]string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM models WHERE id = $1)`, modelID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check model: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	for parameter, value := range settings {
		_, err := tx.Exec(ctx, `
			INSERT INTO model_settings (model_id, parameter, parameter_value)
			VALUES ($1, $2, $3)
			ON CONFLICT (model_id, parameter)
			DO UPDATE SET parameter_value = EXCLUDED.parameter_value, updated_at = now()
		`, modelID, parameter, value)
		if err != nil {
			return fmt.Errorf("upsert setting %s: %w", parameter, err)
		}
	}

	return tx.Commit(ctx)
}

// --- Helpers ---

// scanModel сканирует одну строку в Model.
func scanModel(row pgx.Row) (*domain.Model, error) {
	var m domain.Model
	var description *string
	var configJSON []byte

	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Version,
		&m.InputType,
		&m.OutputType,
		&m.CostPerRequest,
		&description,
		&configJSON,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan model: %w", err)
	}

	if description != nil {
		m.Description = *description
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &m.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return &m, nil
}

// scanModelFromRows сканирует строку из rows в Model.
func scanModelFromRows(rows pgx.Rows) (*domain.Model, error) {
	var m domain.Model
	var description *string
	var configJSON []byte

	err := rows.Scan(
		&m.ID,
		&m.Name,
		&m.Version,
		&m.InputType,
		&m.OutputType,
		&m.CostPerRequest,
		&description,
		&configJSON,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan model: %w", err)
	}

	if description != nil {
		m.Description = *description
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &m.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return &m, nil
}
