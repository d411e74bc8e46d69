package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/grid-oracle/internal/database"
	"github.com/yourusername/grid-oracle/internal/models"
)

// PostgresForecastRepository implements ForecastRepository for PostgreSQL.
// The probability rows are stored as a JSONB document alongside the run
// provenance columns.
type PostgresForecastRepository struct {
	db *database.DB
}

// NewPostgresForecastRepository creates a new forecast repository
func NewPostgresForecastRepository(db *database.DB) ForecastRepository {
	return &PostgresForecastRepository{db: db}
}

// Save persists a forecast with its probability rows
func (r *PostgresForecastRepository) Save(ctx context.Context, forecast *models.Forecast) error {
	rowsJSON, err := json.Marshal(forecast.Rows)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast rows: %w", err)
	}

	query := `
		INSERT INTO forecasts (id, race_name, weather, mode, simulations, seed, score_source, grid_source, coerced_cells, rows, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.Pool().Exec(ctx, query,
		forecast.ID, forecast.RaceName, forecast.Weather, forecast.Mode,
		forecast.Simulations, forecast.Seed, forecast.ScoreSource,
		forecast.GridSource, forecast.CoercedCells, rowsJSON, forecast.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert forecast: %w", err)
	}

	return nil
}

// GetByID retrieves a forecast
func (r *PostgresForecastRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Forecast, error) {
	query := `
		SELECT id, race_name, weather, mode, simulations, seed, score_source, grid_source, coerced_cells, rows, created_at
		FROM forecasts
		WHERE id = $1
	`

	forecast, err := scanForecast(r.db.Pool().QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	return forecast, nil
}

// ListByRace retrieves forecasts for a race, newest first
func (r *PostgresForecastRepository) ListByRace(ctx context.Context, raceName string, limit int) ([]*models.Forecast, error) {
	query := `
		SELECT id, race_name, weather, mode, simulations, seed, score_source, grid_source, coerced_cells, rows, created_at
		FROM forecasts
		WHERE race_name = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool().Query(ctx, query, raceName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []*models.Forecast
	for rows.Next() {
		forecast, err := scanForecast(rows)
		if err != nil {
			return nil, err
		}
		forecasts = append(forecasts, forecast)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating forecasts: %w", err)
	}

	return forecasts, nil
}

func scanForecast(row pgx.Row) (*models.Forecast, error) {
	forecast := &models.Forecast{}
	var rowsJSON []byte

	err := row.Scan(
		&forecast.ID, &forecast.RaceName, &forecast.Weather, &forecast.Mode,
		&forecast.Simulations, &forecast.Seed, &forecast.ScoreSource,
		&forecast.GridSource, &forecast.CoercedCells, &rowsJSON, &forecast.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrForecastNotFound
		}
		return nil, fmt.Errorf("failed to query forecast: %w", err)
	}

	if err := json.Unmarshal(rowsJSON, &forecast.Rows); err != nil {
		return nil, fmt.Errorf("failed to parse forecast rows: %w", err)
	}

	return forecast, nil
}
