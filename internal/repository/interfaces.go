package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/rating"
)

// HistoryRepository defines operations for historical race results
type HistoryRepository interface {
	// InsertBatch inserts multiple historical results efficiently
	InsertBatch(ctx context.Context, results []models.HistoricalResult) error

	// GetBySeasons retrieves all results for the given seasons ordered by
	// (year, round, finish_position)
	GetBySeasons(ctx context.Context, seasons []int) ([]models.HistoricalResult, error)

	// GetByRace retrieves the results of one race
	GetByRace(ctx context.Context, year, round int) ([]models.HistoricalResult, error)

	// LatestRound returns the most recent round present for a season
	LatestRound(ctx context.Context, year int) (int, error)
}

// SnapshotRepository defines operations for rating snapshots
type SnapshotRepository interface {
	// Save persists a rating snapshot
	Save(ctx context.Context, snapshot *rating.Snapshot) error

	// Latest retrieves the most recent snapshot
	Latest(ctx context.Context) (*rating.Snapshot, error)

	// GetByID retrieves a specific snapshot
	GetByID(ctx context.Context, id uuid.UUID) (*rating.Snapshot, error)
}

// ForecastRepository defines operations for persisted forecasts
type ForecastRepository interface {
	// Save persists a forecast with its probability rows
	Save(ctx context.Context, forecast *models.Forecast) error

	// GetByID retrieves a forecast
	GetByID(ctx context.Context, id uuid.UUID) (*models.Forecast, error)

	// ListByRace retrieves forecasts for a race, newest first
	ListByRace(ctx context.Context, raceName string, limit int) ([]*models.Forecast, error)
}
