package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/grid-oracle/internal/database"
	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/rating"
)

// PostgresSnapshotRepository implements SnapshotRepository for PostgreSQL.
// Rating maps are stored as JSONB.
type PostgresSnapshotRepository struct {
	db *database.DB
}

// NewPostgresSnapshotRepository creates a new snapshot repository
func NewPostgresSnapshotRepository(db *database.DB) SnapshotRepository {
	return &PostgresSnapshotRepository{db: db}
}

// Save persists a rating snapshot
func (r *PostgresSnapshotRepository) Save(ctx context.Context, snapshot *rating.Snapshot) error {
	driverJSON, err := json.Marshal(snapshot.DriverRatings)
	if err != nil {
		return fmt.Errorf("failed to marshal driver ratings: %w", err)
	}
	teamJSON, err := json.Marshal(snapshot.TeamRatings)
	if err != nil {
		return fmt.Errorf("failed to marshal team ratings: %w", err)
	}

	query := `
		INSERT INTO rating_snapshots (id, version, base, driver_ratings, team_ratings, races_replayed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.Pool().Exec(ctx, query,
		snapshot.ID, snapshot.Version, snapshot.Base, driverJSON, teamJSON,
		snapshot.RacesReplayed, snapshot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rating snapshot: %w", err)
	}

	return nil
}

// Latest retrieves the most recent snapshot
func (r *PostgresSnapshotRepository) Latest(ctx context.Context) (*rating.Snapshot, error) {
	query := `
		SELECT id, version, base, driver_ratings, team_ratings, races_replayed, created_at
		FROM rating_snapshots
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanSnapshot(r.db.Pool().QueryRow(ctx, query))
}

// GetByID retrieves a specific snapshot
func (r *PostgresSnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*rating.Snapshot, error) {
	query := `
		SELECT id, version, base, driver_ratings, team_ratings, races_replayed, created_at
		FROM rating_snapshots
		WHERE id = $1
	`

	return r.scanSnapshot(r.db.Pool().QueryRow(ctx, query, id))
}

func (r *PostgresSnapshotRepository) scanSnapshot(row pgx.Row) (*rating.Snapshot, error) {
	snapshot := &rating.Snapshot{}
	var driverJSON, teamJSON []byte

	err := row.Scan(
		&snapshot.ID, &snapshot.Version, &snapshot.Base, &driverJSON, &teamJSON,
		&snapshot.RacesReplayed, &snapshot.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to query rating snapshot: %w", err)
	}

	if err := json.Unmarshal(driverJSON, &snapshot.DriverRatings); err != nil {
		return nil, fmt.Errorf("failed to parse driver ratings: %w", err)
	}
	if err := json.Unmarshal(teamJSON, &snapshot.TeamRatings); err != nil {
		return nil, fmt.Errorf("failed to parse team ratings: %w", err)
	}

	return snapshot, nil
}
