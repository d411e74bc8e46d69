package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/grid-oracle/internal/database"
	"github.com/yourusername/grid-oracle/internal/models"
)

// PostgresHistoryRepository implements HistoryRepository for PostgreSQL
type PostgresHistoryRepository struct {
	db *database.DB
}

// NewPostgresHistoryRepository creates a new history repository
func NewPostgresHistoryRepository(db *database.DB) HistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

// InsertBatch inserts historical results using a high-performance COPY into a
// staging table, then upserts so re-ingested rows replace existing ones.
func (r *PostgresHistoryRepository) InsertBatch(ctx context.Context, results []models.HistoricalResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		CREATE TEMP TABLE historical_results_staging
		(LIKE historical_results INCLUDING DEFAULTS)
		ON COMMIT DROP
	`)
	if err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	columns := []string{"year", "round", "circuit", "driver", "team", "grid", "finish_position", "status"}

	copyFromSource := make([][]interface{}, len(results))
	for i, res := range results {
		copyFromSource[i] = []interface{}{
			res.Year, res.Round, res.Circuit, res.Driver, res.Team, res.Grid, res.FinishPosition, res.Status,
		}
	}

	copyCount, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"historical_results_staging"},
		columns,
		pgx.CopyFromRows(copyFromSource),
	)
	if err != nil {
		return fmt.Errorf("failed to batch insert historical results: %w", err)
	}
	if copyCount != int64(len(results)) {
		return fmt.Errorf("staged %d rows, expected %d", copyCount, len(results))
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO historical_results (year, round, circuit, driver, team, grid, finish_position, status)
		SELECT year, round, circuit, driver, team, grid, finish_position, status
		FROM historical_results_staging
		ON CONFLICT (year, round, driver) DO UPDATE SET
			circuit = EXCLUDED.circuit,
			team = EXCLUDED.team,
			grid = EXCLUDED.grid,
			finish_position = EXCLUDED.finish_position,
			status = EXCLUDED.status
	`)
	if err != nil {
		return fmt.Errorf("failed to upsert historical results: %w", err)
	}

	return tx.Commit(ctx)
}

// GetBySeasons retrieves all results for the given seasons in replay order
func (r *PostgresHistoryRepository) GetBySeasons(ctx context.Context, seasons []int) ([]models.HistoricalResult, error) {
	query := `
		SELECT year, round, circuit, driver, team, grid, finish_position, status
		FROM historical_results
		WHERE year = ANY($1)
		ORDER BY year, round, finish_position
	`

	rows, err := r.db.Pool().Query(ctx, query, seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical results: %w", err)
	}
	defer rows.Close()

	results, err := scanHistoricalResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrNoHistory
	}

	return results, nil
}

// GetByRace retrieves the results of one race
func (r *PostgresHistoryRepository) GetByRace(ctx context.Context, year, round int) ([]models.HistoricalResult, error) {
	query := `
		SELECT year, round, circuit, driver, team, grid, finish_position, status
		FROM historical_results
		WHERE year = $1 AND round = $2
		ORDER BY finish_position
	`

	rows, err := r.db.Pool().Query(ctx, query, year, round)
	if err != nil {
		return nil, fmt.Errorf("failed to query race results: %w", err)
	}
	defer rows.Close()

	results, err := scanHistoricalResults(rows)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.ErrNoHistory
	}

	return results, nil
}

// LatestRound returns the most recent round present for a season
func (r *PostgresHistoryRepository) LatestRound(ctx context.Context, year int) (int, error) {
	query := `SELECT COALESCE(MAX(round), 0) FROM historical_results WHERE year = $1`

	var round int
	if err := r.db.Pool().QueryRow(ctx, query, year).Scan(&round); err != nil {
		return 0, fmt.Errorf("failed to query latest round: %w", err)
	}
	if round == 0 {
		return 0, models.ErrNoHistory
	}

	return round, nil
}

func scanHistoricalResults(rows pgx.Rows) ([]models.HistoricalResult, error) {
	var results []models.HistoricalResult
	for rows.Next() {
		var res models.HistoricalResult
		err := rows.Scan(
			&res.Year, &res.Round, &res.Circuit, &res.Driver,
			&res.Team, &res.Grid, &res.FinishPosition, &res.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan historical result: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical results: %w", err)
	}

	return results, nil
}
