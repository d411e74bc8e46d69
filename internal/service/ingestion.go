package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/datasource"
	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/rating"
	"github.com/yourusername/grid-oracle/internal/repository"
)

// IngestionService pulls historical results from the upstream source,
// persists them, and rebuilds the ratings from the stored history.
type IngestionService struct {
	source     datasource.HistorySource
	history    repository.HistoryRepository
	snapshots  repository.SnapshotRepository
	prediction *PredictionService
	seasons    []int
	log        *logrus.Logger
}

// NewIngestionService wires the ingestion pipeline. history and snapshots
// may be nil when running without a database; results then flow straight
// from the source into the ratings.
func NewIngestionService(
	source datasource.HistorySource,
	history repository.HistoryRepository,
	snapshots repository.SnapshotRepository,
	prediction *PredictionService,
	seasons []int,
	log *logrus.Logger,
) *IngestionService {
	if log == nil {
		log = logrus.New()
	}
	return &IngestionService{
		source:     source,
		history:    history,
		snapshots:  snapshots,
		prediction: prediction,
		seasons:    seasons,
		log:        log,
	}
}

// RefreshRatings runs the full ingest-then-replay cycle: fetch every
// configured season, persist the rows, rebuild the ratings, and snapshot
// the result.
func (s *IngestionService) RefreshRatings(ctx context.Context) error {
	var all []models.HistoricalResult
	for _, year := range s.seasons {
		results, err := s.source.FetchSeason(ctx, year)
		if err != nil {
			return fmt.Errorf("failed to fetch season %d: %w", year, err)
		}
		s.log.WithFields(logrus.Fields{
			"season":  year,
			"results": len(results),
			"source":  s.source.Name(),
		}).Info("Season ingested")
		all = append(all, results...)
	}

	if s.history != nil {
		if err := s.history.InsertBatch(ctx, all); err != nil {
			return fmt.Errorf("failed to persist history: %w", err)
		}
		// Replay from storage so the ratings reflect everything ever
		// ingested, not just this fetch.
		stored, err := s.history.GetBySeasons(ctx, s.seasons)
		if err != nil {
			return fmt.Errorf("failed to load stored history: %w", err)
		}
		all = stored
	}

	if err := s.prediction.RefreshFromHistory(all); err != nil {
		return err
	}

	if s.snapshots != nil {
		snapshot := s.prediction.Snapshot()
		if err := s.snapshots.Save(ctx, snapshot); err != nil {
			return fmt.Errorf("failed to save rating snapshot: %w", err)
		}
		s.log.WithField("snapshot_id", snapshot.ID).Info("Rating snapshot saved")
	}

	return nil
}

// RestoreLatestSnapshot loads the newest persisted ratings, if any.
func (s *IngestionService) RestoreLatestSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return models.ErrSnapshotNotFound
	}
	snapshot, err := s.snapshots.Latest(ctx)
	if err != nil {
		return err
	}
	tracker, err := s.restoreTracker(snapshot)
	if err != nil {
		return err
	}

	// Derived statistics are rebuilt from stored history; without it the
	// documented defaults apply.
	stats := s.restoreStats(ctx)
	s.prediction.LoadRatings(tracker, stats, snapshot.RacesReplayed)
	return nil
}

func (s *IngestionService) restoreTracker(snapshot *rating.Snapshot) (*rating.Tracker, error) {
	tracker, err := rating.FromSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to restore tracker: %w", err)
	}
	return tracker, nil
}

func (s *IngestionService) restoreStats(ctx context.Context) *rating.DriverStats {
	if s.history == nil {
		return rating.NewDriverStats()
	}
	results, err := s.history.GetBySeasons(ctx, s.seasons)
	if err != nil {
		s.log.WithError(err).Warn("No stored history for statistics, using defaults")
		return rating.NewDriverStats()
	}
	return rating.StatsFromHistory(results)
}
