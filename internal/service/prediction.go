// Package service orchestrates the forecast pipeline: resolving entrants
// from ratings and history, dispatching to a simulator, aggregating the
// outcome, and caching and persisting the result.
package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/config"
	"github.com/yourusername/grid-oracle/internal/logger"
	"github.com/yourusername/grid-oracle/internal/metrics"
	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/rating"
	"github.com/yourusername/grid-oracle/internal/repository"
	"github.com/yourusername/grid-oracle/internal/simulate"
)

// Simulation modes accepted by Predict.
const (
	ModeRank = "rank"
	ModeLaps = "laps"
)

// PredictionRequest describes one forecast to produce. Zero values fall back
// to the configured defaults.
type PredictionRequest struct {
	RaceName    string
	Circuit     string
	Weather     models.Weather
	Mode        string
	Simulations int
	Laps        int
	Seed        int64
	Entries     []EntryRequest
}

// PredictionService turns prediction requests into forecasts. Ratings are
// swapped atomically by refreshes while predictions read a consistent pair.
type PredictionService struct {
	cfg       *config.Config
	rank      *simulate.RankPerturbationSimulator
	lap       *simulate.LapAccumulationSimulator
	forecasts repository.ForecastRepository
	cache     *gocache.Cache
	log       *logrus.Logger
	flog      *logger.ForecastLogger

	mu            sync.RWMutex
	tracker       *rating.Tracker
	stats         *rating.DriverStats
	racesReplayed int
}

// NewPredictionService wires the service. forecasts may be nil when no
// persistence is configured.
func NewPredictionService(
	cfg *config.Config,
	rank *simulate.RankPerturbationSimulator,
	lap *simulate.LapAccumulationSimulator,
	forecasts repository.ForecastRepository,
	log *logrus.Logger,
) *PredictionService {
	if log == nil {
		log = logrus.New()
	}
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	cleanup := time.Duration(cfg.Cache.CleanupInterval) * time.Second
	return &PredictionService{
		cfg:       cfg,
		rank:      rank,
		lap:       lap,
		forecasts: forecasts,
		cache:     gocache.New(ttl, cleanup),
		log:       log,
		flog:      logger.NewForecastLogger(log),
		tracker:   rating.NewTracker(rating.DefaultBase),
		stats:     rating.NewDriverStats(),
	}
}

// LoadRatings installs a replayed rating state.
func (s *PredictionService) LoadRatings(tracker *rating.Tracker, stats *rating.DriverStats, racesReplayed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker = tracker
	s.stats = stats
	s.racesReplayed = racesReplayed
}

// RefreshFromHistory replays the full history and swaps in the fresh
// ratings. Cached forecasts are dropped since their inputs changed.
func (s *PredictionService) RefreshFromHistory(results []models.HistoricalResult) error {
	start := time.Now()
	tracker, stats, err := rating.Replay(results, s.log)
	if err != nil {
		return fmt.Errorf("rating replay failed: %w", err)
	}

	races := len(models.GroupByRace(results))
	s.LoadRatings(tracker, stats, races)
	s.cache.Flush()

	elapsed := time.Since(start)
	metrics.RecordRatingReplay(races, tracker.DriverCount(), tracker.TeamCount(), elapsed.Seconds())
	s.flog.LogRatingRefresh(races, tracker.DriverCount(), tracker.TeamCount(), float64(elapsed.Milliseconds()))
	return nil
}

// Snapshot captures the current ratings for persistence.
func (s *PredictionService) Snapshot() *rating.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tracker.Snapshot(s.racesReplayed)
}

// Predict produces a forecast for one race, serving repeat requests from
// cache.
func (s *PredictionService) Predict(ctx context.Context, req PredictionRequest) (*models.Forecast, error) {
	req = s.applyDefaults(req)

	if len(req.Entries) == 0 {
		return nil, models.ErrNoEntrants
	}
	if !req.Weather.Valid() {
		return nil, models.ErrInvalidWeather
	}

	key := cacheKey(req)
	if cached, ok := s.cache.Get(key); ok {
		metrics.RecordCacheHit()
		s.flog.LogCacheHit(req.RaceName, req.Mode, req.Simulations)
		return cached.(*models.Forecast), nil
	}

	s.mu.RLock()
	tracker, stats := s.tracker, s.stats
	s.mu.RUnlock()

	entrants, gridSource := buildEntrants(req.Entries, req.Circuit, tracker, stats)
	if gridSource == GridSourceProjected {
		s.flog.LogGridProjection(req.RaceName, len(entrants))
	}

	start := time.Now()
	outcome, scoreSource, err := s.runSimulation(req, entrants)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	forecast := &models.Forecast{
		ID:           uuid.New(),
		RaceName:     req.RaceName,
		Weather:      req.Weather,
		Mode:         req.Mode,
		Simulations:  req.Simulations,
		Seed:         req.Seed,
		ScoreSource:  scoreSource,
		GridSource:   gridSource,
		CoercedCells: outcome.CoercedCells,
		Rows:         simulate.Aggregate(outcome, entrants),
		CreatedAt:    time.Now().UTC(),
	}

	metrics.RecordForecastRun(req.Mode, req.Simulations, outcome.CoercedCells, elapsed.Seconds())
	s.flog.LogForecastRun(
		forecast.ID.String(), req.RaceName, req.Mode, string(scoreSource),
		req.Simulations, len(entrants), outcome.CoercedCells,
		float64(elapsed.Milliseconds()),
	)

	if s.forecasts != nil {
		if err := s.forecasts.Save(ctx, forecast); err != nil {
			// A persistence failure should not cost the caller the result.
			s.log.WithError(err).Warn("Failed to persist forecast")
		}
	}

	s.cache.SetDefault(key, forecast)
	return forecast, nil
}

func (s *PredictionService) runSimulation(req PredictionRequest, entrants []models.RaceEntrant) (*simulate.Outcome, models.ScoreSource, error) {
	switch req.Mode {
	case ModeRank:
		result, err := s.rank.Run(simulate.RankPerturbationConfig{
			Simulations:   req.Simulations,
			Weather:       req.Weather,
			Seed:          req.Seed,
			Workers:       s.cfg.Simulation.Workers,
			AllowFallback: s.cfg.Simulation.AllowFallback,
		}, entrants)
		if err != nil {
			return nil, "", err
		}
		return result.Outcome, result.ScoreSource, nil
	case ModeLaps:
		outcome, err := s.lap.Run(simulate.LapAccumulationConfig{
			Simulations: req.Simulations,
			Laps:        req.Laps,
			Seed:        req.Seed,
			Workers:     s.cfg.Simulation.Workers,
		}, entrants)
		if err != nil {
			return nil, "", err
		}
		return outcome, models.ScoreSourceLapModel, nil
	default:
		return nil, "", fmt.Errorf("unknown simulation mode %q", req.Mode)
	}
}

func (s *PredictionService) applyDefaults(req PredictionRequest) PredictionRequest {
	if req.Mode == "" {
		req.Mode = s.cfg.Simulation.Mode
	}
	if req.Simulations <= 0 {
		req.Simulations = s.cfg.Simulation.Simulations
	}
	if req.Laps <= 0 {
		req.Laps = s.cfg.Simulation.Laps
	}
	if req.Weather == "" {
		req.Weather = models.WeatherDry
	}
	if req.Seed == 0 {
		req.Seed = s.cfg.Simulation.Seed
	}
	return req
}

// cacheKey covers every input that shapes the forecast. The entry list is
// folded in as a digest so a post-qualifying grid change, a driver swap, or a
// different circuit can never resurface a stale cached table.
func cacheKey(req PredictionRequest) string {
	h := fnv.New64a()
	for _, e := range req.Entries {
		fmt.Fprintf(h, "%s|%s|%d;", e.Driver, e.Team, e.GridPosition)
	}
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d|%016x",
		req.RaceName, req.Circuit, req.Weather, req.Mode,
		req.Simulations, req.Laps, req.Seed, h.Sum64())
}
