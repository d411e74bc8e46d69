// Package metrics provides the centralized Prometheus metrics registry for
// the forecast engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ForecastRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "forecast_runs_total",
		Help:      "Total number of completed forecast runs",
	}, []string{"mode"})
	SimulationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "simulations_total",
		Help:      "Total number of simulated races across all runs",
	})
	CoercedCellsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "coerced_cells_total",
		Help:      "Total number of model outputs coerced to DNF at the boundary",
	})
	RatingReplaysTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "rating_replays_total",
		Help:      "Total number of historical rating replays",
	})
	ForecastCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "forecast_cache_hits_total",
		Help:      "Total number of forecasts served from cache",
	})
	HistoryFetchErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grid_oracle",
		Name:      "history_fetch_errors_total",
		Help:      "Total number of failed historical data fetches",
	})
)

// Gauge metrics
var (
	RatedDrivers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "grid_oracle",
		Name:      "rated_drivers",
		Help:      "Number of drivers with a current Elo rating",
	})
	RatedTeams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "grid_oracle",
		Name:      "rated_teams",
		Help:      "Number of teams with a current Elo rating",
	})
	RacesReplayed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "grid_oracle",
		Name:      "races_replayed",
		Help:      "Number of historical races in the current rating snapshot",
	})
)

// Histogram metrics
var (
	ForecastDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "grid_oracle",
		Name:      "forecast_duration_seconds",
		Help:      "Duration of forecast runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	}, []string{"mode"})
	ReplayDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "grid_oracle",
		Name:      "replay_duration_seconds",
		Help:      "Duration of historical rating replays in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ForecastRunsTotal)
		registry.MustRegister(SimulationsTotal)
		registry.MustRegister(CoercedCellsTotal)
		registry.MustRegister(RatingReplaysTotal)
		registry.MustRegister(ForecastCacheHitsTotal)
		registry.MustRegister(HistoryFetchErrorsTotal)

		registry.MustRegister(RatedDrivers)
		registry.MustRegister(RatedTeams)
		registry.MustRegister(RacesReplayed)

		registry.MustRegister(ForecastDuration)
		registry.MustRegister(ReplayDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordForecastRun records one completed forecast run.
func RecordForecastRun(mode string, simulations, coercedCells int, durationSeconds float64) {
	ForecastRunsTotal.WithLabelValues(mode).Inc()
	SimulationsTotal.Add(float64(simulations))
	CoercedCellsTotal.Add(float64(coercedCells))
	ForecastDuration.WithLabelValues(mode).Observe(durationSeconds)
}

// RecordCacheHit records a forecast served from cache.
func RecordCacheHit() {
	ForecastCacheHitsTotal.Inc()
}

// RecordRatingReplay records a completed historical replay.
func RecordRatingReplay(races, drivers, teams int, durationSeconds float64) {
	RatingReplaysTotal.Inc()
	RacesReplayed.Set(float64(races))
	RatedDrivers.Set(float64(drivers))
	RatedTeams.Set(float64(teams))
	ReplayDuration.Observe(durationSeconds)
}

// RecordHistoryFetchError records a failed upstream data fetch.
func RecordHistoryFetchError() {
	HistoryFetchErrorsTotal.Inc()
}
