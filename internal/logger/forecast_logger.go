// Package logger provides forecast-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// ForecastLogger provides dedicated logging for simulation runs and rating
// refreshes.
type ForecastLogger struct {
	*logrus.Entry
}

// NewForecastLogger creates a new forecast logger.
func NewForecastLogger(baseLogger *logrus.Logger) *ForecastLogger {
	return &ForecastLogger{
		Entry: baseLogger.WithField("component", "forecast"),
	}
}

// LogForecastRun logs a completed simulation run.
func (fl *ForecastLogger) LogForecastRun(forecastID, raceName, mode, scoreSource string, simulations, entrants, coercedCells int, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"forecast_id":   forecastID,
		"race_name":     raceName,
		"mode":          mode,
		"score_source":  scoreSource,
		"simulations":   simulations,
		"entrants":      entrants,
		"coerced_cells": coercedCells,
		"duration_ms":   durationMs,
	}).Info("Forecast run completed")
}

// LogCacheHit logs a forecast served from cache.
func (fl *ForecastLogger) LogCacheHit(raceName, mode string, simulations int) {
	fl.WithFields(logrus.Fields{
		"race_name":   raceName,
		"mode":        mode,
		"simulations": simulations,
	}).Debug("Forecast served from cache")
}

// LogRatingRefresh logs a historical replay that rebuilt the ratings.
func (fl *ForecastLogger) LogRatingRefresh(races, drivers, teams int, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"races_replayed": races,
		"drivers_rated":  drivers,
		"teams_rated":    teams,
		"duration_ms":    durationMs,
	}).Info("Rating replay completed")
}

// LogGridProjection logs that qualifying data was missing and the grid was
// projected from ratings.
func (fl *ForecastLogger) LogGridProjection(raceName string, entrants int) {
	fl.WithFields(logrus.Fields{
		"race_name": raceName,
		"entrants":  entrants,
	}).Warn("Qualifying unavailable, projecting grid from ratings")
}
