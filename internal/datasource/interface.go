// Package datasource provides the upstream providers of historical race
// results used to build ratings. All retry and rate-limit policy lives here;
// the simulation core never performs I/O.
package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/grid-oracle/internal/models"
)

// HistorySource defines the interface for fetching historical results from
// an external provider
type HistorySource interface {
	// FetchSeason retrieves all race results for one season in
	// chronological order
	FetchSeason(ctx context.Context, year int) ([]models.HistoricalResult, error)

	// Name returns the name of the data source
	Name() string
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string
	Code    string
	Message string
	Err     error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
)

var (
	// ErrUnknownSource is returned by the factory for an unrecognized
	// source kind.
	ErrUnknownSource = errors.New("unknown history source")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
