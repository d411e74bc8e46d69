package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/metrics"
	"github.com/yourusername/grid-oracle/internal/models"
)

const httpSourceName = "results_api"

// HTTPSource fetches season results from a results API over HTTP
type HTTPSource struct {
	client  *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	logger  *logrus.Logger
}

// NewHTTPSource creates a history source backed by a results API
func NewHTTPSource(client *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *HTTPSource {
	if logger == nil {
		logger = logrus.New()
	}
	return &HTTPSource{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

// Name returns the name of the data source
func (s *HTTPSource) Name() string {
	return httpSourceName
}

// seasonResponse is the wire format of the season results endpoint
type seasonResponse struct {
	Season int `json:"season"`
	Races  []struct {
		Round   int    `json:"round"`
		Circuit string `json:"circuit"`
		Results []struct {
			Driver   string `json:"driver"`
			Team     string `json:"team"`
			Grid     int    `json:"grid"`
			Position int    `json:"position"`
			Status   string `json:"status"`
		} `json:"results"`
	} `json:"races"`
}

// FetchSeason retrieves all race results for one season
func (s *HTTPSource) FetchSeason(ctx context.Context, year int) ([]models.HistoricalResult, error) {
	url := fmt.Sprintf("%s/seasons/%d/results", s.baseURL, year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewSourceError(httpSourceName, ErrCodeNetworkError, "failed to build request", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		metrics.RecordHistoryFetchError()
		return nil, NewSourceError(httpSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewSourceError(httpSourceName, ErrCodeNotFound, fmt.Sprintf("season %d not found", year), nil)
	case resp.StatusCode != http.StatusOK:
		metrics.RecordHistoryFetchError()
		return nil, NewSourceError(httpSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var payload seasonResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordHistoryFetchError()
		return nil, NewSourceError(httpSourceName, ErrCodeInvalidData, "failed to decode season payload", err)
	}

	results := flattenSeason(year, payload)
	s.logger.WithFields(logrus.Fields{
		"season":  year,
		"races":   len(payload.Races),
		"results": len(results),
	}).Debug("Fetched season results")

	return results, nil
}

// flattenSeason converts the nested wire format into replay-ordered rows
func flattenSeason(year int, payload seasonResponse) []models.HistoricalResult {
	races := payload.Races
	sort.SliceStable(races, func(i, j int) bool { return races[i].Round < races[j].Round })

	var results []models.HistoricalResult
	for _, race := range races {
		for _, res := range race.Results {
			results = append(results, models.HistoricalResult{
				Year:           year,
				Round:          race.Round,
				Circuit:        race.Circuit,
				Driver:         res.Driver,
				Team:           res.Team,
				Grid:           res.Grid,
				FinishPosition: res.Position,
				Status:         res.Status,
			})
		}
	}
	return results
}
