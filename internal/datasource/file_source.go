package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/yourusername/grid-oracle/internal/models"
)

const fileSourceName = "results_file"

// FileSource reads historical results from a local JSON file, primarily for
// offline replays and tests. The file holds a flat array of results across
// any number of seasons.
type FileSource struct {
	path string
}

// NewFileSource creates a history source backed by a JSON file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns the name of the data source
func (s *FileSource) Name() string {
	return fileSourceName
}

// FetchSeason retrieves all race results for one season
func (s *FileSource) FetchSeason(ctx context.Context, year int) ([]models.HistoricalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, NewSourceError(fileSourceName, ErrCodeNotFound, "failed to read results file", err)
	}

	var all []models.HistoricalResult
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, NewSourceError(fileSourceName, ErrCodeInvalidData, "failed to parse results file", err)
	}

	var results []models.HistoricalResult
	for _, res := range all {
		if res.Year == year {
			results = append(results, res)
		}
	}
	if len(results) == 0 {
		return nil, NewSourceError(fileSourceName, ErrCodeNotFound, fmt.Sprintf("season %d not found", year), nil)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Round != results[j].Round {
			return results[i].Round < results[j].Round
		}
		return results[i].FinishPosition < results[j].FinishPosition
	})

	return results, nil
}
