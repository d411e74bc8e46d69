package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/grid-oracle/internal/config"
)

const seasonPayload = `{
	"season": 2024,
	"races": [
		{
			"round": 2,
			"circuit": "Jeddah",
			"results": [
				{"driver": "VER", "team": "Red Bull", "grid": 1, "position": 1, "status": "Finished"},
				{"driver": "PER", "team": "Red Bull", "grid": 3, "position": 2, "status": "Finished"}
			]
		},
		{
			"round": 1,
			"circuit": "Bahrain",
			"results": [
				{"driver": "VER", "team": "Red Bull", "grid": 1, "position": 1, "status": "Finished"},
				{"driver": "LEC", "team": "Ferrari", "grid": 2, "position": 16, "status": "Accident"}
			]
		}
	]
}`

func TestHTTPSourceFetchSeason(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/seasons/2024/results", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(seasonPayload))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	source := NewHTTPSource(client, server.URL+"/api", "secret-key", nil)

	results, err := source.FetchSeason(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "Bearer secret-key", gotAuth)

	// Races come back in round order regardless of payload order
	assert.Equal(t, 1, results[0].Round)
	assert.Equal(t, "Bahrain", results[0].Circuit)
	assert.Equal(t, 2, results[2].Round)

	assert.Equal(t, "LEC", results[1].Driver)
	assert.Equal(t, "Accident", results[1].Status)
}

func TestHTTPSourceSeasonNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	source := NewHTTPSource(client, server.URL, "", nil)

	_, err := source.FetchSeason(context.Background(), 1990)
	require.Error(t, err)

	var srcErr SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, ErrCodeNotFound, srcErr.Code)
}

func TestHTTPSourceInvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), nil)
	source := NewHTTPSource(client, server.URL, "", nil)

	_, err := source.FetchSeason(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestFileSourceFetchSeason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	payload := `[
		{"year": 2024, "round": 2, "circuit": "Jeddah", "driver": "VER", "team": "Red Bull", "grid": 1, "finish_position": 1, "status": "Finished"},
		{"year": 2024, "round": 1, "circuit": "Bahrain", "driver": "VER", "team": "Red Bull", "grid": 1, "finish_position": 1, "status": "Finished"},
		{"year": 2023, "round": 1, "circuit": "Bahrain", "driver": "VER", "team": "Red Bull", "grid": 1, "finish_position": 1, "status": "Finished"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	source := NewFileSource(path)
	results, err := source.FetchSeason(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 1, results[0].Round)
	assert.Equal(t, 2, results[1].Round)
}

func TestFileSourceMissingSeason(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	source := NewFileSource(path)
	_, err := source.FetchSeason(context.Background(), 2024)
	require.Error(t, err)

	var srcErr SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, ErrCodeNotFound, srcErr.Code)
}

func TestNewFromConfig(t *testing.T) {
	fileCfg := &config.HistoryConfig{Source: "file", FilePath: "testdata/history.json", TimeoutSeconds: 5, RequestsPerSecond: 1}
	source, err := NewFromConfig(fileCfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "results_file", source.Name())

	httpCfg := &config.HistoryConfig{Source: "http", BaseURL: "http://localhost:8000", TimeoutSeconds: 5, RequestsPerSecond: 1}
	source, err = NewFromConfig(httpCfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "results_api", source.Name())

	_, err = NewFromConfig(&config.HistoryConfig{Source: "carrier-pigeon"}, nil)
	assert.ErrorIs(t, err, ErrUnknownSource)
}
