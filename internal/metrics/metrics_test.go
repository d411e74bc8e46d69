package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordForecastRun(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name         string
		mode         string
		simulations  int
		coercedCells int
	}{
		{
			name:        "rank mode run",
			mode:        "rank",
			simulations: 5000,
		},
		{
			name:        "laps mode run",
			mode:        "laps",
			simulations: 2000,
		},
		{
			name:         "run with coerced cells",
			mode:         "rank",
			simulations:  1000,
			coercedCells: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				RecordForecastRun(tt.mode, tt.simulations, tt.coercedCells, 0.25)
			})
		})
	}
}

func TestRecordCacheHit(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCacheHit()
	})
}

func TestRecordRatingReplay(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordRatingReplay(44, 22, 10, 1.5)
	})
}

func TestRecordHistoryFetchError(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordHistoryFetchError()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func BenchmarkRecordForecastRun(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordForecastRun("rank", 5000, 0, 0.25)
	}
}

func BenchmarkRecordCacheHit(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordCacheHit()
	}
}
