package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFairWinOdds(t *testing.T) {
	row := OutcomeProbability{WinPct: 40.0}
	odds, ok := row.FairWinOdds()
	require.True(t, ok)
	assert.Equal(t, "2.5", odds.String())

	row.WinPct = 33.3
	odds, ok = row.FairWinOdds()
	require.True(t, ok)
	assert.Equal(t, "3", odds.String())

	row.WinPct = 0
	_, ok = row.FairWinOdds()
	assert.False(t, ok)
}

func TestExplainTiers(t *testing.T) {
	row := OutcomeProbability{Grid: 1}
	row.Explain(1650, 1600)
	assert.Contains(t, row.Explanation, "Elite Elo (1650)")
	assert.Contains(t, row.Explanation, "Front Row (P1)")
	assert.Contains(t, row.Explanation, "Top Team")

	row = OutcomeProbability{Grid: 15}
	row.Explain(1480, 1500)
	assert.Contains(t, row.Explanation, "Elo 1480")
	assert.Contains(t, row.Explanation, "Back Grid (P15)")
	assert.NotContains(t, row.Explanation, "Top Team")
}

func TestWeather(t *testing.T) {
	assert.True(t, WeatherDry.Valid())
	assert.True(t, WeatherWet.Valid())
	assert.False(t, Weather("Hail").Valid())

	assert.Equal(t, 1.0, WeatherDry.ChaosMultiplier())
	assert.Equal(t, 1.5, WeatherWet.ChaosMultiplier())
	assert.Equal(t, 1.5, WeatherWet.DNFMultiplier())
}

func TestHistoricalResultClassification(t *testing.T) {
	finished := HistoricalResult{FinishPosition: 3, Status: "Finished"}
	assert.True(t, finished.Classified())
	assert.Equal(t, 3, finished.EffectivePosition())

	lapped := HistoricalResult{FinishPosition: 12, Status: "+1 Lap"}
	assert.True(t, lapped.Classified())

	retired := HistoricalResult{FinishPosition: 0, Status: "Engine"}
	assert.False(t, retired.Classified())
	assert.Equal(t, 20, retired.EffectivePosition())
}

func TestLookupTrackDNA(t *testing.T) {
	monaco := LookupTrackDNA("Monaco Grand Prix")
	assert.Equal(t, "Street_Slow", monaco.Type)
	assert.Equal(t, 1, monaco.Overtaking)

	unknown := LookupTrackDNA("Circuit of Nowhere")
	assert.Equal(t, "Balanced", unknown.Type)
	assert.Equal(t, 5, unknown.Overtaking)
}

func TestRaceEntrantDerivedFactors(t *testing.T) {
	strong := RaceEntrant{RecentForm: 1.0}
	weak := RaceEntrant{RecentForm: 0.0}

	assert.InDelta(t, 0.99, strong.PerformanceWeight(), 1e-9)
	assert.InDelta(t, 1.01, weak.PerformanceWeight(), 1e-9)
	assert.InDelta(t, 0.2, strong.LapNoiseSigma(), 1e-9)
	assert.InDelta(t, 0.5, weak.LapNoiseSigma(), 1e-9)
}
