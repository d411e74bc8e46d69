package simulate

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/models"
)

// RankingScorer is the injected stand-in for a trained ranking model: it
// returns one base score per entrant, higher meaning a stronger predicted
// finish. When absent, the simulator falls back to a documented Elo/grid
// heuristic and surfaces that choice on the result.
type RankingScorer func(entrants []models.RaceEntrant) []float64

// RankPerturbationConfig configures one rank-perturbation run.
type RankPerturbationConfig struct {
	Simulations   int
	Weather       models.Weather
	Seed          int64
	Workers       int
	AllowFallback bool
}

// RankResult couples the outcome counts with provenance about the scoring
// path that produced the base ordering.
type RankResult struct {
	*Outcome
	ScoreSource models.ScoreSource
	BaseRanks   []int
}

// RankPerturbationSimulator perturbs a deterministic base ordering with
// residual noise drawn from historical prediction errors, injecting DNFs
// per entrant reliability.
type RankPerturbationSimulator struct {
	pool   *ResidualPool
	scorer RankingScorer
	logger *logrus.Logger
}

// NewRankPerturbationSimulator builds a simulator. scorer may be nil, in
// which case runs require AllowFallback.
func NewRankPerturbationSimulator(pool *ResidualPool, scorer RankingScorer, logger *logrus.Logger) (*RankPerturbationSimulator, error) {
	if pool == nil {
		return nil, models.ErrEmptyResidualPool
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RankPerturbationSimulator{pool: pool, scorer: scorer, logger: logger}, nil
}

// Run executes the configured number of simulated races and returns the
// accumulated count matrix. All validation happens before any simulation
// work starts; no partial results are ever returned.
func (s *RankPerturbationSimulator) Run(cfg RankPerturbationConfig, entrants []models.RaceEntrant) (*RankResult, error) {
	if cfg.Simulations <= 0 {
		return nil, models.ErrInvalidSimulations
	}
	if len(entrants) == 0 {
		return nil, models.ErrNoEntrants
	}
	if !cfg.Weather.Valid() {
		return nil, models.ErrInvalidWeather
	}

	scores, source, err := s.resolveScores(cfg, entrants)
	if err != nil {
		return nil, err
	}

	n := len(entrants)
	baseRanks := make([]int, n)
	forcedDNF := make([]bool, n)
	coerced := 0
	for i, sc := range scores {
		if math.IsNaN(sc) {
			forcedDNF[i] = true
			coerced++
			scores[i] = math.Inf(-1)
		}
	}
	// Stable sort keeps input order on ties, so a fully degenerate score
	// vector still yields the valid permutation 1..D.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	for pos, idx := range order {
		baseRanks[idx] = pos + 1
	}

	spread := make([]float64, n)
	dnfProb := make([]float64, n)
	for i, e := range entrants {
		trackChaos := 0.5 + float64(e.OvertakingFactor)/10.0
		spread[i] = clip(e.Consistency/2.5, 0.5, 1.5) * trackChaos * cfg.Weather.ChaosMultiplier()
		dnfProb[i] = (1.0 - e.Reliability) * cfg.Weather.DNFMultiplier()
	}

	partials := make([]*Outcome, numChunks(cfg.Simulations))
	runChunks(cfg.Simulations, cfg.Seed, cfg.Workers, func(chunk chunkRange, rng *rand.Rand) {
		partials[chunk.index] = s.runChunk(chunk, rng, baseRanks, spread, dnfProb, forcedDNF)
	})

	outcome := newOutcome(n)
	for _, partial := range partials {
		outcome.merge(partial)
	}
	outcome.CoercedCells = coerced

	s.logger.WithFields(logrus.Fields{
		"simulations":  outcome.Sims,
		"entrants":     n,
		"score_source": source,
		"weather":      cfg.Weather,
	}).Debug("Rank perturbation run complete")

	return &RankResult{Outcome: outcome, ScoreSource: source, BaseRanks: baseRanks}, nil
}

func (s *RankPerturbationSimulator) resolveScores(cfg RankPerturbationConfig, entrants []models.RaceEntrant) ([]float64, models.ScoreSource, error) {
	if s.scorer != nil {
		scores := s.scorer(entrants)
		if len(scores) != len(entrants) {
			return nil, "", fmt.Errorf("ranking scorer returned %d scores for %d entrants", len(scores), len(entrants))
		}
		copied := make([]float64, len(scores))
		copy(copied, scores)
		return copied, models.ScoreSourceModel, nil
	}
	if !cfg.AllowFallback {
		return nil, "", models.ErrScorerRequired
	}
	scores := make([]float64, len(entrants))
	for i, e := range entrants {
		scores[i] = HeuristicScore(e)
	}
	s.logger.Warn("No ranking scorer injected, using Elo/grid heuristic scores")
	return scores, models.ScoreSourceEloGrid, nil
}

// HeuristicScore is the documented fallback used when no ranking model is
// injected: half driver Elo, a third of team Elo, minus 50 points per grid
// slot lost off pole.
func HeuristicScore(e models.RaceEntrant) float64 {
	return 0.5*e.DriverElo + 0.3*e.TeamElo - 50.0*float64(e.GridPosition-1)
}

func (s *RankPerturbationSimulator) runChunk(chunk chunkRange, rng *rand.Rand, baseRanks []int, spread, dnfProb []float64, forcedDNF []bool) *Outcome {
	n := len(baseRanks)
	partial := newOutcome(n)
	perturbed := make([]float64, n)
	order := make([]int, n)

	for sim := chunk.start; sim < chunk.end; sim++ {
		for i := 0; i < n; i++ {
			if forcedDNF[i] {
				perturbed[i] = math.Inf(1)
				continue
			}
			perturbed[i] = float64(baseRanks[i]) + s.pool.Sample(rng)*spread[i]
		}
		for i := 0; i < n; i++ {
			if forcedDNF[i] {
				continue
			}
			if rng.Float64() < dnfProb[i] {
				perturbed[i] = math.Inf(1)
			}
		}

		// The (perturbed, base rank) compound key is a total order, so the
		// resulting slots are deterministic; the DNF sentinel sorts last.
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			ia, ib := order[a], order[b]
			if perturbed[ia] != perturbed[ib] {
				return perturbed[ia] < perturbed[ib]
			}
			return baseRanks[ia] < baseRanks[ib]
		})

		for slot, idx := range order {
			if math.IsInf(perturbed[idx], 1) {
				partial.DNFs[idx]++
				continue
			}
			partial.Counts[idx][slot]++
		}
		partial.Sims++
	}

	return partial
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
