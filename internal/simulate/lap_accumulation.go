package simulate

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/models"
)

// LapTimeModel is the injected per-lap pace predictor. It must be a pure
// function of its inputs; the engine resolves every call into a plain
// [lap][driver] table before any simulation work starts, so the hot loop
// never touches the model.
type LapTimeModel func(lap, tyreLife int, fuelLoad float64, position int, compound string) float64

// Lap model inputs held fixed per run. The strategy table below carries the
// tyre effects instead, as additive pace deltas.
const (
	fixedTyreLife = 10
	startFuelKG   = 110.0
	soft          = "SOFT"
)

// Per-lap race dynamics.
const (
	gridSlotPenalty = 0.5    // standing start, seconds lost per grid slot
	trafficPenalty  = 0.5    // seconds added when caught in traffic
	trafficProb     = 0.1    // fraction of (sim, driver) cells hit per lap
	lapDNFProb      = 0.0005 // per (sim, driver) per lap, absorbing
	pitLaneLoss     = 22.0   // seconds for one stop
)

// LapAccumulationConfig configures one lap-accumulation run.
type LapAccumulationConfig struct {
	Simulations int
	Laps        int
	Seed        int64
	Workers     int
}

// LapAccumulationSimulator races the field lap by lap: each simulated race
// accumulates per-driver time from the injected pace model plus strategy,
// noise, traffic, and retirement effects, then ranks by total time.
type LapAccumulationSimulator struct {
	model  LapTimeModel
	logger *logrus.Logger
}

func NewLapAccumulationSimulator(model LapTimeModel, logger *logrus.Logger) (*LapAccumulationSimulator, error) {
	if model == nil {
		return nil, models.ErrLapModelRequired
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &LapAccumulationSimulator{model: model, logger: logger}, nil
}

// Run simulates cfg.Simulations races of cfg.Laps laps and returns the
// accumulated count matrix.
func (s *LapAccumulationSimulator) Run(cfg LapAccumulationConfig, entrants []models.RaceEntrant) (*Outcome, error) {
	if cfg.Simulations <= 0 || cfg.Laps <= 0 {
		return nil, models.ErrInvalidSimulations
	}
	if len(entrants) == 0 {
		return nil, models.ErrNoEntrants
	}

	baseTimes, forcedDNF, coerced := s.resolveBaseTimes(cfg.Laps, entrants)
	if coerced > 0 {
		s.logger.WithField("cells", coerced).Warn("Lap model produced invalid times, affected drivers coerced to DNF")
	}

	weights := make([]float64, len(entrants))
	sigmas := make([]float64, len(entrants))
	gridPenalty := make([]float64, len(entrants))
	for i, e := range entrants {
		weights[i] = e.PerformanceWeight()
		sigmas[i] = e.LapNoiseSigma()
		gridPenalty[i] = float64(e.GridPosition-1) * gridSlotPenalty
	}

	partials := make([]*Outcome, numChunks(cfg.Simulations))
	runChunks(cfg.Simulations, cfg.Seed, cfg.Workers, func(chunk chunkRange, rng *rand.Rand) {
		state := newLapChunkState(chunk, rng, gridPenalty, forcedDNF)
		for lap := 1; lap <= cfg.Laps; lap++ {
			state.step(rng, lap, baseTimes[lap-1], weights, sigmas)
		}
		partials[chunk.index] = state.finish()
	})

	outcome := newOutcome(len(entrants))
	for _, partial := range partials {
		outcome.merge(partial)
	}
	outcome.CoercedCells = coerced

	s.logger.WithFields(logrus.Fields{
		"simulations": outcome.Sims,
		"laps":        cfg.Laps,
		"entrants":    len(entrants),
	}).Debug("Lap accumulation run complete")

	return outcome, nil
}

// resolveBaseTimes evaluates the lap model once per (lap, driver) cell. A
// NaN or negative prediction poisons only that driver: the cell is counted
// and the driver retires in every simulation instead of the fault reaching
// the accumulator.
func (s *LapAccumulationSimulator) resolveBaseTimes(laps int, entrants []models.RaceEntrant) ([][]float64, []bool, int) {
	baseTimes := make([][]float64, laps)
	forcedDNF := make([]bool, len(entrants))
	coerced := 0
	for lap := 1; lap <= laps; lap++ {
		fuel := startFuelKG * (1.0 - float64(lap)/float64(laps))
		row := make([]float64, len(entrants))
		for d, e := range entrants {
			t := s.model(lap, fixedTyreLife, fuel, e.GridPosition, soft)
			if math.IsNaN(t) || t < 0 {
				forcedDNF[d] = true
				coerced++
				t = 0
			}
			row[d] = t
		}
		baseTimes[lap-1] = row
	}
	return baseTimes, forcedDNF, coerced
}

// strategyDelta is the additive pace cost of a pit strategy on a given lap:
// near-zero while tyres are fresh, a full pit-lane loss on the stop lap,
// and a heavier per-lap cost once past the intended stint length.
func strategyDelta(strategy, lap int) float64 {
	switch strategy {
	case 0: // one-stop, lap 25
		switch {
		case lap < 25:
			return 0.4
		case lap == 25:
			return pitLaneLoss
		default:
			return 0.8
		}
	case 1: // two-stop, laps 15 and 40
		switch {
		case lap == 15 || lap == 40:
			return pitLaneLoss
		case lap > 15 && lap < 40:
			return 0.4
		case lap > 40:
			return 0.4
		default:
			return 0
		}
	default: // aggressive two-stop, laps 20 and 45
		switch {
		case lap < 20:
			return 0.4
		case lap == 20 || lap == 45:
			return pitLaneLoss
		case lap > 20 && lap < 45:
			return 0.8
		default:
			return 0.4
		}
	}
}

// drawStrategy maps one uniform draw to a strategy id with probabilities
// 0.6 / 0.3 / 0.1.
func drawStrategy(rng *rand.Rand) int {
	u := rng.Float64()
	switch {
	case u < 0.6:
		return 0
	case u < 0.9:
		return 1
	default:
		return 2
	}
}

// lapChunkState holds the mutable race state for one chunk of simulation
// columns. Retirement is the +Inf sentinel in accumulated time; once set it
// survives every later lap because nothing is ever added to a retired cell.
type lapChunkState struct {
	chunk       chunkRange
	accumulated [][]float64 // [sim within chunk][driver]
	strategies  [][]int     // [sim within chunk][driver]
}

func newLapChunkState(chunk chunkRange, rng *rand.Rand, gridPenalty []float64, forcedDNF []bool) *lapChunkState {
	sims := chunk.end - chunk.start
	drivers := len(gridPenalty)
	state := &lapChunkState{
		chunk:       chunk,
		accumulated: make([][]float64, sims),
		strategies:  make([][]int, sims),
	}
	for s := 0; s < sims; s++ {
		acc := make([]float64, drivers)
		strat := make([]int, drivers)
		for d := 0; d < drivers; d++ {
			strat[d] = drawStrategy(rng)
			if forcedDNF[d] {
				acc[d] = math.Inf(1)
			} else {
				acc[d] = gridPenalty[d]
			}
		}
		state.accumulated[s] = acc
		state.strategies[s] = strat
	}
	return state
}

// step advances every simulation in the chunk by one lap. The inner loop
// runs along the simulation axis so the per-driver lap constants are
// computed once per (lap, driver, strategy) and reused across columns.
func (st *lapChunkState) step(rng *rand.Rand, lap int, baseTimes, weights, sigmas []float64) {
	drivers := len(baseTimes)
	var paced [3]float64
	for d := 0; d < drivers; d++ {
		for strat := 0; strat < 3; strat++ {
			paced[strat] = (baseTimes[d] + strategyDelta(strat, lap)) * weights[d]
		}
		sigma := sigmas[d]
		for s := range st.accumulated {
			cell := st.accumulated[s][d]
			if math.IsInf(cell, 1) {
				continue
			}
			lapTime := paced[st.strategies[s][d]] + rng.NormFloat64()*sigma
			if rng.Float64() < trafficProb {
				lapTime += trafficPenalty
			}
			cell += lapTime
			if rng.Float64() < lapDNFProb {
				cell = math.Inf(1)
			}
			st.accumulated[s][d] = cell
		}
	}
}

// finish ranks every simulation column by ascending accumulated time and
// folds the finishing slots into a partial count matrix. Exact ties break
// by driver index, and the retirement sentinel sorts last.
func (st *lapChunkState) finish() *Outcome {
	drivers := 0
	if len(st.accumulated) > 0 {
		drivers = len(st.accumulated[0])
	}
	partial := newOutcome(drivers)
	order := make([]int, drivers)

	for _, times := range st.accumulated {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			ia, ib := order[a], order[b]
			if times[ia] != times[ib] {
				return times[ia] < times[ib]
			}
			return ia < ib
		})
		for slot, idx := range order {
			if math.IsInf(times[idx], 1) {
				partial.DNFs[idx]++
				continue
			}
			partial.Counts[idx][slot]++
		}
		partial.Sims++
	}

	return partial
}
