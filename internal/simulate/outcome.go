package simulate

import "fmt"

// Outcome is the count-matrix form of a simulation result: for each driver
// (row), how many simulations ended with that driver in each 0-based
// finishing slot, plus how many ended in retirement. Rows therefore sum to
// exactly the simulation count minus that driver's DNF count.
type Outcome struct {
	Sims         int
	Counts       [][]int // [driver][slot]
	DNFs         []int   // [driver]
	CoercedCells int     // model faults coerced to DNF at the boundary
}

func newOutcome(drivers int) *Outcome {
	counts := make([][]int, drivers)
	for i := range counts {
		counts[i] = make([]int, drivers)
	}
	return &Outcome{
		Counts: counts,
		DNFs:   make([]int, drivers),
	}
}

// merge folds a partial chunk outcome into the receiver by elementwise
// addition, the only cross-chunk operation the engine performs.
func (o *Outcome) merge(partial *Outcome) {
	o.Sims += partial.Sims
	o.CoercedCells += partial.CoercedCells
	for d := range o.Counts {
		o.DNFs[d] += partial.DNFs[d]
		for slot := range o.Counts[d] {
			o.Counts[d][slot] += partial.Counts[d][slot]
		}
	}
}

// Validate checks the structural guarantee that every driver's slot counts
// plus DNFs account for each simulation exactly once.
func (o *Outcome) Validate() error {
	for d, row := range o.Counts {
		total := o.DNFs[d]
		for _, c := range row {
			total += c
		}
		if total != o.Sims {
			return fmt.Errorf("driver %d accounts for %d of %d simulations", d, total, o.Sims)
		}
	}
	return nil
}
