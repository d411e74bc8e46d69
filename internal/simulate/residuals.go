package simulate

import (
	"math/rand"

	"github.com/yourusername/grid-oracle/internal/models"
)

// ResidualPool is an immutable bag of historical (actual rank − predicted
// rank) values used as an empirical noise source. Samples are drawn with
// replacement through an explicit RNG, never a global one.
type ResidualPool struct {
	samples []float64
}

// NewResidualPool copies the samples so later mutation of the input slice
// cannot leak into a running simulation.
func NewResidualPool(samples []float64) (*ResidualPool, error) {
	if len(samples) == 0 {
		return nil, models.ErrEmptyResidualPool
	}
	copied := make([]float64, len(samples))
	copy(copied, samples)
	return &ResidualPool{samples: copied}, nil
}

// Sample draws one residual with replacement.
func (p *ResidualPool) Sample(rng *rand.Rand) float64 {
	return p.samples[rng.Intn(len(p.samples))]
}

// Len returns the pool size.
func (p *ResidualPool) Len() int {
	return len(p.samples)
}
