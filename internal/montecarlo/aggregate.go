package montecarlo

import (
	"math"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// Counters accumulates batch results. The zero value is ready to use.
type Counters struct {
	CirclePoints int64 `yaml:"circle_points"`
	SquarePoints int64 `yaml:"square_points"`
}

// Add folds one batch result into the counters.
func (c *Counters) Add(r BatchResult) {
	c.CirclePoints += r.Hits
	c.SquarePoints += r.Total
}

// Aggregate folds results in the given order.
func Aggregate(results []BatchResult) Counters {
	var c Counters
	for _, r := range results {
		c.Add(r)
	}
	return c
}

// Pi returns 4 × circle / square. It fails with ErrNoSamples when nothing
// was sampled.
func (c Counters) Pi() (float64, error) {
	if c.SquarePoints == 0 {
		return math.NaN(), apperrors.ErrNoSamples
	}
	return 4 * float64(c.CirclePoints) / float64(c.SquarePoints), nil
}
