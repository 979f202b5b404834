package montecarlo

import "math"

// Result is the outcome of one estimation run.
type Result struct {
	Pi           float64 `yaml:"pi"`
	CirclePoints int64   `yaml:"circle_points"`
	SquarePoints int64   `yaml:"square_points"`
	Batches      int64   `yaml:"batches"`
	Workers      int     `yaml:"workers"`
	Seed         uint64  `yaml:"seed"`
}

// AbsError returns |Pi - π|.
func (r Result) AbsError() float64 {
	return math.Abs(r.Pi - math.Pi)
}

func resultFrom(c Counters, batches int64, workers int, seed uint64) (Result, error) {
	pi, err := c.Pi()
	if err != nil {
		return Result{}, err
	}
	return Result{
		Pi:           pi,
		CirclePoints: c.CirclePoints,
		SquarePoints: c.SquarePoints,
		Batches:      batches,
		Workers:      workers,
		Seed:         seed,
	}, nil
}
