package orchestration

import (
	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/montecarlo"
)

// SelectedEstimator pairs an estimator with its registry key.
type SelectedEstimator struct {
	Key       string
	Estimator montecarlo.Estimator
}

// SelectEstimators resolves an --algo value against factory: "all", a single
// key, or a comma-separated list. The order of the list is kept; "all" runs
// the keys in sorted order.
func SelectEstimators(algo string, factory montecarlo.EstimatorFactory) ([]SelectedEstimator, error) {
	keys, err := config.SplitAlgo(algo, factory.List())
	if err != nil {
		return nil, err
	}
	selected := make([]SelectedEstimator, 0, len(keys))
	for _, key := range keys {
		e, err := factory.Get(key)
		if err != nil {
			return nil, err
		}
		selected = append(selected, SelectedEstimator{Key: key, Estimator: e})
	}
	return selected, nil
}
