package montecarlo

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// EstimatorFactory creates and looks up estimators by key.
type EstimatorFactory interface {
	Register(key string, e Estimator) error
	Get(key string) (Estimator, error)
	MustGet(key string) Estimator
	List() []string
	GetAll() map[string]Estimator
}

// DefaultFactory is the registry used by the CLI.
type DefaultFactory struct {
	mu         sync.RWMutex
	estimators map[string]Estimator
}

var _ EstimatorFactory = (*DefaultFactory)(nil)

// NewDefaultFactory returns a factory with the built-in estimators
// registered: "sequential", "parallel" and "pointwise".
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{estimators: make(map[string]Estimator)}
	_ = f.Register("sequential", SequentialEstimator{})
	_ = f.Register("parallel", ParallelEstimator{})
	_ = f.Register("pointwise", PointwiseEstimator{})
	return f
}

var (
	globalFactory     *DefaultFactory
	globalFactoryOnce sync.Once
)

// GlobalFactory returns the process-wide default factory.
func GlobalFactory() *DefaultFactory {
	globalFactoryOnce.Do(func() {
		globalFactory = NewDefaultFactory()
	})
	return globalFactory
}

// Register adds e under key. Keys are case-insensitive and unique.
func (f *DefaultFactory) Register(key string, e Estimator) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return fmt.Errorf("estimator key must not be empty")
	}
	if e == nil {
		return fmt.Errorf("estimator %q is nil", key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.estimators[key]; exists {
		return fmt.Errorf("estimator %q already registered", key)
	}
	f.estimators[key] = e
	return nil
}

// Get returns the estimator registered under key.
func (f *DefaultFactory) Get(key string) (Estimator, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	e, ok := f.estimators[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return nil, apperrors.NewConfigError("unknown estimator %q (available: %s)",
			key, strings.Join(f.listLocked(), ", "))
	}
	return e, nil
}

// MustGet is Get that panics on an unknown key.
func (f *DefaultFactory) MustGet(key string) Estimator {
	e, err := f.Get(key)
	if err != nil {
		panic(err)
	}
	return e
}

// List returns the registered keys in sorted order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.listLocked()
}

func (f *DefaultFactory) listLocked() []string {
	keys := lo.Keys(f.estimators)
	slices.Sort(keys)
	return keys
}

// GetAll returns a copy of the registry.
func (f *DefaultFactory) GetAll() map[string]Estimator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return lo.Assign(f.estimators)
}
