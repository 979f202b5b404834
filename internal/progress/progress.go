// Package progress carries progress notifications from estimators to
// whatever displays them. Estimators only ever see a ProgressCallback, so a
// run without any observer behaves exactly like one with a display attached.
package progress

import (
	"sync"

	"github.com/agbru/picalc/internal/logging"
)

// ProgressUpdate is a progress notification sent by one estimator.
type ProgressUpdate struct {
	// EstimatorIndex identifies the estimator in the current run.
	EstimatorIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// ProgressCallback receives the completed fraction of a single estimator.
type ProgressCallback func(progress float64)

// ProgressObserver is notified of progress for any estimator index.
type ProgressObserver interface {
	Update(index int, progress float64)
}

// ProgressSubject fans progress out to registered observers.
type ProgressSubject struct {
	mu        sync.RWMutex
	observers []ProgressObserver
}

// NewProgressSubject creates a subject with no observers.
func NewProgressSubject() *ProgressSubject {
	return &ProgressSubject{}
}

// Register adds an observer. Nil observers are ignored.
func (s *ProgressSubject) Register(o ProgressObserver) {
	if o == nil {
		return
	}
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Unregister removes every registration of o.
func (s *ProgressSubject) Unregister(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.observers[:0]
	for _, existing := range s.observers {
		if existing != o {
			kept = append(kept, existing)
		}
	}
	s.observers = kept
}

// Notify sends one update to every observer.
func (s *ProgressSubject) Notify(index int, progress float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.observers {
		o.Update(index, progress)
	}
}

// Freeze snapshots the current observers into a callback bound to index.
// Observers registered afterwards are not notified by the returned callback,
// which lets it run lock-free on the hot path.
func (s *ProgressSubject) Freeze(index int) ProgressCallback {
	s.mu.RLock()
	snapshot := make([]ProgressObserver, len(s.observers))
	copy(snapshot, s.observers)
	s.mu.RUnlock()

	if len(snapshot) == 0 {
		return nil
	}
	return func(progress float64) {
		for _, o := range snapshot {
			o.Update(index, progress)
		}
	}
}

// ChannelObserver forwards updates to a channel without blocking. An update
// is dropped when the channel buffer is full; the next one supersedes it.
type ChannelObserver struct {
	ch chan<- ProgressUpdate
}

// NewChannelObserver creates an observer sending on ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// Update implements ProgressObserver.
func (c *ChannelObserver) Update(index int, progress float64) {
	if c.ch == nil {
		return
	}
	select {
	case c.ch <- ProgressUpdate{EstimatorIndex: index, Value: progress}:
	default:
	}
}

// LoggingObserver writes a debug entry every time an estimator advances by
// another step of progress, plus one on completion.
type LoggingObserver struct {
	logger logging.Logger
	step   float64

	mu   sync.Mutex
	last map[int]float64
}

// NewLoggingObserver creates a logging observer. A non-positive step
// defaults to 0.1.
func NewLoggingObserver(logger logging.Logger, step float64) *LoggingObserver {
	if step <= 0 {
		step = 0.1
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LoggingObserver{logger: logger, step: step, last: make(map[int]float64)}
}

// Update implements ProgressObserver.
func (l *LoggingObserver) Update(index int, progress float64) {
	l.mu.Lock()
	last, seen := l.last[index]
	if seen && progress < 1.0 && progress-last < l.step {
		l.mu.Unlock()
		return
	}
	l.last[index] = progress
	l.mu.Unlock()

	l.logger.Debug("progress", logging.Int("estimator", index), logging.Float64("progress", progress))
}
