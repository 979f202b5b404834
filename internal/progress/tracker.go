package progress

// ReportSteps is the number of progress notifications a Tracker emits over a
// whole run, plus the final one.
const ReportSteps = 100

// Tracker converts increments of completed work into fractional progress
// notifications. It throttles the callback to roughly ReportSteps calls so
// that per-point increments stay cheap.
//
// A Tracker is not safe for concurrent use: it belongs to the goroutine that
// folds results.
type Tracker struct {
	total    int64
	done     int64
	step     int64
	next     int64
	finished bool
	callback ProgressCallback
}

// NewTracker creates a tracker for total units of work. A nil callback makes
// every method a no-op apart from counting.
func NewTracker(total int64, callback ProgressCallback) *Tracker {
	step := (total + ReportSteps - 1) / ReportSteps
	if step < 1 {
		step = 1
	}
	return &Tracker{total: total, step: step, next: step, callback: callback}
}

// Add records n completed units.
func (t *Tracker) Add(n int64) {
	if t == nil {
		return
	}
	t.done += n
	if t.callback == nil || t.total <= 0 || t.finished {
		return
	}
	if t.done >= t.total {
		t.finished = true
		t.callback(1.0)
		return
	}
	if t.done >= t.next {
		t.callback(float64(t.done) / float64(t.total))
		t.next = t.done + t.step
	}
}

// Done returns the number of units recorded so far.
func (t *Tracker) Done() int64 {
	if t == nil {
		return 0
	}
	return t.done
}
