// Package timing measures wall-clock time around a computation and scales
// elapsed durations into a human-friendly unit.
package timing

import "time"

// TimeUnit names the unit FormatElapsed picked.
type TimeUnit string

const (
	Seconds TimeUnit = "Seconds"
	Minutes TimeUnit = "Minutes"
	Hours   TimeUnit = "Hours"
)

// now is swapped in tests.
var now = time.Now

// Measure runs fn and returns its result together with the wall-clock time it
// took. The duration is reported even when fn fails.
func Measure[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := now()
	result, err := fn()
	return result, now().Sub(start), err
}

// FormatElapsed scales d to the largest unit among seconds, minutes and hours
// that keeps the value at or above 1. Hours is the ceiling: 72h stays 72
// hours rather than rolling over to days. Anything up to one second is
// reported in seconds.
func FormatElapsed(d time.Duration) (float64, TimeUnit) {
	seconds := d.Seconds()
	switch {
	case seconds >= 3600:
		return seconds / 3600, Hours
	case seconds >= 60:
		return seconds / 60, Minutes
	default:
		return seconds, Seconds
	}
}
