package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorWorker   = 3   // Indicates a batch worker failed after its retries.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrNoSamples is returned when an estimate is requested from counters that
// never received a sample. Computing the ratio would divide by zero.
var ErrNoSamples = errors.New("no samples collected")

// ConfigError represents a user configuration error, such as invalid flags,
// an unreadable configuration file or an unknown estimator name.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
//
// The estimators return it for a non-positive domain or batch size before any
// sampling work starts.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// EstimationError ties a failure to the estimator that produced it.
type EstimationError struct {
	// Estimator is the display name of the failing estimator.
	Estimator string
	// Cause is the underlying error.
	Cause error
}

// Error returns the estimator name followed by the cause.
func (e EstimationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Estimator, e.Cause)
}

// Unwrap returns the original wrapped error.
func (e EstimationError) Unwrap() error { return e.Cause }

// WorkerFailureError reports a batch that kept failing after all of its
// attempts. Its contribution is missing from the aggregate, so the run that
// produced it has no valid estimate.
type WorkerFailureError struct {
	// Batch is the index of the batch in the plan.
	Batch int
	// Size is the number of points the batch was asked to sample.
	Size int64
	// Attempts is how many times the batch was run.
	Attempts int
	// Cause holds the error of every attempt.
	Cause error
}

// Error returns a formatted message describing the failed batch.
func (e WorkerFailureError) Error() string {
	return fmt.Sprintf("batch %d (%d points) failed after %d attempt(s): %v", e.Batch, e.Size, e.Attempts, e.Cause)
}

// Unwrap returns the attempt errors.
func (e WorkerFailureError) Unwrap() error { return e.Cause }

// TimeoutError represents an estimation timeout. It captures the operation
// name and the duration limit that was exceeded.
type TimeoutError struct {
	// Operation is the name of the operation that timed out.
	Operation string
	// Limit is the duration after which the operation was considered timed out.
	Limit time.Duration
}

// Error returns a formatted message describing the timeout.
func (e TimeoutError) Error() string {
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// It returns nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// IsConfigurationError reports whether err stems from user input, either a
// ConfigError or a ValidationError.
func IsConfigurationError(err error) bool {
	var cfgErr ConfigError
	var valErr ValidationError
	return errors.As(err, &cfgErr) || errors.As(err, &valErr)
}

// ExitCodeFor maps an error to the process exit code that reports it.
func ExitCodeFor(err error) int {
	var workerErr WorkerFailureError
	var timeoutErr TimeoutError
	switch {
	case err == nil:
		return ExitSuccess
	case IsConfigurationError(err):
		return ExitErrorConfig
	case errors.As(err, &timeoutErr), errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &workerErr):
		return ExitErrorWorker
	default:
		return ExitErrorGeneric
	}
}
