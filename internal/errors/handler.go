package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ColorProvider supplies the escape sequences used when reporting errors.
// The CLI passes its theme-backed implementation; nil disables colors.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type noColors struct{}

func (noColors) Red() string    { return "" }
func (noColors) Yellow() string { return "" }
func (noColors) Reset() string  { return "" }

// HandleCalculationError prints a user-facing description of err and returns
// the matching exit code. A nil err returns ExitSuccess and prints nothing.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = noColors{}
	}

	var workerErr WorkerFailureError
	code := ExitCodeFor(err)
	switch {
	case code == ExitErrorTimeout && errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "%sStatus: Timeout. The estimation did not finish within the allotted time", colors.Yellow())
	case code == ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Timeout. %v", colors.Yellow(), err)
	case code == ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled", colors.Yellow())
	case errors.As(err, &workerErr):
		fmt.Fprintf(out, "%sStatus: Worker failure. Batch %d could not be sampled, the estimate was discarded: %v",
			colors.Red(), workerErr.Batch, workerErr.Cause)
	case code == ExitErrorConfig:
		fmt.Fprintf(out, "%sStatus: Invalid configuration. %v", colors.Red(), err)
	default:
		fmt.Fprintf(out, "%sStatus: Failure. %v", colors.Red(), err)
	}
	if duration > 0 {
		fmt.Fprintf(out, " (after %s)", duration.Round(time.Microsecond))
	}
	fmt.Fprintf(out, "%s\n", colors.Reset())
	return code
}
