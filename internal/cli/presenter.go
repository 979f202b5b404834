package cli

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/progress"
	"github.com/agbru/picalc/internal/sysmon"
	"github.com/agbru/picalc/internal/timing"
	"github.com/agbru/picalc/internal/ui"
)

// CLIProgressReporter shows a spinner while estimators run.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numEstimators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numEstimators, out)
}

// CLIResultPresenter renders results as colored terminal text.
type CLIResultPresenter struct{}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

type tableRow struct {
	cells  []string
	colors []string
}

// PresentComparisonTable prints one row per estimator. Column widths are
// computed on the uncolored text so ANSI codes do not break alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.EstimationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	header := []string{"Estimator", "Estimate", "|Error|", "Duration", "Speedup", "Status"}
	rows := make([]tableRow, 0, len(results))
	for _, r := range results {
		row := tableRow{colors: []string{ui.ColorPrimary(), ui.ColorBold(), "", ui.ColorYellow(), "", ""}}
		if r.Err != nil {
			row.cells = []string{r.Name, "-", "-", durationCell(r.Duration), "-", fmt.Sprintf("Failure (%v)", r.Err)}
			row.colors[5] = ui.ColorRed()
		} else {
			row.cells = []string{
				r.Name,
				fmt.Sprintf("%.6f", r.Result.Pi),
				fmt.Sprintf("%.6f", r.Result.AbsError()),
				durationCell(r.Duration),
				speedupCell(r.Speedup),
				"Success",
			}
			row.colors[5] = ui.ColorGreen()
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, c := range row.cells {
			widths[i] = max(widths[i], utf8.RuneCountInString(c))
		}
	}

	for i, h := range header {
		fmt.Fprintf(out, "%s%s%s%s", ui.ColorBold(), h, ui.ColorReset(), padding(h, widths[i], i == len(header)-1))
	}
	fmt.Fprintln(out)
	for _, row := range rows {
		for i, c := range row.cells {
			fmt.Fprintf(out, "%s%s", ui.Colorize(row.colors[i], c), padding(c, widths[i], i == len(row.cells)-1))
		}
		fmt.Fprintln(out)
	}
}

func padding(s string, width int, last bool) string {
	if last {
		return ""
	}
	return fmt.Sprintf("%*s", width-utf8.RuneCountInString(s)+3, "")
}

func durationCell(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}

func speedupCell(s float64) string {
	if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return "-"
	}
	return fmt.Sprintf("%.2fx", s)
}

// PresentResult prints the detailed summary of one run.
func (CLIResultPresenter) PresentResult(r orchestration.EstimationResult, cfg config.AppConfig, out io.Writer) {
	DisplayResult(r, cfg.Verbose, out)
}

// HandleError reports err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// DisplayResult prints the estimate, the reference value and the timing
// line. Verbose output adds the raw counters and host load.
func DisplayResult(r orchestration.EstimationResult, verbose bool, out io.Writer) {
	elapsed, unit := timing.FormatElapsed(r.Duration)
	fmt.Fprintf(out, "\n----- Monte Carlo Estimation of PI [%s] -----\n", r.Name)
	fmt.Fprintf(out, "Pi [Estimated]: %s%.5f%s\n", ui.ColorGreen(), r.Result.Pi, ui.ColorReset())
	fmt.Fprintf(out, "Pi [Actual]   : %.5f\n", math.Pi)
	fmt.Fprintf(out, "Total time [%s] : %.2f\n", unit, elapsed)
	if !verbose {
		return
	}
	fmt.Fprintf(out, "Points: %s inside / %s sampled\n",
		format.FormatInt(r.Result.CirclePoints), format.FormatInt(r.Result.SquarePoints))
	fmt.Fprintf(out, "Batches: %s, workers: %d, seed: %d\n",
		format.FormatInt(r.Result.Batches), r.Result.Workers, r.Result.Seed)
	fmt.Fprintf(out, "Standard error: %.6f\n", orchestration.StandardError(r.Result.SquarePoints))
	stats := sysmon.Sample()
	fmt.Fprintf(out, "Host load: CPU %.1f%%, memory %.1f%%\n", stats.CPUPercent, stats.MemPercent)
}
