package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/format"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/sysmon"
	"github.com/agbru/picalc/internal/ui"
)

// PrintExecutionConfig prints the run parameters.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Sampling %s%s%s points (domain %d) with a timeout of %s%s%s.\n",
		ui.ColorMagenta(), format.FormatInt(cfg.Domain*cfg.Domain), ui.ColorReset(),
		cfg.Domain, ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Batches of up to %s%s%s points on %s%d%s workers, %d retr%s per batch.\n",
		ui.ColorPrimary(), format.FormatInt(cfg.BatchSize), ui.ColorReset(),
		ui.ColorPrimary(), cfg.Workers, ui.ColorReset(),
		cfg.Retries, plural(cfg.Retries, "y", "ies"))
	fmt.Fprintf(out, "Environment: %s%d%s CPUs available (%d logical), Go %s.\n",
		ui.ColorPrimary(), sysmon.AvailableCPUs(), ui.ColorReset(), sysmon.LogicalCPUs(), runtime.Version())
	if cfg.Seed != 0 {
		fmt.Fprintf(out, "Seed: %d\n", cfg.Seed)
	}
}

// PrintExecutionMode announces which estimators will run.
func PrintExecutionMode(estimators []orchestration.SelectedEstimator, out io.Writer) {
	names := make([]string, len(estimators))
	for i, e := range estimators {
		names[i] = ui.ColorGreen() + e.Estimator.Name() + ui.ColorReset()
	}
	if len(estimators) > 1 {
		fmt.Fprintf(out, "Execution mode: comparison of %s.\n", strings.Join(names, ", "))
	} else if len(estimators) == 1 {
		fmt.Fprintf(out, "Execution mode: single run with the %s estimator.\n", names[0])
	}
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
