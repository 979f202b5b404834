package app

import (
	"context"
	"io"

	"github.com/agbru/picalc/internal/cli"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/orchestration"
)

// runCalculate runs the selected estimators with terminal output.
func (a *Application) runCalculate(ctx context.Context, selected []orchestration.SelectedEstimator, rt orchestration.Runtime, out io.Writer) (int, []orchestration.EstimationResult) {
	if a.Config.Quiet {
		results := orchestration.ExecuteEstimations(ctx, selected, a.Config, rt, orchestration.NullProgressReporter{}, io.Discard)
		cli.DisplayQuietResults(out, results)
		return quietExitCode(results), results
	}

	cli.PrintExecutionConfig(a.Config, out)
	cli.PrintExecutionMode(selected, out)

	results := orchestration.ExecuteEstimations(ctx, selected, a.Config, rt, cli.CLIProgressReporter{}, out)
	code := orchestration.AnalyzeComparisonResults(results, a.Config, cli.CLIResultPresenter{}, out)
	return code, results
}

// quietExitCode returns the code of the first failure, if any.
func quietExitCode(results []orchestration.EstimationResult) int {
	for _, r := range results {
		if r.Err != nil {
			return apperrors.ExitCodeFor(r.Err)
		}
	}
	return apperrors.ExitSuccess
}
