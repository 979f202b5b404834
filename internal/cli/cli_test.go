package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/golang/mock/gomock"
	"gopkg.in/yaml.v3"

	"github.com/agbru/picalc/internal/cli/mocks"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/montecarlo"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/progress"
	"github.com/agbru/picalc/internal/ui"
)

// These tests swap package-level state (theme, spinner factory) and do not
// run in parallel.

func withoutColors(t *testing.T) {
	t.Helper()
	saved := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
}

func sampleResults() []orchestration.EstimationResult {
	return []orchestration.EstimationResult{
		{
			Key: "parallel", Name: "Parallel", Duration: 250 * time.Millisecond, Speedup: 4,
			Result: montecarlo.Result{Pi: 3.14159, CirclePoints: 785398, SquarePoints: 1_000_000, Batches: 20, Workers: 8, Seed: 42},
		},
		{
			Key: "sequential", Name: "Sequential", Duration: time.Second, Speedup: 1,
			Result: montecarlo.Result{Pi: 3.1421, CirclePoints: 785525, SquarePoints: 1_000_000, Batches: 1, Workers: 1, Seed: 42},
		},
		{
			Key: "pointwise", Name: "Pointwise", Duration: 2 * time.Second,
			Err: apperrors.WorkerFailureError{Batch: 3, Size: 1, Attempts: 2, Cause: errors.New("boom")},
		},
	}
}

func TestPresentComparisonTable(t *testing.T) {
	withoutColors(t)

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentComparisonTable(sampleResults(), &buf)
	out := buf.String()

	for _, want := range []string{
		"--- Comparison Summary ---",
		"Estimator", "Speedup",
		"3.141590", "4.00x", "1.00x", "250ms",
		"Failure (batch 3 (1 points) failed after 2 attempt(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	header := lines[1]
	row := lines[2]
	if strings.Index(header, "|Error|") != strings.Index(row, "0.000003") {
		t.Errorf("columns misaligned:\n%s\n%s", header, row)
	}
}

func TestDisplayResult(t *testing.T) {
	withoutColors(t)

	var buf bytes.Buffer
	DisplayResult(sampleResults()[1], false, &buf)
	out := buf.String()
	for _, want := range []string{
		"----- Monte Carlo Estimation of PI [Sequential] -----",
		"Pi [Estimated]: 3.14210",
		"Pi [Actual]   : 3.14159",
		"Total time [Seconds] : 1.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Points:") {
		t.Error("non-verbose output should not show counters")
	}

	buf.Reset()
	DisplayResult(sampleResults()[0], true, &buf)
	for _, want := range []string{"Points: 785,398 inside / 1,000,000 sampled", "seed: 42", "Standard error:"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("verbose output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestHandleError(t *testing.T) {
	withoutColors(t)

	var buf bytes.Buffer
	code := CLIResultPresenter{}.HandleError(sampleResults()[2].Err, time.Second, &buf)
	if code != apperrors.ExitErrorWorker {
		t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorWorker)
	}
	if !strings.Contains(buf.String(), "Worker failure") {
		t.Errorf("unexpected message: %q", buf.String())
	}
}

func TestQuietResults(t *testing.T) {
	var buf bytes.Buffer
	DisplayQuietResults(&buf, sampleResults())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", buf.String())
	}
	if lines[0] != "parallel 3.14159000" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "pointwise error:") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestWriteReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.yaml")
	cfg := config.AppConfig{Domain: 1000, BatchSize: 50000, Workers: 8, Retries: 1, Seed: 42}
	report := BuildReport("run-xyz", cfg, sampleResults())

	if err := WriteReport(path, report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Report
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid YAML: %v", err)
	}
	if decoded.RunID != "run-xyz" || decoded.Points != 1_000_000 || len(decoded.Results) != 3 {
		t.Errorf("unexpected report: %+v", decoded)
	}
	if decoded.Results[0].Pi != 3.14159 || decoded.Results[0].Speedup != 4 {
		t.Errorf("unexpected first entry: %+v", decoded.Results[0])
	}
	if decoded.Results[2].Error == "" || decoded.Results[2].Pi != 0 {
		t.Errorf("failed entry should carry only the error: %+v", decoded.Results[2])
	}
}

func TestPrintExecutionConfigAndMode(t *testing.T) {
	withoutColors(t)

	var buf bytes.Buffer
	cfg := config.AppConfig{Domain: 5000, BatchSize: 50000, Workers: 4, Retries: 1, Timeout: time.Minute, Seed: 9}
	PrintExecutionConfig(cfg, &buf)
	PrintExecutionMode([]orchestration.SelectedEstimator{
		{Key: "sequential", Estimator: montecarlo.SequentialEstimator{}},
		{Key: "parallel", Estimator: montecarlo.ParallelEstimator{}},
	}, &buf)

	out := buf.String()
	for _, want := range []string{
		"Sampling 25,000,000 points (domain 5000)",
		"Batches of up to 50,000 points on 4 workers, 1 retry per batch.",
		"Seed: 9",
		"comparison of Sequential, Parallel",
		"--- Starting Execution ---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayProgress_DrivesSpinner(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := mocks.NewMockSpinner(ctrl)
	mock.EXPECT().UpdateSuffix(gomock.Any()).AnyTimes()
	mock.EXPECT().Start().Times(1)
	mock.EXPECT().Stop().Times(1)

	saved := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	t.Cleanup(func() { newSpinner = saved })

	ch := make(chan progress.ProgressUpdate, 4)
	ch <- progress.ProgressUpdate{EstimatorIndex: 0, Value: 0.5}
	ch <- progress.ProgressUpdate{EstimatorIndex: 0, Value: 1}
	close(ch)

	var buf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 1, &buf)
	wg.Wait()

	if !strings.Contains(buf.String(), "100.0%") {
		t.Errorf("final line should show completion, got %q", buf.String())
	}
}

func TestDisplayProgress_NoEstimators(t *testing.T) {
	ch := make(chan progress.ProgressUpdate, 1)
	ch <- progress.ProgressUpdate{}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	DisplayProgress(&wg, ch, 0, &bytes.Buffer{})
	wg.Wait()
}
