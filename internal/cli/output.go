package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agbru/picalc/internal/config"
	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/ui"
)

// Report is the YAML document written with --output.
type Report struct {
	RunID     string                 `yaml:"run_id"`
	Generated time.Time              `yaml:"generated"`
	Domain    int64                  `yaml:"domain"`
	Points    int64                  `yaml:"points"`
	BatchSize int64                  `yaml:"batch_size"`
	Workers   int                    `yaml:"workers"`
	Retries   int                    `yaml:"retries"`
	Seed      uint64                 `yaml:"seed,omitempty"`
	Results   []ReportEntry          `yaml:"results"`
	Memory    metrics.MemorySnapshot `yaml:"memory"`
}

// ReportEntry is one estimator's line in the report.
type ReportEntry struct {
	Key          string  `yaml:"key"`
	Name         string  `yaml:"name"`
	Pi           float64 `yaml:"pi,omitempty"`
	AbsError     float64 `yaml:"abs_error,omitempty"`
	CirclePoints int64   `yaml:"circle_points,omitempty"`
	SquarePoints int64   `yaml:"square_points,omitempty"`
	Batches      int64   `yaml:"batches,omitempty"`
	Seed         uint64  `yaml:"seed,omitempty"`
	Seconds      float64 `yaml:"seconds"`
	Speedup      float64 `yaml:"speedup,omitempty"`
	Error        string  `yaml:"error,omitempty"`
}

// BuildReport assembles the report for a finished run.
func BuildReport(runID string, cfg config.AppConfig, results []orchestration.EstimationResult) Report {
	r := Report{
		RunID:     runID,
		Generated: time.Now().UTC().Truncate(time.Second),
		Domain:    cfg.Domain,
		Points:    cfg.Domain * cfg.Domain,
		BatchSize: cfg.BatchSize,
		Workers:   cfg.Workers,
		Retries:   cfg.Retries,
		Seed:      cfg.Seed,
		Memory:    metrics.ReadMemory(),
	}
	for _, res := range results {
		e := ReportEntry{Key: res.Key, Name: res.Name, Seconds: res.Duration.Seconds()}
		if res.Err != nil {
			e.Error = res.Err.Error()
		} else {
			e.Pi = res.Result.Pi
			e.AbsError = res.Result.AbsError()
			e.CirclePoints = res.Result.CirclePoints
			e.SquarePoints = res.Result.SquarePoints
			e.Batches = res.Result.Batches
			e.Seed = res.Result.Seed
			e.Speedup = res.Speedup
		}
		r.Results = append(r.Results, e)
	}
	return r
}

// WriteReport writes r as YAML to path, creating parent directories.
func WriteReport(path string, r Report) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// FormatQuietResult returns the "key pi" line printed in quiet mode.
func FormatQuietResult(r orchestration.EstimationResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s error: %v", r.Key, r.Err)
	}
	return fmt.Sprintf("%s %.8f", r.Key, r.Result.Pi)
}

// DisplayQuietResults prints one FormatQuietResult line per estimator.
func DisplayQuietResults(out io.Writer, results []orchestration.EstimationResult) {
	for _, r := range results {
		fmt.Fprintln(out, FormatQuietResult(r))
	}
}

// DisplaySaved confirms a file was written.
func DisplaySaved(out io.Writer, what, path string) {
	fmt.Fprintf(out, "%s%s saved to: %s%s\n", ui.ColorGreen(), what, path, ui.ColorReset())
}
