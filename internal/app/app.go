// Package app wires configuration, estimators and presentation into the
// picalc command.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/cli"
	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/metrics"
	"github.com/agbru/picalc/internal/montecarlo"
	"github.com/agbru/picalc/internal/orchestration"
	"github.com/agbru/picalc/internal/tracing"
	"github.com/agbru/picalc/internal/tui"
	"github.com/agbru/picalc/internal/ui"
)

// Application represents the picalc application instance.
type Application struct {
	Config    config.AppConfig
	Factory   montecarlo.EstimatorFactory
	ErrWriter io.Writer
	// RunID tags logs, the report and every metric series.
	RunID string
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom EstimatorFactory for the application.
func WithFactory(f montecarlo.EstimatorFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) AppOption {
	return func(a *Application) { a.RunID = id }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = montecarlo.NewDefaultFactory()
	}
	if app.RunID == "" {
		app.RunID = uuid.NewString()
	}

	programName := "picalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, app.Factory.List())
	if err != nil {
		// The flag package has already reported syntax errors.
		if apperrors.IsConfigurationError(err) {
			fmt.Fprintf(errWriter, "Error: %v\n", err)
		}
		return nil, err
	}
	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	ui.InitTheme(a.Config.NoColor)

	level, err := logging.ParseLevel(a.Config.LogLevel)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	zerolog.SetGlobalLevel(level)
	logger := logging.NewZerologAdapter(
		logging.NewConsoleLogger(a.ErrWriter, level, a.Config.NoColor).With().Str("run_id", a.RunID).Logger())

	selected, err := orchestration.SelectEstimators(a.Config.Algo, a.Factory)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}

	if a.Config.TraceFile != "" {
		stop, err := a.startTracing(logger)
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer stop()
	}

	collector := metrics.NewCollector(a.RunID)
	rt := orchestration.Runtime{
		Logger:   logger,
		Recorder: collector,
		Runs:     collector,
		RunID:    a.RunID,
	}
	logger.Debug("configuration resolved",
		logging.Int64("domain", a.Config.Domain),
		logging.Int64("batch_size", a.Config.BatchSize),
		logging.Int("workers", a.Config.Workers),
		logging.Int("retries", a.Config.Retries),
		logging.String("algo", a.Config.Algo))

	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	var (
		code    int
		results []orchestration.EstimationResult
	)
	if a.Config.TUI {
		code, results = tui.Run(ctx, selected, a.Config, rt, Version)
	} else {
		code, results = a.runCalculate(ctx, selected, rt, out)
	}

	if outCode := a.writeOutputs(results, collector, logger, out); code == apperrors.ExitSuccess {
		code = outCode
	}
	return code
}

// writeOutputs writes the optional YAML report and metrics textfile.
func (a *Application) writeOutputs(results []orchestration.EstimationResult, collector *metrics.Collector, logger logging.Logger, out io.Writer) int {
	code := apperrors.ExitSuccess
	announce := !a.Config.Quiet && !a.Config.TUI

	if a.Config.OutputFile != "" && len(results) > 0 {
		report := cli.BuildReport(a.RunID, a.Config, results)
		if err := cli.WriteReport(a.Config.OutputFile, report); err != nil {
			logger.Error("failed to write report", err, logging.String("path", a.Config.OutputFile))
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			code = apperrors.ExitErrorGeneric
		} else if announce {
			cli.DisplaySaved(out, "Report", a.Config.OutputFile)
		}
	}

	if a.Config.MetricsFile != "" {
		if err := collector.WriteTextfile(a.Config.MetricsFile); err != nil {
			logger.Error("failed to write metrics", err, logging.String("path", a.Config.MetricsFile))
			fmt.Fprintf(a.ErrWriter, "Error saving metrics: %v\n", err)
			code = apperrors.ExitErrorGeneric
		} else if announce {
			cli.DisplaySaved(out, "Metrics", a.Config.MetricsFile)
		}
	}
	return code
}

// startTracing exports spans to the --trace-file path until the returned
// function is called.
func (a *Application) startTracing(logger logging.Logger) (func(), error) {
	path := a.Config.TraceFile
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	shutdown, err := tracing.Initialize(tracing.Config{ServiceVersion: Version, RunID: a.RunID, Writer: f})
	if err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to flush spans", err, logging.String("path", path))
		}
		if err := f.Close(); err != nil {
			logger.Error("failed to close trace file", err, logging.String("path", path))
		}
	}, nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
