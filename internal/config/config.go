// Package config parses the command line, environment and optional YAML file
// into an AppConfig.
//
// Resolution order, highest priority first:
//  1. CLI flags
//  2. PICALC_* environment variables
//  3. the YAML file named by --config (or PICALC_CONFIG)
//  4. adaptive defaults (ApplyAdaptiveDefaults)
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/montecarlo"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "PICALC_"

const (
	// DefaultAlgo is the comparison run when --algo is not given.
	DefaultAlgo = "sequential,parallel"
	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 5 * time.Minute
	// MaxRetries bounds --retries.
	MaxRetries = 16
	// MaxWorkers bounds --workers.
	MaxWorkers = 4096
)

// AppConfig holds everything the application needs to run.
type AppConfig struct {
	Domain      int64         `yaml:"domain"`
	BatchSize   int64         `yaml:"batch_size"`
	Workers     int           `yaml:"workers"`
	Seed        uint64        `yaml:"seed"`
	Retries     int           `yaml:"retries"`
	Algo        string        `yaml:"algo"`
	Timeout     time.Duration `yaml:"timeout"`
	Quiet       bool          `yaml:"quiet"`
	Verbose     bool          `yaml:"verbose"`
	NoColor     bool          `yaml:"no_color"`
	TUI         bool          `yaml:"tui"`
	OutputFile  string        `yaml:"output"`
	MetricsFile string        `yaml:"metrics_file"`
	TraceFile   string        `yaml:"trace_file"`
	LogLevel    string        `yaml:"log_level"`
	ConfigFile  string        `yaml:"-"`
	ShowVersion bool          `yaml:"-"`

	// batchSizeSet records that some layer gave BatchSize explicitly, so an
	// explicit 0 reaches Validate instead of becoming the adaptive default.
	batchSizeSet bool
}

// EstimatorOptions converts the configuration into estimator options.
func (c AppConfig) EstimatorOptions() montecarlo.Options {
	return montecarlo.Options{
		MaxBatch: c.BatchSize,
		Workers:  c.Workers,
		Seed:     c.Seed,
		Retries:  c.Retries,
	}
}

// ParseConfig parses args (without the program name) into an AppConfig.
// Usage goes to errWriter. -h/--help returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableEstimators []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	var cfg AppConfig
	fs.Int64Var(&cfg.Domain, "domain", montecarlo.DefaultDomain, "Side length of the sampling grid; domain² points are drawn.")
	fs.Int64Var(&cfg.Domain, "d", montecarlo.DefaultDomain, "Shorthand for --domain.")
	fs.Int64Var(&cfg.BatchSize, "batch-size", 0, fmt.Sprintf("Largest batch dispatched to a worker (default: auto, up to %d).", montecarlo.DefaultMaxBatch))
	fs.Int64Var(&cfg.BatchSize, "batch_size", 0, "Alias for --batch-size.")
	fs.Int64Var(&cfg.BatchSize, "b", 0, "Shorthand for --batch-size.")
	fs.IntVar(&cfg.Workers, "workers", 0, "Batches run concurrently (0 = CPUs available to the process).")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Random seed for reproducible runs (0 = random).")
	fs.IntVar(&cfg.Retries, "retries", montecarlo.DefaultRetries, "Extra attempts for a failed batch.")
	fs.StringVar(&cfg.Algo, "algo", DefaultAlgo, fmt.Sprintf("Estimators to run: 'all' or a comma-separated list of %s.", strings.Join(availableEstimators, ", ")))
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum run time (e.g. 30s, 2m).")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only 'name pi' per estimator.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print counters, seed and resource usage.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Run the interactive dashboard.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write a YAML report to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file.")
	fs.StringVar(&cfg.TraceFile, "trace-file", "", "Write OpenTelemetry spans as JSON to this file.")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error, disabled.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file.")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.batchSizeSet = isFlagSetAny(fs, "batch-size", "batch_size", "b")

	if !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", cfg.ConfigFile)
	}
	if cfg.ConfigFile != "" {
		fileCfg, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, err
		}
		applyFile(&cfg, fileCfg, fs)
	}
	applyEnvOverrides(&cfg, fs)

	cfg = ApplyAdaptiveDefaults(cfg)
	if err := cfg.Validate(availableEstimators); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks ranges and cross-field constraints.
func (c AppConfig) Validate(availableEstimators []string) error {
	if c.Domain <= 0 || c.Domain > montecarlo.MaxDomain {
		return apperrors.ValidationError{
			Field:   "domain",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", montecarlo.MaxDomain, c.Domain),
		}
	}
	if c.BatchSize <= 0 {
		return apperrors.ValidationError{Field: "batch-size", Message: fmt.Sprintf("must be positive, got %d", c.BatchSize)}
	}
	if c.Workers <= 0 || c.Workers > MaxWorkers {
		return apperrors.ValidationError{Field: "workers", Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxWorkers, c.Workers)}
	}
	if c.Retries < 0 || c.Retries > MaxRetries {
		return apperrors.ValidationError{Field: "retries", Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxRetries, c.Retries)}
	}
	if c.Timeout <= 0 {
		return apperrors.ValidationError{Field: "timeout", Message: "must be positive"}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ValidationError{Field: "log-level", Message: err.Error()}
	}
	if c.Quiet && c.TUI {
		return apperrors.NewConfigError("--quiet and --tui cannot be combined")
	}
	if _, err := SplitAlgo(c.Algo, availableEstimators); err != nil {
		return err
	}
	return nil
}

// SplitAlgo expands an --algo value into estimator keys. "all" selects every
// available estimator.
func SplitAlgo(algo string, availableEstimators []string) ([]string, error) {
	algo = strings.ToLower(strings.TrimSpace(algo))
	if algo == "" || algo == "all" {
		return availableEstimators, nil
	}
	known := make(map[string]bool, len(availableEstimators))
	for _, k := range availableEstimators {
		known[k] = true
	}
	var keys []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(algo, ",") {
		key := strings.TrimSpace(part)
		if key == "" || seen[key] {
			continue
		}
		if !known[key] {
			return nil, apperrors.NewConfigError("unknown estimator %q (available: %s)",
				key, strings.Join(availableEstimators, ", "))
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, apperrors.NewConfigError("no estimator selected")
	}
	return keys, nil
}
