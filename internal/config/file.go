package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/picalc/internal/errors"
)

// FileConfig is the YAML configuration file. Absent keys stay nil and leave
// the corresponding setting alone.
type FileConfig struct {
	Domain      *int64         `yaml:"domain"`
	BatchSize   *int64         `yaml:"batch_size"`
	Workers     *int           `yaml:"workers"`
	Seed        *uint64        `yaml:"seed"`
	Retries     *int           `yaml:"retries"`
	Algo        *string        `yaml:"algo"`
	Timeout     *time.Duration `yaml:"timeout"`
	Quiet       *bool          `yaml:"quiet"`
	Verbose     *bool          `yaml:"verbose"`
	NoColor     *bool          `yaml:"no_color"`
	TUI         *bool          `yaml:"tui"`
	OutputFile  *string        `yaml:"output"`
	MetricsFile *string        `yaml:"metrics_file"`
	TraceFile   *string        `yaml:"trace_file"`
	LogLevel    *string        `yaml:"log_level"`
}

// LoadFile reads and strictly decodes a YAML configuration file. Unknown
// keys are an error.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("reading config file: %v", err)
	}
	return decodeFile(data)
}

func decodeFile(data []byte) (FileConfig, error) {
	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return FileConfig{}, apperrors.NewConfigError("parsing config file: %v", err)
	}
	return fc, nil
}

// applyFile copies file values into cfg for every setting whose flag was not
// given on the command line.
func applyFile(cfg *AppConfig, fc FileConfig, fs *flag.FlagSet) {
	set := func(flags ...string) bool { return !isFlagSetAny(fs, flags...) }

	if fc.Domain != nil && set("domain", "d") {
		cfg.Domain = *fc.Domain
	}
	if fc.BatchSize != nil && set("batch-size", "batch_size", "b") {
		cfg.BatchSize = *fc.BatchSize
		cfg.batchSizeSet = true
	}
	if fc.Workers != nil && set("workers") {
		cfg.Workers = *fc.Workers
	}
	if fc.Seed != nil && set("seed") {
		cfg.Seed = *fc.Seed
	}
	if fc.Retries != nil && set("retries") {
		cfg.Retries = *fc.Retries
	}
	if fc.Algo != nil && set("algo") {
		cfg.Algo = *fc.Algo
	}
	if fc.Timeout != nil && set("timeout") {
		cfg.Timeout = *fc.Timeout
	}
	if fc.Quiet != nil && set("quiet", "q") {
		cfg.Quiet = *fc.Quiet
	}
	if fc.Verbose != nil && set("verbose", "v") {
		cfg.Verbose = *fc.Verbose
	}
	if fc.NoColor != nil && set("no-color") {
		cfg.NoColor = *fc.NoColor
	}
	if fc.TUI != nil && set("tui") {
		cfg.TUI = *fc.TUI
	}
	if fc.OutputFile != nil && set("output", "o") {
		cfg.OutputFile = *fc.OutputFile
	}
	if fc.MetricsFile != nil && set("metrics-file") {
		cfg.MetricsFile = *fc.MetricsFile
	}
	if fc.TraceFile != nil && set("trace-file") {
		cfg.TraceFile = *fc.TraceFile
	}
	if fc.LogLevel != nil && set("log-level") {
		cfg.LogLevel = *fc.LogLevel
	}
}
