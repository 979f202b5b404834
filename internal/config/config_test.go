package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/montecarlo"
)

var testEstimators = []string{"parallel", "pointwise", "sequential"}

func parse(t *testing.T, args ...string) (AppConfig, error) {
	t.Helper()
	var buf bytes.Buffer
	return ParseConfig("picalc", args, &buf, testEstimators)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parse(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != montecarlo.DefaultDomain {
		t.Errorf("Domain = %d, want %d", cfg.Domain, montecarlo.DefaultDomain)
	}
	if cfg.BatchSize != montecarlo.DefaultMaxBatch {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, montecarlo.DefaultMaxBatch)
	}
	if cfg.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Workers)
	}
	if cfg.Algo != DefaultAlgo || cfg.Timeout != DefaultTimeout || cfg.Retries != 1 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfig_FlagsAndAliases(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(AppConfig) bool
	}{
		{"long domain", []string{"--domain", "100"}, func(c AppConfig) bool { return c.Domain == 100 }},
		{"short domain", []string{"-d", "42"}, func(c AppConfig) bool { return c.Domain == 42 }},
		{"batch-size", []string{"--batch-size", "500"}, func(c AppConfig) bool { return c.BatchSize == 500 }},
		{"batch_size alias", []string{"--batch_size", "25"}, func(c AppConfig) bool { return c.BatchSize == 25 }},
		{"short batch", []string{"-b", "7"}, func(c AppConfig) bool { return c.BatchSize == 7 }},
		{"workers", []string{"--workers", "3"}, func(c AppConfig) bool { return c.Workers == 3 }},
		{"seed", []string{"--seed", "99"}, func(c AppConfig) bool { return c.Seed == 99 }},
		{"quiet", []string{"-q"}, func(c AppConfig) bool { return c.Quiet }},
		{"timeout", []string{"--timeout", "30s"}, func(c AppConfig) bool { return c.Timeout == 30*time.Second }},
		{"algo all", []string{"--algo", "all"}, func(c AppConfig) bool { return c.Algo == "all" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(cfg) {
				t.Errorf("check failed for %v: %+v", tt.args, cfg)
			}
		})
	}
}

func TestParseConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"zero domain", []string{"--domain", "0"}, "domain"},
		{"negative domain", []string{"-d", "-3"}, "domain"},
		{"overflowing domain", []string{"-d", "3037000500"}, "domain"},
		{"negative batch", []string{"--batch-size", "-1"}, "batch-size"},
		{"negative workers", []string{"--workers", "-2"}, "workers"},
		{"too many workers", []string{"--workers", "1000000000"}, "workers"},
		{"zero batch", []string{"--batch-size", "0"}, "batch-size"},
		{"too many retries", []string{"--retries", "99"}, "retries"},
		{"bad log level", []string{"--log-level", "loud"}, "log-level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.args...)
			var valErr apperrors.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", valErr.Field, tt.field)
			}
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestParseConfig_ConfigErrors(t *testing.T) {
	for _, args := range [][]string{
		{"--algo", "quantum"},
		{"--quiet", "--tui"},
		{"extra-arg"},
	} {
		if _, err := parse(t, args...); !apperrors.IsConfigurationError(err) {
			t.Errorf("args %v: expected configuration error, got %v", args, err)
		}
	}
}

func TestParseConfig_Help(t *testing.T) {
	var buf bytes.Buffer
	_, err := ParseConfig("picalc", []string{"-h"}, &buf, testEstimators)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("-batch-size")) {
		t.Errorf("usage should list flags, got %q", buf.String())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PICALC_DOMAIN", "321")
	t.Setenv("PICALC_WORKERS", "2")
	t.Setenv("PICALC_QUIET", "yes")
	t.Setenv("PICALC_TIMEOUT", "not-a-duration")

	cfg, err := parse(t, "--workers", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != 321 {
		t.Errorf("Domain = %d, want 321 from env", cfg.Domain)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, flag should beat env", cfg.Workers)
	}
	if !cfg.Quiet {
		t.Error("Quiet should be set from env")
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("malformed env value should be ignored, got %s", cfg.Timeout)
	}
}

func TestConfigFile_Priority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "picalc.yaml")
	content := "domain: 800\nbatch_size: 1000\nworkers: 6\nseed: 17\ntimeout: 45s\nalgo: parallel\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICALC_WORKERS", "4")

	cfg, err := parse(t, "--config", path, "--seed", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != 800 || cfg.BatchSize != 1000 || cfg.Algo != "parallel" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %s, want 45s", cfg.Timeout)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, env should beat file", cfg.Workers)
	}
	if cfg.Seed != 3 {
		t.Errorf("Seed = %d, flag should beat file", cfg.Seed)
	}
}

func TestConfigFile_FromEnvAndErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("domain: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PICALC_CONFIG", good)
	cfg, err := parse(t)
	if err != nil || cfg.Domain != 12 {
		t.Fatalf("PICALC_CONFIG not honored: %+v, %v", cfg, err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("domian: 12\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := parse(t, "--config", bad); !apperrors.IsConfigurationError(err) {
		t.Errorf("unknown key should be a config error, got %v", err)
	}
	if _, err := parse(t, "--config", filepath.Join(dir, "missing.yaml")); !apperrors.IsConfigurationError(err) {
		t.Errorf("missing file should be a config error, got %v", err)
	}
}

func TestParseConfig_ExplicitZeroBatchSize(t *testing.T) {
	dir := t.TempDir()
	zeroFile := filepath.Join(dir, "zero.yaml")
	if err := os.WriteFile(zeroFile, []byte("batch_size: 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		env  string
		args []string
	}{
		{"flag", "", []string{"--domain", "10", "--batch-size", "0"}},
		{"alias", "", []string{"--domain", "10", "--batch_size", "0"}},
		{"env", "0", []string{"--domain", "10"}},
		{"file", "", []string{"--domain", "10", "--config", zeroFile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("PICALC_BATCH_SIZE", tt.env)
			}
			cfg, err := parse(t, tt.args...)
			var valErr apperrors.ValidationError
			if !errors.As(err, &valErr) || valErr.Field != "batch-size" {
				t.Fatalf("expected batch-size ValidationError, got cfg=%+v err=%v", cfg, err)
			}
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d, want %d", apperrors.ExitCodeFor(err), apperrors.ExitErrorConfig)
			}
		})
	}
}

func TestParseConfig_UnsetBatchSizeIsAdaptive(t *testing.T) {
	t.Setenv("PICALC_BATCH_SIZE", "not-a-number")
	cfg, err := parse(t, "--domain", "10", "--workers", "4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25 (100 points over 4 workers)", cfg.BatchSize)
	}
}

func TestDecodeFile_Empty(t *testing.T) {
	fc, err := decodeFile(nil)
	if err != nil {
		t.Fatalf("empty file should decode, got %v", err)
	}
	if fc.Domain != nil {
		t.Error("empty file should leave fields nil")
	}
}

func TestEstimateBatchSize(t *testing.T) {
	tests := []struct {
		domain  int64
		workers int
		want    int64
	}{
		{5000, 8, montecarlo.DefaultMaxBatch},
		{10, 4, 25},
		{10, 3, 34},
		{1, 16, 1},
		{0, 4, montecarlo.DefaultMaxBatch},
	}
	for _, tt := range tests {
		if got := EstimateBatchSize(tt.domain, tt.workers); got != tt.want {
			t.Errorf("EstimateBatchSize(%d, %d) = %d, want %d", tt.domain, tt.workers, got, tt.want)
		}
	}
}

func TestSplitAlgo(t *testing.T) {
	keys, err := SplitAlgo(" Sequential, parallel ,sequential", testEstimators)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 2 || keys[0] != "sequential" || keys[1] != "parallel" {
		t.Errorf("SplitAlgo = %v", keys)
	}
	all, _ := SplitAlgo("all", testEstimators)
	if len(all) != 3 {
		t.Errorf("all should select every estimator, got %v", all)
	}
	if _, err := SplitAlgo(",", testEstimators); err == nil {
		t.Error("empty selection should fail")
	}
}

func TestEstimatorOptions(t *testing.T) {
	cfg := AppConfig{BatchSize: 10, Workers: 2, Seed: 5, Retries: 0}
	opts := cfg.EstimatorOptions()
	if opts.MaxBatch != 10 || opts.Workers != 2 || opts.Seed != 5 || opts.Retries != 0 {
		t.Errorf("EstimatorOptions = %+v", opts)
	}
}
