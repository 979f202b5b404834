package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// parseBool accepts "true", "1", "yes" and "false", "0", "no"
// (case-insensitive).
func parseBool(val string) (bool, bool) {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the aliases of a flag were set.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride maps an env key (without the PICALC_ prefix) to the flag
// aliases it stands in for. Malformed values are ignored.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

var envOverrides = []envOverride{
	{"DOMAIN", []string{"domain", "d"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Domain = parsed
		}
	}},
	{"BATCH_SIZE", []string{"batch-size", "batch_size", "b"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.BatchSize = parsed
			c.batchSizeSet = true
		}
	}},
	{"WORKERS", []string{"workers"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Workers = parsed
		}
	}},
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}},
	{"RETRIES", []string{"retries"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Retries = parsed
		}
	}},
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},
	{"ALGO", []string{"algo"}, func(c *AppConfig, v string) { c.Algo = v }},
	{"OUTPUT", []string{"output", "o"}, func(c *AppConfig, v string) { c.OutputFile = v }},
	{"METRICS_FILE", []string{"metrics-file"}, func(c *AppConfig, v string) { c.MetricsFile = v }},
	{"TRACE_FILE", []string{"trace-file"}, func(c *AppConfig, v string) { c.TraceFile = v }},
	{"LOG_LEVEL", []string{"log-level"}, func(c *AppConfig, v string) { c.LogLevel = v }},
	{"QUIET", []string{"quiet", "q"}, func(c *AppConfig, v string) {
		if b, ok := parseBool(v); ok {
			c.Quiet = b
		}
	}},
	{"VERBOSE", []string{"verbose", "v"}, func(c *AppConfig, v string) {
		if b, ok := parseBool(v); ok {
			c.Verbose = b
		}
	}},
	{"NO_COLOR", []string{"no-color"}, func(c *AppConfig, v string) {
		if b, ok := parseBool(v); ok {
			c.NoColor = b
		}
	}},
	{"TUI", []string{"tui"}, func(c *AppConfig, v string) {
		if b, ok := parseBool(v); ok {
			c.TUI = b
		}
	}},
}

// applyEnvOverrides applies PICALC_* variables to every setting whose flag
// was not given on the command line.
func applyEnvOverrides(cfg *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(cfg, val)
		}
	}
}
