package config

import (
	"github.com/agbru/picalc/internal/montecarlo"
	"github.com/agbru/picalc/internal/sysmon"
)

// ApplyAdaptiveDefaults fills settings left unset from the host:
//   - Workers: CPUs available to the process (affinity mask on Linux) when 0.
//   - BatchSize: montecarlo.DefaultMaxBatch, reduced so that every worker
//     gets at least one batch on small domains, when no flag, env variable
//     or file key gave one.
//
// Explicit values, including an explicit batch size of 0, are left for
// Validate.
func ApplyAdaptiveDefaults(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = sysmon.AvailableCPUs()
	}
	if cfg.BatchSize == 0 && !cfg.batchSizeSet {
		cfg.BatchSize = EstimateBatchSize(cfg.Domain, cfg.Workers)
	}
	return cfg
}

// EstimateBatchSize picks a batch size for domain² points spread over
// workers goroutines.
func EstimateBatchSize(domain int64, workers int) int64 {
	if domain <= 0 || domain > montecarlo.MaxDomain || workers <= 0 {
		return montecarlo.DefaultMaxBatch
	}
	total := domain * domain
	perWorker := (total + int64(workers) - 1) / int64(workers)
	return max(1, min(montecarlo.DefaultMaxBatch, perWorker))
}
