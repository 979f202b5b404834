// Package montecarlo estimates π by sampling random points in the square
// [-1,1]×[-1,1] and counting those that fall inside the unit circle.
//
// Two strategies are provided. EstimateSequential samples every point on the
// calling goroutine. EstimateParallel splits the work into a BatchPlan,
// dispatches each batch to a bounded pool of goroutines and folds the partial
// (hits, total) pairs as they complete. Aggregation is a sum, so completion
// order never changes the final counts.
//
// Every batch draws from its own PCG generator seeded from (seed, batch
// index); no random source is shared between goroutines. With Options.Seed
// set, a run is reproducible regardless of scheduling.
package montecarlo
