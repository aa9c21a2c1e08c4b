// Package engine runs the Monte Carlo estimator in serial or parallel mode.
//
// It is split into:
//   - Planning (Partition, PlanWindows): a pure split of the sample budget into
//     balanced windows.
//   - Execution state (ExecutionState): per-window runtime status with validated
//     transitions.
//   - Execution (Executor): runs windows on a bounded goroutine pool and joins
//     their batches into one estimate.
//
// The estimate depends only on the multiset of sampled distances, so window
// completion order never affects the result.
package engine
