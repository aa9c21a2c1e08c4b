// Package core defines the sampling primitives of the Monte Carlo estimator.
//
// It is split into:
//   - Sampling: Point, Sample and Draw turn a worker-local random source into distances.
//   - Folding: Count and Estimate reduce a DistanceBatch into a pi estimate.
//
// Nothing in this package holds shared state; every random source is owned by
// exactly one caller.
package core
