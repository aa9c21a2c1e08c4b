package engine

import "time"

// Mode names how a run was executed.
type Mode string

const (
	ModeSerial   Mode = "serial"
	ModeParallel Mode = "parallel"
)

// Result summarizes a finished run.
//
// Only Estimate is part of the program's output; the rest feeds logs and tests.
type Result struct {
	Mode Mode

	// Samples is the total number of distances joined into the estimate.
	Samples int

	// Inside is how many of those distances were <= 1.
	Inside int

	Estimate float64

	// Plan is the partition plan; a serial run has the single window [Samples].
	Plan []int

	// CompletionOrder lists window indexes in the order their batches were joined.
	CompletionOrder []int

	// FinalState is the terminal state of each window.
	FinalState ExecutionState

	Elapsed time.Duration
}
