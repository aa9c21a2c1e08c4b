package engine

// WindowState is the runtime execution state of a single window.
//
//	PENDING, RUNNING, COMPLETED, FAILED, SKIPPED
type WindowState string

const (
	WindowPending   WindowState = "PENDING"
	WindowRunning   WindowState = "RUNNING"
	WindowCompleted WindowState = "COMPLETED"
	WindowFailed    WindowState = "FAILED"
	WindowSkipped   WindowState = "SKIPPED"
)

// ExecutionState holds the state of each window, indexed like the plan.
type ExecutionState []WindowState

// NewExecutionState returns a state with n windows, all PENDING.
func NewExecutionState(n int) ExecutionState {
	st := make(ExecutionState, n)
	for i := range st {
		st[i] = WindowPending
	}
	return st
}

// Count returns how many windows are in s.
func (st ExecutionState) Count(s WindowState) int {
	n := 0
	for _, cur := range st {
		if cur == s {
			n++
		}
	}
	return n
}
