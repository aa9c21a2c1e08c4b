package engine

import "fmt"

// IsTerminal reports whether the state is terminal (finished).
func IsTerminal(s WindowState) bool {
	switch s {
	case WindowCompleted, WindowFailed, WindowSkipped:
		return true
	default:
		return false
	}
}

// Transition performs a validated transition for a single window.
//
// The caller supplies the expected prior state (from) to make races observable.
// The state is mutated if and only if the transition is valid.
func Transition(state ExecutionState, window int, from, to WindowState) error {
	if window < 0 || window >= len(state) {
		return fmt.Errorf("unknown window in state: %d", window)
	}
	cur := state[window]
	if cur != from {
		return fmt.Errorf("invalid transition for window %d: expected %s, got %s", window, from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for window %d: %s -> %s", window, from, to)
	}
	state[window] = to
	return nil
}

func isAllowedTransition(from, to WindowState) bool {
	switch from {
	case WindowPending:
		return to == WindowRunning || to == WindowSkipped
	case WindowRunning:
		return to == WindowCompleted || to == WindowFailed
	default:
		return false
	}
}

// SkipPending marks every PENDING window as SKIPPED and returns their indexes
// in ascending order.
func SkipPending(state ExecutionState) []int {
	var skipped []int
	for i, st := range state {
		if st == WindowPending {
			state[i] = WindowSkipped
			skipped = append(skipped, i)
		}
	}
	return skipped
}
