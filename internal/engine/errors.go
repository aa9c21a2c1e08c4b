package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPlan = errors.New("invalid run plan")
	ErrWorkerLost  = errors.New("worker lost")
	ErrCancelled   = errors.New("run cancelled")
)

// RunError wraps execution failures with the window they occurred in.
//
// Window is -1 when the failure is not tied to a single window.
type RunError struct {
	Kind   error
	Window int
	Msg    string
	Cause  error
}

func (e *RunError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Window >= 0 {
		msg = fmt.Sprintf("%s: window %d", msg, e.Window)
	}
	if e.Msg != "" {
		msg = msg + ": " + e.Msg
	}
	return msg
}

func (e *RunError) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := []error{e.Kind}
	if e.Cause != nil {
		out = append(out, e.Cause)
	}
	return out
}

func invalidPlanf(format string, args ...any) error {
	return &RunError{Kind: ErrInvalidPlan, Window: -1, Msg: fmt.Sprintf(format, args...)}
}

func workerLost(window int, recovered any) error {
	var cause error
	switch v := recovered.(type) {
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}
	return &RunError{
		Kind:   ErrWorkerLost,
		Window: window,
		Msg:    "panic: " + cause.Error(),
		Cause:  errors.WithStack(cause),
	}
}

func workerLostf(window int, format string, args ...any) error {
	return &RunError{Kind: ErrWorkerLost, Window: window, Msg: fmt.Sprintf(format, args...)}
}

func cancelled(cause error) error {
	return &RunError{Kind: ErrCancelled, Window: -1, Msg: "execution cancelled", Cause: cause}
}
