package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// ExecutionTrace is the record of how a run's windows were scheduled.
//
// Invariants:
//   - Must carry the RunID of the invocation that produced it.
//   - Canonical output contains only logical facts (window, size, outcome),
//     never timing-derived values such as Seq.
//
// The trace is observational only and must never affect execution behavior.
type ExecutionTrace struct {
	RunID  string
	Events []TraceEvent
}

// TraceEventKind is the stable discriminator for TraceEvent.
//
// The string values are part of the canonical bytes; do not rename.
type TraceEventKind string

const (
	EventWindowDispatched TraceEventKind = "WindowDispatched"
	EventWindowCompleted  TraceEventKind = "WindowCompleted"
	EventWindowFailed     TraceEventKind = "WindowFailed"
	EventWindowSkipped    TraceEventKind = "WindowSkipped"
)

// TraceEvent is a single window transition.
type TraceEvent struct {
	Kind TraceEventKind

	// Window is the index of the window in the partition plan.
	Window int

	// Size is the number of samples assigned to the window.
	Size int

	// Seq is the 1-based order in which the runner joined the window's batch.
	// It depends on scheduling and is excluded from canonical output.
	Seq int

	// Reason is a short failure reason for WindowFailed events.
	Reason string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.RunID == "" {
		return errors.New("runId is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Window < 0 {
			return fmt.Errorf("events[%d].window must be >= 0", i)
		}
		if e.Size < 1 {
			return fmt.Errorf("events[%d].size must be >= 1", i)
		}
	}
	return nil
}

// Canonicalize sorts the trace into its canonical form.
//
// Ordering is independent of execution timing: events are stably sorted by
// (window, kindOrder, reason).
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]
		if a.Window != b.Window {
			return a.Window < b.Window
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		return a.Reason < b.Reason
	})
}

func kindOrder(k TraceEventKind) int {
	switch k {
	case EventWindowDispatched:
		return 10
	case EventWindowCompleted:
		return 20
	case EventWindowFailed:
		return 30
	case EventWindowSkipped:
		return 40
	default:
		return 1000
	}
}

// CompletionOrder returns window indexes of completed events ordered by Seq.
func (t ExecutionTrace) CompletionOrder() []int {
	done := make([]TraceEvent, 0, len(t.Events))
	for _, e := range t.Events {
		if e.Kind == EventWindowCompleted {
			done = append(done, e)
		}
	}
	sort.SliceStable(done, func(i, j int) bool { return done[i].Seq < done[j].Seq })
	out := make([]int, len(done))
	for i, e := range done {
		out[i] = e.Window
	}
	return out
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy of the trace to avoid mutating the caller's slices.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	copyTrace := ExecutionTrace{RunID: t.RunID}
	copyTrace.Events = make([]TraceEvent, len(t.Events))
	copy(copyTrace.Events, t.Events)
	copyTrace.Canonicalize()
	if err := copyTrace.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&copyTrace)
}

// MarshalJSON fixes field ordering. It does not sort; use CanonicalJSON for that.
func (t ExecutionTrace) MarshalJSON() ([]byte, error) {
	if t.RunID == "" {
		return nil, errors.New("runId is required")
	}
	var buf bytes.Buffer
	buf.WriteString("{\"runId\":")
	rb, _ := json.Marshal(t.RunID)
	buf.Write(rb)

	buf.WriteString(",\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field ordering and omits Seq and an empty Reason.
func (e TraceEvent) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteString("{\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	buf.WriteString(",\"window\":")
	buf.WriteString(strconv.Itoa(e.Window))
	buf.WriteString(",\"size\":")
	buf.WriteString(strconv.Itoa(e.Size))

	if e.Reason != "" {
		buf.WriteString(",\"reason\":")
		rb, _ := json.Marshal(e.Reason)
		buf.Write(rb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
