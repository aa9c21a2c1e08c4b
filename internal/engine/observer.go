package engine

// WindowObserver is notified as windows start and finish.
//
// WindowStarted is called from worker goroutines and WindowFinished from the
// joining goroutine, so implementations must be safe for concurrent use.
// err is nil for a completed window.
type WindowObserver interface {
	WindowStarted(window, size int)
	WindowFinished(window, size int, err error)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) WindowStarted(int, int)         {}
func (NopObserver) WindowFinished(int, int, error) {}

// Observers fans notifications out to every non-nil observer in order.
type Observers []WindowObserver

func (o Observers) WindowStarted(window, size int) {
	for _, obs := range o {
		if obs != nil {
			obs.WindowStarted(window, size)
		}
	}
}

func (o Observers) WindowFinished(window, size int, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.WindowFinished(window, size, err)
		}
	}
}
