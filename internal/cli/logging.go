package cli

import (
	"io"
	"log/slog"

	"github.com/rs/xid"
)

func newRunID() string {
	return xid.New().String()
}

// newLogger builds the stderr logger for one run. Every record carries run_id.
func newLogger(w io.Writer, s Settings, runID string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel}
	var h slog.Handler
	if s.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("run_id", runID)
}

// logObserver writes window transitions at debug level.
type logObserver struct {
	log *slog.Logger
}

func (o logObserver) WindowStarted(window, size int) {
	o.log.Debug("window started", "window", window, "size", size)
}

func (o logObserver) WindowFinished(window, size int, err error) {
	if err != nil {
		o.log.Debug("window failed", "window", window, "size", size, "err", err)
		return
	}
	o.log.Debug("window finished", "window", window, "size", size)
}
