package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/errors"

	"montecarlopi/internal/engine"
	"montecarlopi/internal/trace"
)

// Estimator is the minimal engine interface the CLI wires into.
//
// This allows the CLI to prove exit-code mapping (including panic) in tests
// without depending on executor internals.
type Estimator interface {
	RunSerial(ctx context.Context, samples int) (*engine.Result, error)
	RunParallel(ctx context.Context, cfg engine.ParallelConfig) (*engine.Result, error)
}

// Streams are the process output streams. Stdout receives only the estimate.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

type CLIResult struct {
	ExitCode int
	RunID    string
	Result   *engine.Result
}

// Execute runs inv against a fully wired engine.Executor.
func Execute(ctx context.Context, inv CLIInvocation, streams Streams) (CLIResult, error) {
	return ExecuteWithEstimator(ctx, inv, streams, nil)
}

// ExecuteWithEstimator maps a CLIInvocation to engine execution.
//
// Responsibilities:
//   - Load the env file and MCPI_* settings, then build the run logger.
//   - Run the requested mode; a nil estimator selects engine.Executor wired
//     with the trace recorder, debug logging and the optional progress bar.
//   - Print exactly one estimate line on success and nothing on failure.
//   - Translate outcomes to semantic exit codes.
func ExecuteWithEstimator(ctx context.Context, inv CLIInvocation, streams Streams, est Estimator) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	stdout, stderr := streams.Stdout, streams.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	if inv.Help {
		_, _ = io.WriteString(stderr, inv.Usage)
		res.ExitCode = ExitSuccess
		return res, nil
	}

	if err := loadEnvFile(inv); err != nil {
		res.ExitCode = ExitCode(err)
		return res, err
	}
	settings, err := loadSettings(inv)
	if err != nil {
		res.ExitCode = ExitCode(err)
		return res, err
	}

	res.RunID = newRunID()
	log := newLogger(stderr, settings, res.RunID)
	rec := trace.NewRecorder()

	var progress *progressObserver
	if est == nil {
		exec := engine.NewExecutor()
		exec.Logger = log
		exec.Trace = rec
		observers := engine.Observers{logObserver{log: log}}
		if settings.Progress && inv.Mode == ModeParallel {
			progress = newProgressObserver(stderr, inv.Samples)
			observers = append(observers, progress)
		}
		exec.Observer = observers
		est = exec
	}

	defer func() {
		if r := recover(); r != nil {
			res.ExitCode = ExitInternalError
			res.Result = nil
			execErr = fmt.Errorf("panic: %v", r)
			log.Error("run panicked", "panic", r)
		}
	}()

	log.Info("run started", "mode", inv.Mode, "samples", inv.Samples, "jobs", inv.Jobs, "window", inv.Window)

	var result *engine.Result
	switch inv.Mode {
	case ModeSerial:
		result, err = est.RunSerial(ctx, inv.Samples)
	case ModeParallel:
		result, err = est.RunParallel(ctx, engine.ParallelConfig{Samples: inv.Samples, Jobs: inv.Jobs, Window: inv.Window})
	default:
		err = invalidInvocationf("unknown mode %q", inv.Mode)
	}
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		res.ExitCode = exitCodeForRunError(err)
		log.Error("run failed", "mode", inv.Mode, "err", err)
		return res, errors.Wrapf(err, "%s run", inv.Mode)
	}
	if result == nil {
		return res, errors.Errorf("%s run: nil result", inv.Mode)
	}

	log.Info("run finished",
		"mode", result.Mode,
		"samples", result.Samples,
		"inside", result.Inside,
		"windows", len(result.Plan),
		"elapsed", result.Elapsed,
	)
	logTrace(ctx, log, rec, res.RunID)

	if _, err := fmt.Fprintf(stdout, "%.5f\n", result.Estimate); err != nil {
		outErr := &OutputError{Err: err}
		res.ExitCode = ExitOutputError
		log.Error("writing estimate failed", "err", err)
		return res, outErr
	}

	res.Result = result
	res.ExitCode = ExitSuccess
	return res, nil
}

func logTrace(ctx context.Context, log *slog.Logger, rec *trace.Recorder, runID string) {
	if !log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	tr := rec.Trace(runID)
	b, err := tr.CanonicalJSON()
	if err != nil {
		log.Debug("window trace unavailable", "err", err)
		return
	}
	log.Debug("window trace", "trace", string(b), "completion_order", tr.CompletionOrder())
}

func exitCodeForRunError(err error) int {
	var invErr *InvocationError
	switch {
	case errors.As(err, &invErr):
		return ExitCode(err)
	case errors.Is(err, engine.ErrInvalidPlan):
		return ExitInvalidInvocation
	case errors.Is(err, engine.ErrWorkerLost), errors.Is(err, engine.ErrCancelled):
		return ExitRunFailure
	default:
		return ExitInternalError
	}
}
