package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"montecarlopi/internal/core"
	"montecarlopi/internal/trace"
)

// Executor runs the estimator and tracks per-window state.
//
// An Executor is single-use per run: state is reset at the start of RunSerial
// and RunParallel, and StateSnapshot reflects the most recent run.
type Executor struct {
	// Observer receives window start/finish notifications (optional).
	Observer WindowObserver

	// Trace receives window transitions (optional).
	Trace trace.Sink

	// Logger receives debug records; nil discards.
	Logger *slog.Logger

	// draw produces one window's batch. Tests replace it to simulate lost workers.
	draw func(rng *rand.Rand, n int) core.DistanceBatch

	mu    sync.Mutex
	plan  []int
	state ExecutionState
}

// NewExecutor creates an executor that samples with core.Draw.
func NewExecutor() *Executor {
	return &Executor{draw: core.Draw}
}

// ParallelConfig is the input of RunParallel.
type ParallelConfig struct {
	Samples int

	// Jobs bounds the number of concurrently running windows and, when
	// Window is 0, is the number of windows.
	Jobs int

	// Window is the desired per-window size; 0 selects Jobs windows.
	// A positive Window takes precedence over Jobs for planning.
	Window int
}

// StateSnapshot returns a copy of the current execution state.
func (e *Executor) StateSnapshot() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := make(ExecutionState, len(e.state))
	copy(cp, e.state)
	return cp
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e *Executor) observer() WindowObserver {
	if e.Observer != nil {
		return e.Observer
	}
	return NopObserver{}
}

func (e *Executor) drawFn() func(rng *rand.Rand, n int) core.DistanceBatch {
	if e.draw != nil {
		return e.draw
	}
	return core.Draw
}

// RunSerial draws all samples on the calling goroutine with a single source.
//
// At debug level every sample is logged with its point and distance.
func (e *Executor) RunSerial(ctx context.Context, samples int) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if samples < 1 {
		return nil, invalidPlanf("samples must be >= 1 (got %d)", samples)
	}

	start := time.Now()
	log := e.logger()
	obs := e.observer()

	e.mu.Lock()
	e.plan = []int{samples}
	e.state = NewExecutionState(1)
	err := e.transitionLocked(0, samples, WindowPending, WindowRunning)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	obs.WindowStarted(0, samples)

	rng := core.NewSource()
	distances := make(core.DistanceBatch, 0, samples)
	traceSamples := log.Enabled(ctx, slog.LevelDebug)
	for i := 0; i < samples; i++ {
		p := core.SamplePoint(rng)
		d := p.Distance()
		if traceSamples {
			log.Debug("sample", "point", p.Short(), "distance", fmt.Sprintf("%.3f", d))
		}
		distances = append(distances, d)
	}

	e.mu.Lock()
	err = e.transitionLocked(0, samples, WindowRunning, WindowCompleted)
	if err == nil {
		trace.SafeRecord(e.Trace, trace.TraceEvent{Kind: trace.EventWindowCompleted, Window: 0, Size: samples, Seq: 1})
	}
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}
	obs.WindowFinished(0, samples, nil)

	return e.finish(ModeSerial, []int{samples}, []int{0}, distances, start)
}

type window struct {
	index int
	size  int
}

type windowResult struct {
	index   int
	size    int
	batch   core.DistanceBatch
	err     error
	skipped bool
}

// RunParallel plans windows with PlanWindows and runs them on a pool of
// min(Jobs, len(plan)) goroutines.
//
// Each window draws from its own source and hands its batch back by value.
// Batches are appended in completion order. If any window is lost the run
// fails, windows not yet started are skipped, and no estimate is produced.
func (e *Executor) RunParallel(ctx context.Context, cfg ParallelConfig) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	plan, err := PlanWindows(cfg.Samples, cfg.Jobs, cfg.Window)
	if err != nil {
		return nil, err
	}
	workers := len(plan)
	if cfg.Jobs > 0 {
		workers = min(cfg.Jobs, len(plan))
	}

	start := time.Now()
	log := e.logger()
	obs := e.observer()

	e.mu.Lock()
	e.plan = plan
	e.state = NewExecutionState(len(plan))
	e.mu.Unlock()

	log.Debug("parallel plan", "windows", len(plan), "workers", workers, "plan", plan)

	workCh := make(chan window, len(plan))
	doneCh := make(chan windowResult, len(plan))
	for i, size := range plan {
		workCh <- window{index: i, size: size}
	}
	close(workCh)

	var aborted atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				if aborted.Load() {
					doneCh <- windowResult{index: w.index, size: w.size, skipped: true}
					continue
				}
				if err := e.startWindow(w); err != nil {
					doneCh <- windowResult{index: w.index, size: w.size, err: err}
					continue
				}
				obs.WindowStarted(w.index, w.size)
				batch, err := e.runWindow(w)
				doneCh <- windowResult{index: w.index, size: w.size, batch: batch, err: err}
			}
		}()
	}
	stopWorkers := func() {
		aborted.Store(true)
		wg.Wait()
	}

	joined := make(core.DistanceBatch, 0, cfg.Samples)
	order := make([]int, 0, len(plan))
	var firstErr error

	for received := 0; received < len(plan); received++ {
		var r windowResult
		select {
		case <-ctx.Done():
			stopWorkers()
			e.skipRemaining()
			return nil, cancelled(ctx.Err())
		case r = <-doneCh:
		}

		if r.skipped {
			continue
		}

		e.mu.Lock()
		if r.err != nil {
			if e.state[r.index] == WindowRunning {
				_ = e.transitionLocked(r.index, r.size, WindowRunning, WindowFailed)
			}
			trace.SafeRecord(e.Trace, trace.TraceEvent{
				Kind: trace.EventWindowFailed, Window: r.index, Size: r.size,
				Seq: received + 1, Reason: r.err.Error(),
			})
		} else if err := e.transitionLocked(r.index, r.size, WindowRunning, WindowCompleted); err != nil {
			r.err = err
		} else {
			trace.SafeRecord(e.Trace, trace.TraceEvent{
				Kind: trace.EventWindowCompleted, Window: r.index, Size: r.size, Seq: received + 1,
			})
		}
		e.mu.Unlock()
		obs.WindowFinished(r.index, r.size, r.err)

		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				aborted.Store(true)
			}
			continue
		}

		log.Debug("window joined", "window", r.index, "size", r.size, "joined", len(joined)+len(r.batch))
		order = append(order, r.index)
		joined = append(joined, r.batch...)
	}
	wg.Wait()

	if firstErr != nil {
		e.skipRemaining()
		return nil, firstErr
	}
	return e.finish(ModeParallel, plan, order, joined, start)
}

// startWindow moves w to RUNNING and records the dispatch.
func (e *Executor) startWindow(w window) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transitionLocked(w.index, w.size, WindowPending, WindowRunning)
}

// runWindow draws one window's samples. A panic while drawing is reported as
// a lost worker instead of crashing the process.
func (e *Executor) runWindow(w window) (batch core.DistanceBatch, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			batch = nil
			err = workerLost(w.index, rec)
		}
	}()

	rng := core.NewSource()
	batch = e.drawFn()(rng, w.size)
	if len(batch) != w.size {
		return nil, workerLostf(w.index, "returned %d of %d samples", len(batch), w.size)
	}
	return batch, nil
}

// transitionLocked must be called with e.mu held.
func (e *Executor) transitionLocked(index, size int, from, to WindowState) error {
	if err := Transition(e.state, index, from, to); err != nil {
		return err
	}
	if to == WindowRunning {
		trace.SafeRecord(e.Trace, trace.TraceEvent{Kind: trace.EventWindowDispatched, Window: index, Size: size})
	}
	return nil
}

func (e *Executor) skipRemaining() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, i := range SkipPending(e.state) {
		trace.SafeRecord(e.Trace, trace.TraceEvent{Kind: trace.EventWindowSkipped, Window: i, Size: e.plan[i]})
	}
}

func (e *Executor) finish(mode Mode, plan, order []int, distances core.DistanceBatch, start time.Time) (*Result, error) {
	est, err := core.Estimate(distances)
	if err != nil {
		return nil, errors.Wrapf(err, "%s run", mode)
	}
	return &Result{
		Mode:            mode,
		Samples:         len(distances),
		Inside:          core.Count(distances),
		Estimate:        est,
		Plan:            plan,
		CompletionOrder: order,
		FinalState:      e.StateSnapshot(),
		Elapsed:         time.Since(start),
	}, nil
}
