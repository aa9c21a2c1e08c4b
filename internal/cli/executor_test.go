package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"montecarlopi/internal/engine"
)

var errBrokenPipe = errors.New("broken pipe")

type fixedEstimator struct {
	result *engine.Result
	err    error
	cfg    engine.ParallelConfig
}

func (f *fixedEstimator) RunSerial(context.Context, int) (*engine.Result, error) {
	return f.result, f.err
}

func (f *fixedEstimator) RunParallel(_ context.Context, cfg engine.ParallelConfig) (*engine.Result, error) {
	f.cfg = cfg
	return f.result, f.err
}

type panicEstimator struct{}

func (panicEstimator) RunSerial(context.Context, int) (*engine.Result, error) { panic("boom") }
func (panicEstimator) RunParallel(context.Context, engine.ParallelConfig) (*engine.Result, error) {
	panic("boom")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errBrokenPipe }

// quietEnv pins settings so host variables do not leak into a test.
func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MCPI_LOG_LEVEL", "warn")
	t.Setenv("MCPI_LOG_FORMAT", "text")
	t.Setenv("MCPI_PROGRESS", "false")
}

func TestExecute_PrintsFiveDecimals(t *testing.T) {
	quietEnv(t)
	est := &fixedEstimator{result: &engine.Result{Mode: engine.ModeSerial, Samples: 4, Inside: 3, Estimate: 3.0, Plan: []int{4}}}

	var stdout, stderr bytes.Buffer
	res, err := ExecuteWithEstimator(context.Background(), CLIInvocation{Mode: ModeSerial, Samples: 4}, Streams{Stdout: &stdout, Stderr: &stderr}, est)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != ExitSuccess {
		t.Fatalf("expected exit %d got %d", ExitSuccess, res.ExitCode)
	}
	if stdout.String() != "3.00000\n" {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if res.RunID == "" {
		t.Fatalf("expected a run id")
	}
}

func TestExecute_PassesParallelConfig(t *testing.T) {
	quietEnv(t)
	est := &fixedEstimator{result: &engine.Result{Mode: engine.ModeParallel, Samples: 10, Estimate: 3.2, Plan: []int{10}}}

	inv := CLIInvocation{Mode: ModeParallel, Samples: 10, Jobs: 3, Window: 100}
	if _, err := ExecuteWithEstimator(context.Background(), inv, Streams{}, est); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := engine.ParallelConfig{Samples: 10, Jobs: 3, Window: 100}
	if est.cfg != want {
		t.Fatalf("expected %+v, got %+v", want, est.cfg)
	}
}

func TestExecute_ExitCodeOnPanic(t *testing.T) {
	quietEnv(t)
	var stdout bytes.Buffer
	res, err := ExecuteWithEstimator(context.Background(), CLIInvocation{Mode: ModeSerial, Samples: 1}, Streams{Stdout: &stdout}, panicEstimator{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if res.ExitCode != ExitInternalError {
		t.Fatalf("expected exit %d got %d", ExitInternalError, res.ExitCode)
	}
	if stdout.Len() != 0 {
		t.Fatalf("no estimate may be printed on failure, got %q", stdout.String())
	}
}

func TestExecute_RunErrorsMapToExitCodes(t *testing.T) {
	quietEnv(t)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "worker lost", err: &engine.RunError{Kind: engine.ErrWorkerLost, Window: 2}, want: ExitRunFailure},
		{name: "cancelled", err: &engine.RunError{Kind: engine.ErrCancelled, Window: -1}, want: ExitRunFailure},
		{name: "invalid plan", err: &engine.RunError{Kind: engine.ErrInvalidPlan, Window: -1}, want: ExitInvalidInvocation},
		{name: "unknown", err: errors.New("mystery"), want: ExitInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout bytes.Buffer
			res, err := ExecuteWithEstimator(context.Background(), CLIInvocation{Mode: ModeParallel, Samples: 10, Jobs: 2}, Streams{Stdout: &stdout}, &fixedEstimator{err: tc.err})
			if err == nil {
				t.Fatalf("expected error")
			}
			if res.ExitCode != tc.want {
				t.Fatalf("expected exit %d got %d", tc.want, res.ExitCode)
			}
			if stdout.Len() != 0 {
				t.Fatalf("no estimate may be printed on failure, got %q", stdout.String())
			}
		})
	}
}

func TestExecute_OutputFailure(t *testing.T) {
	quietEnv(t)
	est := &fixedEstimator{result: &engine.Result{Mode: engine.ModeSerial, Samples: 1, Estimate: 4, Plan: []int{1}}}
	res, err := ExecuteWithEstimator(context.Background(), CLIInvocation{Mode: ModeSerial, Samples: 1}, Streams{Stdout: failingWriter{}}, est)
	if res.ExitCode != ExitOutputError {
		t.Fatalf("expected exit %d got %d", ExitOutputError, res.ExitCode)
	}
	var outErr *OutputError
	if !errors.As(err, &outErr) || !errors.Is(err, errBrokenPipe) {
		t.Fatalf("expected OutputError wrapping broken pipe, got %v", err)
	}
}

func TestExecute_HelpWritesUsageToStderr(t *testing.T) {
	inv, err := ParseInvocation([]string{"--help"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var stdout, stderr bytes.Buffer
	res, err := Execute(context.Background(), inv, Streams{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != ExitSuccess {
		t.Fatalf("expected exit %d got %d", ExitSuccess, res.ExitCode)
	}
	if stdout.Len() != 0 {
		t.Fatalf("help must not touch stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "serial") {
		t.Fatalf("expected usage on stderr, got %q", stderr.String())
	}
}

func TestExecute_ConfigErrorBeforeRun(t *testing.T) {
	t.Setenv("MCPI_LOG_LEVEL", "shouting")
	est := &fixedEstimator{result: &engine.Result{Estimate: 3}}
	var stdout bytes.Buffer
	res, err := ExecuteWithEstimator(context.Background(), CLIInvocation{Mode: ModeSerial, Samples: 1}, Streams{Stdout: &stdout}, est)
	if err == nil {
		t.Fatalf("expected error")
	}
	if res.ExitCode != ExitConfigError {
		t.Fatalf("expected exit %d got %d", ExitConfigError, res.ExitCode)
	}
	if stdout.Len() != 0 {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}

func TestExecute_DebugLogsCarryRunIDAndTrace(t *testing.T) {
	t.Setenv("MCPI_LOG_LEVEL", "debug")
	t.Setenv("MCPI_LOG_FORMAT", "json")
	t.Setenv("MCPI_PROGRESS", "false")

	var stdout, stderr bytes.Buffer
	inv := CLIInvocation{Mode: ModeParallel, Samples: 12, Jobs: 2, Window: 4}
	res, err := Execute(context.Background(), inv, Streams{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result == nil || len(res.Result.Plan) != 3 {
		t.Fatalf("expected three windows, got %+v", res.Result)
	}
	if strings.Count(stdout.String(), "\n") != 1 {
		t.Fatalf("expected exactly one stdout line, got %q", stdout.String())
	}

	var sawTrace bool
	for _, line := range strings.Split(strings.TrimSpace(stderr.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("stderr line is not JSON: %q", line)
		}
		if rec["run_id"] != res.RunID {
			t.Fatalf("record without run id: %q", line)
		}
		if rec["msg"] == "window trace" {
			sawTrace = true
		}
	}
	if !sawTrace {
		t.Fatalf("expected a window trace record in:\n%s", stderr.String())
	}
}

func TestExecute_ProgressBarKeepsStdoutClean(t *testing.T) {
	quietEnv(t)
	var stdout, stderr bytes.Buffer
	inv := CLIInvocation{Mode: ModeParallel, Samples: 1000, Jobs: 2, Progress: true, ProgressSet: true}
	res, err := Execute(context.Background(), inv, Streams{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != ExitSuccess {
		t.Fatalf("expected exit %d got %d", ExitSuccess, res.ExitCode)
	}
	if strings.Count(stdout.String(), "\n") != 1 {
		t.Fatalf("progress leaked into stdout: %q", stdout.String())
	}
}
