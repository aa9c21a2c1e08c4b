package cli

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	ExitSuccess           = 0
	ExitRunFailure        = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
	ExitOutputError       = 5
)

type Mode string

const (
	ModeSerial   Mode = "serial"
	ModeParallel Mode = "parallel"
)

// CLIInvocation is the validated description of a single run.
//
// It is produced purely from the argument list: parsing reads no environment
// variables and no files. The env file is only named here; Execute loads it.
type CLIInvocation struct {
	Mode    Mode
	Samples int

	// Jobs and Window are only meaningful for ModeParallel. A positive Window
	// takes precedence over Jobs when planning windows; Jobs still bounds
	// how many windows run at once.
	Jobs   int
	Window int

	// EnvFile is the dotenv file to load before reading settings.
	// EnvFileExplicit reports whether --env-file was passed; a missing
	// default file is not an error.
	EnvFile         string
	EnvFileExplicit bool

	// Progress is the --progress flag; ProgressSet reports whether it was passed.
	Progress    bool
	ProgressSet bool

	// Help is set when usage was requested; Usage holds the rendered text.
	Help  bool
	Usage string
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrorf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...)}
}

// OutputError reports a failure to write the estimate to stdout.
type OutputError struct {
	Err error
}

func (e *OutputError) Error() string {
	if e == nil {
		return ""
	}
	return "writing estimate: " + e.Err.Error()
}

func (e *OutputError) Unwrap() error { return e.Err }

// ExitCode extracts a semantic exit code from a ParseInvocation error.
// If the error is not a known invocation error, it returns ExitInternalError.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	var outErr *OutputError
	if errors.As(err, &outErr) {
		return ExitOutputError
	}
	if err == nil {
		return ExitSuccess
	}
	return ExitInternalError
}
