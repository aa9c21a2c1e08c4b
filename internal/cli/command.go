package cli

import (
	"bytes"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const programName = "montecarlopi"

// DefaultJobs is the host's logical CPU count, never less than 1.
func DefaultJobs() int {
	return max(1, runtime.NumCPU())
}

// ParseInvocation parses the argument list (excluding argv[0]) into a
// validated CLIInvocation.
//
// Usage and help text are rendered into CLIInvocation.Usage rather than
// written anywhere, so parsing has no side effects.
func ParseInvocation(args []string) (CLIInvocation, error) {
	var inv CLIInvocation
	ran := false

	root := newRootCommand(&inv, &ran)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))

	cmd, err := root.ExecuteC()
	if err != nil {
		var invErr *InvocationError
		if errors.As(err, &invErr) {
			return CLIInvocation{}, err
		}
		// cobra/pflag errors: unknown flags, bad integers, missing --num.
		return CLIInvocation{}, invalidInvocationf("%v", err)
	}
	if !ran {
		helpFlag := cmd.Flags().Lookup("help")
		if (helpFlag != nil && helpFlag.Changed) || cmd.Name() == "help" {
			return CLIInvocation{Help: true, Usage: out.String()}, nil
		}
		return CLIInvocation{}, invalidInvocationf("a subcommand is required: serial|parallel")
	}
	return inv, nil
}

func newRootCommand(inv *CLIInvocation, ran *bool) *cobra.Command {
	root := &cobra.Command{
		Use:           programName,
		Short:         "Estimate pi by Monte Carlo sampling of the unit square",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&inv.EnvFile, "env-file", ".env", "dotenv file loaded before reading MCPI_* settings")

	root.AddCommand(newSerialCommand(inv, ran), newParallelCommand(inv, ran))
	return root
}

func newSerialCommand(inv *CLIInvocation, ran *bool) *cobra.Command {
	var num int
	cmd := &cobra.Command{
		Use:   "serial",
		Short: "Draw every sample on a single goroutine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if num < 1 {
				return invalidInvocationf("--num must be >= 1 (got %d)", num)
			}
			inv.Mode = ModeSerial
			inv.Samples = num
			inv.EnvFileExplicit = cmd.Flags().Changed("env-file")
			*ran = true
			return nil
		},
	}
	cmd.Flags().IntVarP(&num, "num", "n", 0, "number of samples to draw (>= 1)")
	_ = cmd.MarkFlagRequired("num")
	return cmd
}

func newParallelCommand(inv *CLIInvocation, ran *bool) *cobra.Command {
	var (
		num      int
		jobs     int
		window   int
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "parallel",
		Short: "Split the samples into windows and draw them concurrently",
		Long: "Split the samples into windows and draw them concurrently.\n\n" +
			"With --window 0 the samples are split into --jobs windows. A positive\n" +
			"--window sets the per-window size and takes precedence over --jobs for\n" +
			"planning; --jobs still bounds how many windows run at once.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if num < 1 {
				return invalidInvocationf("--num must be >= 1 (got %d)", num)
			}
			if jobs < 1 {
				return invalidInvocationf("--jobs must be >= 1 (got %d)", jobs)
			}
			if window < 0 {
				return invalidInvocationf("--window must be >= 0 (got %d)", window)
			}
			inv.Mode = ModeParallel
			inv.Samples = num
			inv.Jobs = jobs
			inv.Window = window
			inv.Progress = progress
			inv.ProgressSet = cmd.Flags().Changed("progress")
			inv.EnvFileExplicit = cmd.Flags().Changed("env-file")
			*ran = true
			return nil
		},
	}
	cmd.Flags().IntVarP(&num, "num", "n", 0, "number of samples to draw (>= 1)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", DefaultJobs(), "number of windows to run at once (>= 1)")
	cmd.Flags().IntVarP(&window, "window", "w", 0, "samples per window; 0 splits the budget across --jobs")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	_ = cmd.MarkFlagRequired("num")
	return cmd
}
