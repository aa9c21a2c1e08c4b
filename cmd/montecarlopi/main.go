package main

import (
	"context"
	"fmt"
	"os"

	"montecarlopi/internal/cli"
)

// main maps every failure to a diagnostic on stderr and a non-zero exit code.
// stdout carries the estimate line and nothing else.
func main() {
	res, err := cli.Run(context.Background(), os.Args[1:], cli.Streams{Stdout: os.Stdout, Stderr: os.Stderr})
	if err != nil {
		fmt.Fprintln(os.Stderr, "montecarlopi:", err)
	}
	os.Exit(res.ExitCode)
}
