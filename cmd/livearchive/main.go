package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"livearchive/internal/daemonrun"
)

// exitLockHeld is returned when another daemon or scan owns the instance lock.
const exitLockHeld = 2

func main() {
	os.Exit(execute(newRootCommand(), os.Stderr))
}

// execute runs cmd and maps its error to a process exit status. An
// interrupted command exits non-zero without printing.
func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 1
	case daemonrun.IsLockHeld(err):
		fmt.Fprintln(stderr, err)
		return exitLockHeld
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}
