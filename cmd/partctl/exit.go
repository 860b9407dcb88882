package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/partkit/internal/tools"
)

// exitCode maps a command error to the process exit status: the wrapped
// tool's own status when it failed, 1 otherwise.
func exitCode(err error) int {
	var cmdErr *tools.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode > 0 {
		return int(cmdErr.ExitCode)
	}
	return 1
}

func reportError(out io.Writer, err error) int {
	fmt.Fprintln(out, err.Error())
	return exitCode(err)
}
