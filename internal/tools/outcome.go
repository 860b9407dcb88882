package tools

import (
	"errors"
	"fmt"
	"strings"
)

var ErrCommandFailed = errors.New("tool command failed")

// Outcome tags how a finished command should be treated by its caller.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFatal
	// OutcomeAlreadyDone marks a failure that means the requested state already holds.
	OutcomeAlreadyDone
	// OutcomeUnsupported marks a failure caused by the tool rejecting an option.
	OutcomeUnsupported
	// OutcomeMissing marks a failure caused by the tool itself being absent.
	OutcomeMissing
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeFatal:
		return "fatal"
	case OutcomeAlreadyDone:
		return "already-done"
	case OutcomeUnsupported:
		return "unsupported"
	case OutcomeMissing:
		return "missing"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the captured state of one finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int32
	Err      error
}

// Output returns stdout and stderr joined, trimmed.
func (r Result) Output() string {
	out := strings.TrimSpace(string(r.Stdout))
	errOut := strings.TrimSpace(string(r.Stderr))
	switch {
	case out == "":
		return errOut
	case errOut == "":
		return out
	default:
		return out + "\n" + errOut
	}
}

// Rule maps an output marker to an outcome. Markers match case-insensitively
// against stdout and stderr.
type Rule struct {
	Marker  string
	Outcome Outcome
}

// Classify tags a result. A successful run is always OutcomeOK; a failed
// run takes the outcome of the first matching rule, else OutcomeFatal.
func Classify(res Result, rules ...Rule) Outcome {
	if res.Err == nil {
		return OutcomeOK
	}
	output := strings.ToLower(res.Output())
	for _, rule := range rules {
		if rule.Marker == "" {
			continue
		}
		if strings.Contains(output, strings.ToLower(rule.Marker)) {
			return rule.Outcome
		}
	}
	return OutcomeFatal
}

// CommandError carries the captured output of a failed command.
type CommandError struct {
	Command  Command
	ExitCode int32
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf(
		"%v: cmd=%s exit=%d stdout=%q stderr=%q: %v",
		ErrCommandFailed,
		Render(e.Command),
		e.ExitCode,
		e.Stdout,
		e.Stderr,
		e.Err,
	)
}

func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// NewCommandError builds a CommandError from a failed result.
func NewCommandError(cmd Command, res Result) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: res.ExitCode,
		Stdout:   strings.TrimSpace(string(res.Stdout)),
		Stderr:   strings.TrimSpace(string(res.Stderr)),
		Err:      res.Err,
	}
}

// Execute runs cmd and packs the runner tuple into a Result.
func Execute(runner CommandRunner, cmd Command) Result {
	stdout, stderr, exitCode, err := runner.Run(cmd)
	if err != nil && exitCode == 0 {
		exitCode = 1
	}
	return Result{Stdout: stdout, Stderr: stderr, ExitCode: exitCode, Err: err}
}
