package shell

import (
	"fmt"
	"strings"
)

// ExitNotFound is the normalized exit code for launch failures where the
// program could not be found or started.
const ExitNotFound = 127

// Result is the outcome of one command. Ok is true only for a zero exit
// code. With throwing disabled, failures come back as a Result with Ok
// false and Error populated; captured output is present either way, so no
// diagnostics are lost by opting out of errors.
type Result struct {
	Ok       bool
	Error    *ProcessError
	Output   string // captured stdout
	Debug    string // captured stderr
	Combined string // stdout and stderr interleaved in arrival order
}

// ProcessError reports a command that exited nonzero or failed to launch.
// The captured output rides along on the error.
type ProcessError struct {
	Code   int
	Output string
	Debug  string

	message string
	cause   error
}

// Error implements the error interface.
func (e *ProcessError) Error() string {
	return e.message
}

// Unwrap returns the underlying launch error, if any.
func (e *ProcessError) Unwrap() error {
	return e.cause
}

// newExitError builds the error for a nonzero exit code. The message
// carries the code and, when stderr was captured, a one-line summary of it.
func newExitError(code int, output, debug string) *ProcessError {
	msg := fmt.Sprintf("command failed with exit code %d", code)
	if s := stderrSummary(debug); s != "" {
		msg += ": " + s
	}
	return &ProcessError{Code: code, Output: output, Debug: debug, message: msg}
}

// newLaunchError builds the error for a process that could not be started,
// normalized to exit code 127.
func newLaunchError(cause error, output, debug string) *ProcessError {
	return &ProcessError{
		Code:    ExitNotFound,
		Output:  output,
		Debug:   debug,
		message: fmt.Sprintf("command not found: %v", cause),
		cause:   cause,
	}
}

const summaryLimit = 200

// stderrSummary condenses captured stderr into a single-line trailer.
func stderrSummary(debug string) string {
	s := strings.TrimSpace(debug)
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " | ")
	if len(s) > summaryLimit {
		s = s[:summaryLimit] + "..."
	}
	return s
}

// settleOutcome maps a finished command onto the Result/error pair,
// honoring the throw policy.
func settleOutcome(cfg Config, code int, launchErr error, output, debug, combined string) (*Result, error) {
	if launchErr == nil && code == 0 {
		return &Result{Ok: true, Output: output, Debug: debug, Combined: combined}, nil
	}
	var perr *ProcessError
	if launchErr != nil {
		perr = newLaunchError(launchErr, output, debug)
	} else {
		perr = newExitError(code, output, debug)
	}
	res := &Result{Ok: false, Error: perr, Output: output, Debug: debug, Combined: combined}
	if cfg.Throw {
		return res, perr
	}
	return res, nil
}
