package shell

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// lockedBuffer is a mutex-guarded bytes.Buffer; the synchronous path has
// stdout and stderr writing into a shared combined capture concurrently.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runSync executes the command on the calling goroutine, blocking until it
// exits, and returns the outcome directly with no lifecycle unit in
// between. Input sources that need asynchronous plumbing are rejected
// before any spawn attempt.
func runSync(cfg Config, tmpl string, values []any) (*Result, error) {
	if err := validateInput(cfg.Input, true); err != nil {
		return nil, err
	}

	var cmd *exec.Cmd
	if cfg.Shell {
		command, err := buildShellCommand(tmpl, values)
		if err != nil {
			return nil, err
		}
		cmd = exec.Command(shellProgram, "-c", command)
	} else {
		argv, err := buildArgv(tmpl, values)
		if err != nil {
			return nil, err
		}
		cmd = exec.Command(argv[0], argv[1:]...)
	}
	cmd.Dir = cfg.Dir
	cmd.Env = buildEnv(cfg)

	var stdout, stderr, combined lockedBuffer
	cmd.Stdout = forwardWriter(io.MultiWriter(&stdout, &combined), cfg.Output, os.Stdout)
	cmd.Stderr = forwardWriter(io.MultiWriter(&stderr, &combined), cfg.Debug, os.Stderr)

	switch input := cfg.Input.(type) {
	case string:
		cmd.Stdin = strings.NewReader(input)
	case []byte:
		cmd.Stdin = bytes.NewReader(input)
	}

	err := cmd.Run()
	code := 0
	var launchErr error
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitCodeFromState(exitErr.ProcessState)
		} else {
			launchErr = err
		}
	}
	return settleOutcome(cfg, code, launchErr, stdout.String(), stderr.String(), combined.String())
}
