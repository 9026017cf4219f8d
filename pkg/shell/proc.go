package shell

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/chriscalo/sh-cmd-tag/pkg/shell/stream"
)

var logger = log.New(io.Discard, "shell: ", log.LstdFlags)

// shellProgram is the shell used for shell-mode commands, resolved via PATH.
var shellProgram = "sh"

// Proc is one command's lifecycle: constructed, started (possibly
// deferred), exited or failed to launch, settled. Its streams exist from
// construction and stay stable for its whole lifetime, so listeners and
// writers attached before Start never race the spawn.
type Proc struct {
	id      string
	cfg     Config
	command string   // shell mode
	argv    []string // direct mode

	stdout   *stream.Buffer
	stderr   *stream.Buffer
	combined *stream.Buffer
	stdin    *stream.Input

	mu      sync.Mutex
	started bool

	done   chan struct{}
	result *Result
	err    error
}

// newProc builds the command up front, so configuration errors surface
// here, before any spawn attempt, and starts the process unless the
// configuration defers that.
func newProc(cfg Config, tmpl string, values []any) (*Proc, error) {
	if err := validateInput(cfg.Input, false); err != nil {
		return nil, err
	}
	p := &Proc{
		id:       newID(),
		cfg:      cfg,
		stdout:   stream.NewBuffer(),
		stderr:   stream.NewBuffer(),
		combined: stream.NewBuffer(),
		stdin:    stream.NewInput(),
		done:     make(chan struct{}),
	}
	if cfg.Shell {
		command, err := buildShellCommand(tmpl, values)
		if err != nil {
			return nil, err
		}
		p.command = command
	} else {
		argv, err := buildArgv(tmpl, values)
		if err != nil {
			return nil, err
		}
		p.argv = argv
	}
	if cfg.Immediate {
		p.Start()
	}
	return p, nil
}

// validateInput rejects unsupported stdin sources before any spawn.
// Synchronous runs additionally reject the sources that need asynchronous
// stream plumbing.
func validateInput(input any, sync bool) error {
	switch v := input.(type) {
	case nil, string, []byte:
		return nil
	case bool:
		if sync && v {
			return errors.New("synchronous commands cannot inherit the host stdin")
		}
		return nil
	case io.Reader:
		if sync {
			return errors.New("synchronous commands cannot stream input from a reader")
		}
		return nil
	default:
		return fmt.Errorf("unsupported input type %T", input)
	}
}

// Command returns the resolved command: the shell command line in shell
// mode, or the space-joined argv in direct mode.
func (p *Proc) Command() string {
	if p.cfg.Shell {
		return p.command
	}
	return strings.Join(p.argv, " ")
}

// Config returns a copy of the process configuration.
func (p *Proc) Config() Config {
	return p.cfg.clone()
}

// Output is the stable stdout proxy; it captures everything the child
// writes and supports replayed subscriptions.
func (p *Proc) Output() *stream.Buffer {
	return p.stdout
}

// Debug is the stable stderr proxy.
func (p *Proc) Debug() *stream.Buffer {
	return p.stderr
}

// Input is the stable stdin proxy. Writes before Start are buffered and
// flushed to the child in order.
func (p *Proc) Input() io.WriteCloser {
	return p.stdin
}

// Started reports whether the underlying process has been spawned.
func (p *Proc) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started
}

// Done returns a channel that closes once the process settles. It does not
// start the process.
func (p *Proc) Done() <-chan struct{} {
	return p.done
}

// Start spawns the underlying process. Starting an already-started unit is
// a no-op, so the await path and the explicit path compose.
func (p *Proc) Start() {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()
	p.spawn()
}

// Wait starts the process if needed and blocks until it settles. Every
// caller observes the same single outcome; Wait may be called any number of
// times.
func (p *Proc) Wait() (*Result, error) {
	p.Start()
	<-p.done
	return p.result, p.err
}

func (p *Proc) spawn() {
	var cmd *exec.Cmd
	if p.cfg.Shell {
		cmd = exec.Command(shellProgram, "-c", p.command)
	} else {
		cmd = exec.Command(p.argv[0], p.argv[1:]...)
	}
	cmd.Dir = p.cfg.Dir
	cmd.Env = buildEnv(p.cfg)

	// Manual piping, not stdio inheritance: each chunk is captured for the
	// final strings and, when configured, echoed to the host in the same
	// write call, so capture and live output never diverge for a chunk.
	cmd.Stdout = forwardWriter(io.MultiWriter(p.stdout, p.combined), p.cfg.Output, os.Stdout)
	cmd.Stderr = forwardWriter(io.MultiWriter(p.stderr, p.combined), p.cfg.Debug, os.Stderr)

	var attach io.WriteCloser
	switch input := p.cfg.Input.(type) {
	case nil:
		wc, err := cmd.StdinPipe()
		if err != nil {
			p.settleLaunch(err)
			return
		}
		attach = wc
	case bool:
		if input {
			cmd.Stdin = os.Stdin
		} else {
			wc, err := cmd.StdinPipe()
			if err != nil {
				p.settleLaunch(err)
				return
			}
			attach = wc
		}
	case string:
		cmd.Stdin = strings.NewReader(input)
	case []byte:
		cmd.Stdin = bytes.NewReader(input)
	case io.Reader:
		cmd.Stdin = input
	}

	logger.Printf("proc %s: starting %q", p.id, p.Command())
	if err := cmd.Start(); err != nil {
		logger.Printf("proc %s: launch failed: %v", p.id, err)
		p.settleLaunch(err)
		return
	}
	if attach != nil {
		if err := p.stdin.Attach(attach); err != nil {
			logger.Printf("proc %s: stdin flush failed: %v", p.id, err)
		}
	}
	logger.Printf("proc %s: started pid %d", p.id, cmd.Process.Pid)

	// Waiter: settles the deferred result exactly once.
	go p.waitAndSettle(cmd)
}

func (p *Proc) waitAndSettle(cmd *exec.Cmd) {
	err := cmd.Wait()

	p.stdout.Stop()
	p.stderr.Stop()
	p.combined.Stop()

	code := 0
	var launchErr error
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitCodeFromState(exitErr.ProcessState)
		} else {
			// The process ran but its I/O plumbing failed; report it like a
			// launch failure rather than inventing an exit code.
			launchErr = err
		}
	}
	logger.Printf("proc %s: settled with code %d err %v", p.id, code, launchErr)
	p.settle(code, launchErr)
}

// settleLaunch finalizes a unit whose process never came up.
func (p *Proc) settleLaunch(err error) {
	p.stdout.Stop()
	p.stderr.Stop()
	p.combined.Stop()
	p.settle(0, err)
}

// settle records the single outcome and releases every waiter. It must be
// called exactly once per unit.
func (p *Proc) settle(code int, launchErr error) {
	output := p.stdout.String()
	debug := p.stderr.String()
	combined := p.combined.String()
	p.result, p.err = settleOutcome(p.cfg, code, launchErr, output, debug, combined)
	close(p.done)
}

// forwardWriter returns a writer that captures every chunk and, when live
// forwarding is on, echoes it to the host stream within the same write.
func forwardWriter(capture io.Writer, live bool, host io.Writer) io.Writer {
	if !live {
		return capture
	}
	return io.MultiWriter(capture, host)
}
