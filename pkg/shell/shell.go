// Package shell runs external commands built from templated command lines,
// with guaranteed escaping of every interpolated value.
//
// The two entry points mirror the sh/cmd tag pair: Sh interprets the built
// command with the system shell, Cmd executes the program directly with no
// shell in between. Values substitute for {} placeholders and are escaped
// according to the quoting context they land in:
//
//	p, err := shell.Sh("grep {} '{}'", pattern, path)
//	if err != nil {
//		return err
//	}
//	res, err := p.Wait()
//
// Maps expand to --flag/--flag=value tokens, slices to positional
// arguments, and quote.MarkSafe exempts pre-escaped text from further
// quoting. Tags carry a configuration; derived tags are produced by the
// preset methods and never mutate the original:
//
//	out, _ := shell.New().Safe().ShSync("exit 1") // out.Ok == false, no error
package shell

import (
	"github.com/google/uuid"
)

// newID generates a UUID version 4 string (RFC 4122).
func newID() string {
	return uuid.NewString()
}

// Tag is a command tag with a bound configuration. Preset methods return
// derived tags and never mutate the receiver, so tags are safe to share
// between goroutines.
type Tag struct {
	cfg Config
}

// New returns a tag with the default configuration and the given options
// applied.
func New(opts ...Option) Tag {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Tag{cfg: cfg}
}

// With returns a derived tag with opts applied on top of the receiver's
// configuration.
func (t Tag) With(opts ...Option) Tag {
	cfg := t.cfg.clone()
	for _, opt := range opts {
		opt(&cfg)
	}
	return Tag{cfg: cfg}
}

// Safe returns a tag that reports command failures through the Result
// instead of an error. Configuration errors still return errors.
func (t Tag) Safe() Tag {
	return t.With(WithNoThrow())
}

// Interactive returns a tag that inherits the host's stdin and forwards the
// child's output and stderr live.
func (t Tag) Interactive() Tag {
	return t.With(WithInput(true), WithLiveOutput(), WithLiveDebug())
}

// Input returns a tag whose commands receive input on stdin: a string or
// []byte is written and closed, an io.Reader is streamed, and true inherits
// the host's stdin.
func (t Tag) Input(input any) Tag {
	return t.With(WithInput(input))
}

// Deferred returns a tag whose commands are built without being started;
// call Start (or Wait) on the Proc to run them.
func (t Tag) Deferred() Tag {
	return t.With(WithDeferredStart())
}

// Sh builds a shell-interpreted command from the template and values and,
// unless the tag defers starts, spawns it.
func (t Tag) Sh(tmpl string, values ...any) (*Proc, error) {
	cfg := t.cfg.clone()
	cfg.Shell = true
	return newProc(cfg, tmpl, values)
}

// Cmd builds a direct-exec command: the template and values become an argv
// and no shell ever parses them.
func (t Tag) Cmd(tmpl string, values ...any) (*Proc, error) {
	cfg := t.cfg.clone()
	cfg.Shell = false
	return newProc(cfg, tmpl, values)
}

// ShSync runs a shell-interpreted command to completion on the calling
// goroutine and returns the result directly.
func (t Tag) ShSync(tmpl string, values ...any) (*Result, error) {
	cfg := t.cfg.clone()
	cfg.Shell = true
	cfg.Sync = true
	return runSync(cfg, tmpl, values)
}

// CmdSync runs a direct-exec command to completion on the calling goroutine
// and returns the result directly.
func (t Tag) CmdSync(tmpl string, values ...any) (*Result, error) {
	cfg := t.cfg.clone()
	cfg.Shell = false
	cfg.Sync = true
	return runSync(cfg, tmpl, values)
}

// Sh runs tmpl through the default tag in shell mode.
func Sh(tmpl string, values ...any) (*Proc, error) {
	return New().Sh(tmpl, values...)
}

// Cmd runs tmpl through the default tag in direct-exec mode.
func Cmd(tmpl string, values ...any) (*Proc, error) {
	return New().Cmd(tmpl, values...)
}

// ShSync runs tmpl through the default tag in shell mode, synchronously.
func ShSync(tmpl string, values ...any) (*Result, error) {
	return New().ShSync(tmpl, values...)
}

// CmdSync runs tmpl through the default tag in direct-exec mode,
// synchronously.
func CmdSync(tmpl string, values ...any) (*Result, error) {
	return New().CmdSync(tmpl, values...)
}
