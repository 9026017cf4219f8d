package shell

import (
	"os"
	"sort"
	"strings"
)

// Config controls how a command is built and executed. A Config attached to
// a running Proc is never mutated: deriving a configuration produces a new
// value and the Env map is copied on merge.
type Config struct {
	// Shell selects shell interpretation (sh -c) over direct exec.
	Shell bool
	// Sync marks the configuration as belonging to a synchronous run.
	Sync bool
	// Throw makes failures surface as errors. When false, failures are
	// delivered as a Result with Ok false and Error populated.
	Throw bool
	// Immediate starts the process at construction time.
	Immediate bool
	// Input feeds the child's stdin: a string or []byte is written and
	// closed, an io.Reader is streamed, true inherits the host stdin, and
	// nil (or false) leaves the writable Input proxy in charge.
	Input any
	// Output forwards the child's stdout to the host's stdout live, in
	// addition to capturing it.
	Output bool
	// Debug forwards the child's stderr to the host's stderr live, in
	// addition to capturing it.
	Debug bool
	// Color forces color-control environment variables in the child; when
	// false they suppress color instead. Captured output is not a terminal,
	// so children would otherwise turn color off on their own.
	Color bool
	// Env overrides individual environment variables; it wins over both the
	// host environment and the color-control variables.
	Env map[string]string
	// Dir is the working directory. Empty inherits the host's.
	Dir string
}

// DefaultConfig returns the baseline configuration: throwing enabled,
// immediate start, color forced.
func DefaultConfig() Config {
	return Config{Throw: true, Immediate: true, Color: true}
}

// clone returns a copy with its own Env map.
func (c Config) clone() Config {
	out := c
	if c.Env != nil {
		out.Env = make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			out.Env[k] = v
		}
	}
	return out
}

// Option adjusts a derived Config.
type Option func(*Config)

// WithEnv merges env into the configuration's overrides.
func WithEnv(env map[string]string) Option {
	return func(c *Config) {
		if c.Env == nil {
			c.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			c.Env[k] = v
		}
	}
}

// WithDir sets the working directory.
func WithDir(dir string) Option {
	return func(c *Config) { c.Dir = dir }
}

// WithInput sets the stdin source; see Config.Input.
func WithInput(input any) Option {
	return func(c *Config) { c.Input = input }
}

// WithNoThrow reports failures through the Result instead of an error.
func WithNoThrow() Option {
	return func(c *Config) { c.Throw = false }
}

// WithDeferredStart builds commands without starting them.
func WithDeferredStart() Option {
	return func(c *Config) { c.Immediate = false }
}

// WithLiveOutput forwards the child's stdout to the host live.
func WithLiveOutput() Option {
	return func(c *Config) { c.Output = true }
}

// WithLiveDebug forwards the child's stderr to the host live.
func WithLiveDebug() Option {
	return func(c *Config) { c.Debug = true }
}

// WithColor forces (true) or suppresses (false) color in the child.
func WithColor(on bool) Option {
	return func(c *Config) { c.Color = on }
}

// buildEnv merges the host environment, the color-control variables implied
// by cfg.Color, and the caller-supplied overrides, in that order; later
// layers win. The result is flattened deterministically.
func buildEnv(cfg Config) []string {
	merged := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	if cfg.Color {
		merged["FORCE_COLOR"] = "1"
		merged["CLICOLOR_FORCE"] = "1"
	} else {
		merged["NO_COLOR"] = "1"
		merged["CLICOLOR"] = "0"
		merged["CLICOLOR_FORCE"] = "0"
		merged["FORCE_COLOR"] = "0"
		merged["TERM"] = "dumb"
	}
	for k, v := range cfg.Env {
		merged[k] = v
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+merged[k])
	}
	return env
}
