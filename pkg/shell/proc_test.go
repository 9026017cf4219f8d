package shell

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const waitTimeout = 5 * time.Second

func mustWait(t *testing.T, p *Proc) *Result {
	t.Helper()
	res, err := p.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return res
}

func TestShCapturesOutput(t *testing.T) {
	p, err := Sh("echo hello world")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if !res.Ok {
		t.Fatal("expected Ok")
	}
	if res.Output != "hello world\n" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestShEscapesInterpolatedValues(t *testing.T) {
	payloads := []string{
		"hello; rm -rf /",
		"$(touch /tmp/pwned)",
		"`id`",
		"a | b",
		"it's",
		`say "hi"`,
	}
	for _, payload := range payloads {
		p, err := Sh("echo {}", payload)
		if err != nil {
			t.Fatal(err)
		}
		res := mustWait(t, p)
		if res.Output != payload+"\n" {
			t.Fatalf("payload %q: got %q", payload, res.Output)
		}
	}
}

func TestShQuotedContextRoundTrip(t *testing.T) {
	value := "it's $HOME"

	for _, tmpl := range []string{"echo {}", "echo '{}'", `echo "{}"`} {
		p, err := Sh(tmpl, value)
		if err != nil {
			t.Fatal(err)
		}
		res := mustWait(t, p)
		if res.Output != value+"\n" {
			t.Fatalf("template %q: got %q", tmpl, res.Output)
		}
	}
}

func TestShNonzeroExitThrows(t *testing.T) {
	p, err := Sh("exit 42")
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Wait()
	if err == nil {
		t.Fatal("expected error")
	}
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T", err)
	}
	if perr.Code != 42 {
		t.Fatalf("code %d, want 42", perr.Code)
	}
	if res == nil || res.Ok {
		t.Fatal("result should report the failure")
	}
	if res.Error != perr {
		t.Fatal("result and error should share the ProcessError")
	}
}

func TestSafeTagReportsFailureInResult(t *testing.T) {
	p, err := New().Safe().Sh("echo oops 1>&2; exit 1")
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Wait()
	if err != nil {
		t.Fatalf("safe tag returned error: %v", err)
	}
	if res.Ok {
		t.Fatal("expected failure")
	}
	if res.Error == nil || res.Error.Code != 1 {
		t.Fatalf("error %+v", res.Error)
	}
	if res.Debug != "oops\n" {
		t.Fatalf("debug %q", res.Debug)
	}
}

func TestCmdBypassesShell(t *testing.T) {
	p, err := Cmd("echo {}", "a;b $(c)")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "a;b $(c)\n" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestCmdLaunchFailure(t *testing.T) {
	p, err := Cmd("definitely-not-a-real-program-20260823")
	if err != nil {
		t.Fatal(err)
	}
	_, werr := p.Wait()
	var perr *ProcessError
	if !errors.As(werr, &perr) {
		t.Fatalf("got %v", werr)
	}
	if perr.Code != ExitNotFound {
		t.Fatalf("code %d, want %d", perr.Code, ExitNotFound)
	}
	if perr.Unwrap() == nil {
		t.Fatal("launch error should carry a cause")
	}
}

func TestSignalExitCode(t *testing.T) {
	p, err := New().Safe().Sh("kill -TERM $$")
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if res.Error == nil || res.Error.Code != 128+15 {
		t.Fatalf("error %+v, want code 143", res.Error)
	}
}

func TestDeferredStart(t *testing.T) {
	p, err := New().Deferred().Sh("printf 'one two'")
	if err != nil {
		t.Fatal(err)
	}
	if p.Started() {
		t.Fatal("deferred command should not start on construction")
	}

	// Subscribing before start must not lose the first bytes.
	ch := p.Output().Subscribe(8)

	res := mustWait(t, p)
	if !p.Started() {
		t.Fatal("Wait should have started the command")
	}
	if res.Output != "one two" {
		t.Fatalf("got %q", res.Output)
	}

	var streamed strings.Builder
	for data := range ch {
		streamed.Write(data)
	}
	if streamed.String() != "one two" {
		t.Fatalf("streamed %q", streamed.String())
	}
}

func TestInputString(t *testing.T) {
	p, err := New().Input("line in\n").Sh("cat")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "line in\n" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestInputWriteBeforeStart(t *testing.T) {
	p, err := New().Deferred().Sh("cat")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Input().Write([]byte("buffered ")); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Input().Write([]byte("bytes")); err != nil {
		t.Fatal(err)
	}
	if err := p.Input().Close(); err != nil {
		t.Fatal(err)
	}

	res := mustWait(t, p)
	if res.Output != "buffered bytes" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestInputReader(t *testing.T) {
	p, err := New().Input(strings.NewReader("from reader")).Sh("cat")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "from reader" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestUnsupportedInputRejected(t *testing.T) {
	_, err := New().Input(42).Sh("cat")
	if err == nil {
		t.Fatal("expected error for unsupported input type")
	}
}

func TestWithEnvOverride(t *testing.T) {
	p, err := New(WithEnv(map[string]string{"SHELL_TEST_VAR": "hello"})).
		Sh(`printf '%s' "$SHELL_TEST_VAR"`)
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "hello" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestWithDir(t *testing.T) {
	p, err := New(WithDir("/")).Sh("pwd")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "/\n" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestColorEnvForcedByDefault(t *testing.T) {
	p, err := Sh(`printf '%s' "$FORCE_COLOR"`)
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "1" {
		t.Fatalf("FORCE_COLOR=%q, want 1", res.Output)
	}
}

func TestColorEnvSuppressed(t *testing.T) {
	p, err := New(WithColor(false)).Sh(`printf '%s %s' "$NO_COLOR" "$TERM"`)
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "1 dumb" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestCallerEnvWinsOverColorEnv(t *testing.T) {
	p, err := New(WithEnv(map[string]string{"FORCE_COLOR": "3"})).
		Sh(`printf '%s' "$FORCE_COLOR"`)
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "3" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestCombinedInterleavesStreams(t *testing.T) {
	p, err := Sh("printf 'out'; printf 'err' 1>&2; printf 'more'")
	if err != nil {
		t.Fatal(err)
	}
	res := mustWait(t, p)
	if res.Output != "outmore" {
		t.Fatalf("output %q", res.Output)
	}
	if res.Debug != "err" {
		t.Fatalf("debug %q", res.Debug)
	}
	if len(res.Combined) != len("outerrmore") {
		t.Fatalf("combined %q", res.Combined)
	}
}

func TestWaitIdempotent(t *testing.T) {
	p, err := Sh("echo once")
	if err != nil {
		t.Fatal(err)
	}
	first := mustWait(t, p)
	second := mustWait(t, p)
	if first != second {
		t.Fatal("Wait should return the same settled result")
	}
}

func TestStartIdempotent(t *testing.T) {
	p, err := New().Deferred().Sh("echo hi")
	if err != nil {
		t.Fatal(err)
	}
	p.Start()
	p.Start()
	res := mustWait(t, p)
	if res.Output != "hi\n" {
		t.Fatalf("got %q", res.Output)
	}
}

func TestDoneClosesOnSettle(t *testing.T) {
	p, err := Sh("true")
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-p.Done():
	case <-time.After(waitTimeout):
		t.Fatal("Done never closed")
	}
}

func TestEmptyCommand(t *testing.T) {
	_, err := Sh("   ")
	if !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("got %v", err)
	}
	_, err = Cmd("{}", "")
	if !errors.Is(err, ErrEmptyCommand) {
		t.Fatalf("got %v", err)
	}
}

func TestPlaceholderMismatch(t *testing.T) {
	if _, err := Sh("echo {}"); err == nil {
		t.Fatal("expected placeholder mismatch error")
	}
}

func TestDerivedTagDoesNotMutateBase(t *testing.T) {
	base := New(WithEnv(map[string]string{"A": "1"}))
	derived := base.With(WithEnv(map[string]string{"A": "2", "B": "3"}))

	if got := base.cfg.Env["A"]; got != "1" {
		t.Fatalf("base mutated: A=%q", got)
	}
	if _, ok := base.cfg.Env["B"]; ok {
		t.Fatal("base mutated: B leaked in")
	}
	if got := derived.cfg.Env["A"]; got != "2" {
		t.Fatalf("derived A=%q", got)
	}
}

func TestCommandString(t *testing.T) {
	p, err := New().Deferred().Sh("echo {}", "a b")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Command(); got != "echo 'a b'" {
		t.Fatalf("got %q", got)
	}

	p, err = New().Deferred().Cmd("echo {}", "a b")
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Command(); got != "echo a b" {
		t.Fatalf("got %q", got)
	}
}
