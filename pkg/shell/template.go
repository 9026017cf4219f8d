package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/chriscalo/sh-cmd-tag/pkg/shell/quote"
)

// Placeholder marks an interpolation site in a command template.
const Placeholder = "{}"

// ErrEmptyCommand is returned when a built command is empty or whitespace.
var ErrEmptyCommand = errors.New("empty command")

// splitTemplate splits tmpl into literal fragments around placeholders and
// checks the hole count against the value count.
func splitTemplate(tmpl string, values int) ([]string, error) {
	fragments := strings.Split(tmpl, Placeholder)
	if holes := len(fragments) - 1; holes != values {
		return nil, fmt.Errorf("template has %d placeholders but %d values were given", holes, values)
	}
	return fragments, nil
}

// buildShellCommand assembles the final shell command string: each value is
// converted according to the quoting context of its site and spliced
// between the literal fragments.
func buildShellCommand(tmpl string, values []any) (string, error) {
	fragments, err := splitTemplate(tmpl, len(values))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, fragment := range fragments {
		b.WriteString(fragment)
		if i >= len(values) {
			continue
		}
		ctx := siteContext(fragment, fragments[i+1])
		converted, err := convertShell(values[i], ctx)
		if err != nil {
			return "", err
		}
		b.WriteString(converted)
	}
	command := b.String()
	if strings.TrimSpace(command) == "" {
		return "", ErrEmptyCommand
	}
	return command, nil
}

// buildArgv assembles the direct-exec argv: values are inserted verbatim
// and the concatenation is split into words. Quotes group words but are not
// interpreted further; there is no shell to interpret them.
func buildArgv(tmpl string, values []any) ([]string, error) {
	fragments, err := splitTemplate(tmpl, len(values))
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for i, fragment := range fragments {
		b.WriteString(fragment)
		if i >= len(values) {
			continue
		}
		converted, err := convertLiteral(values[i])
		if err != nil {
			return nil, err
		}
		b.WriteString(converted)
	}
	raw := b.String()
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyCommand
	}
	argv, err := shellquote.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("tokenize command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// siteContext determines the quoting context of a hole from the
// unescaped-quote parity of the fragments on either side: an odd count both
// before and after means the hole sits inside that quote type.
func siteContext(before, after string) quote.Context {
	if oddQuotes(before, '\'') && oddQuotes(after, '\'') {
		return quote.SingleQuoted
	}
	if oddQuotes(before, '"') && oddQuotes(after, '"') {
		return quote.DoubleQuoted
	}
	return quote.Unquoted
}

func oddQuotes(s string, q byte) bool {
	count := 0
	escaped := false
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == q:
			count++
		}
	}
	return count%2 == 1
}

// convertShell renders one interpolated value for a shell-mode command.
func convertShell(v any, ctx quote.Context) (string, error) {
	switch t := v.(type) {
	case quote.Safe:
		return t.String(), nil
	case map[string]any:
		flags, err := quote.Flags(t)
		return flags.String(), err
	case []any:
		return quote.Args(t).String(), nil
	case []string:
		return quote.Args(anySlice(t)).String(), nil
	default:
		return quote.Escape(v, ctx), nil
	}
}

// convertLiteral renders one interpolated value for a direct-exec command.
// No escaping is applied: no shell ever parses the result.
func convertLiteral(v any) (string, error) {
	switch t := v.(type) {
	case quote.Safe:
		return t.String(), nil
	case map[string]any:
		flags, err := quote.LiteralFlags(t)
		return flags.String(), err
	case []any:
		return quote.LiteralArgs(t).String(), nil
	case []string:
		return quote.LiteralArgs(anySlice(t)).String(), nil
	default:
		return quote.Text(v), nil
	}
}

func anySlice(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
