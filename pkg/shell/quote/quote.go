// Package quote implements context-aware shell escaping for interpolated
// values, plus the safe-string marker that exempts already-escaped text from
// further quoting.
package quote

import (
	"fmt"
	"strings"
)

// Context identifies the quoting context surrounding an interpolation site.
type Context int

const (
	// Unquoted means the value lands in bare shell text.
	Unquoted Context = iota
	// SingleQuoted means the value lands between single quotes.
	SingleQuoted
	// DoubleQuoted means the value lands between double quotes.
	DoubleQuoted
)

// Safe wraps text that is already shell-safe; Escape passes it through
// unchanged. Safety is never inferred from content: the only producers are
// MarkSafe and the flag/argument converters, which escape every component
// internally before marking the joined result.
type Safe struct {
	text string
}

// MarkSafe marks s as shell-safe. The caller asserts that s needs no
// further escaping.
func MarkSafe(s string) Safe {
	return Safe{text: s}
}

// String returns the underlying text.
func (s Safe) String() string {
	return s.text
}

// IsSafe reports whether v carries the safe marker.
func IsSafe(v any) bool {
	_, ok := v.(Safe)
	return ok
}

// metachars are the characters that force single-quote wrapping in an
// unquoted context.
const metachars = " \t\n\r$`\"';|&\\"

// Text renders v in its natural textual form. nil renders as the empty
// string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case Safe:
		return t.text
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Escape renders v as shell-safe text for the given quoting context. Safe
// values pass through unchanged. Escaping is deterministic: the same value
// and context always produce the same text.
func Escape(v any, ctx Context) string {
	if s, ok := v.(Safe); ok {
		return s.text
	}
	text := Text(v)
	switch ctx {
	case SingleQuoted:
		// A single quote cannot be escaped from inside single quotes: close
		// the quote, emit an escaped quote, reopen.
		return strings.ReplaceAll(text, "'", `'\''`)
	case DoubleQuoted:
		return escapeDouble(text)
	default:
		return escapeUnquoted(text)
	}
}

func escapeUnquoted(text string) string {
	if text == "" {
		return "''"
	}
	if !strings.ContainsAny(text, metachars) {
		return text
	}
	return "'" + strings.ReplaceAll(text, "'", `'\''`) + "'"
}

// escapeDouble escapes only the characters the shell still interprets
// between double quotes; word-splitting and globbing are already off there.
func escapeDouble(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '$', '`', '"', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
