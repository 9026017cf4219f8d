package quote

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// flagNameRe validates a flag name once leading dashes are stripped.
var flagNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Flags converts a map of options into CLI flag tokens, joined with single
// spaces and marked safe so the result is never re-escaped downstream. Keys
// are emitted in sorted order so the output is deterministic. Pairs whose
// value is nil or false are skipped. A key without leading dashes gets a
// "--" prefix; explicit leading dashes are preserved as written, so
// single-dash short flags and legacy multi-dash conventions both work. A
// true value emits the bare flag; any other value emits name=value with the
// value escaped for an unquoted context.
//
// Invalid keys are rejected, not sanitized: there is no safe way to escape
// a hostile flag name without changing how the downstream command parses
// it.
func Flags(opts map[string]any) (Safe, error) {
	return buildFlags(opts, true)
}

// LiteralFlags is the direct-exec variant of Flags: same validation and
// skipping rules, but values are inserted verbatim because no shell will
// parse them.
func LiteralFlags(opts map[string]any) (Safe, error) {
	return buildFlags(opts, false)
}

func buildFlags(opts map[string]any, escape bool) (Safe, error) {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tokens := make([]string, 0, len(keys))
	for _, key := range keys {
		value := opts[key]
		if value == nil {
			continue
		}
		if b, ok := value.(bool); ok && !b {
			continue
		}
		name, err := flagName(key)
		if err != nil {
			return Safe{}, err
		}
		if b, ok := value.(bool); ok && b {
			tokens = append(tokens, name)
			continue
		}
		if escape {
			tokens = append(tokens, name+"="+Escape(value, Unquoted))
		} else {
			tokens = append(tokens, name+"="+Text(value))
		}
	}
	return Safe{text: strings.Join(tokens, " ")}, nil
}

// flagName validates key and normalizes it into a flag token.
func flagName(key string) (string, error) {
	name := strings.TrimLeft(key, "-")
	if name == "" {
		return "", fmt.Errorf("invalid flag name %q: empty after stripping dashes", key)
	}
	if !flagNameRe.MatchString(name) {
		return "", fmt.Errorf("invalid flag name %q: must match %s", key, flagNameRe)
	}
	if len(name) == len(key) {
		return "--" + name, nil
	}
	return key, nil
}

// Args converts a list of values into space-joined positional arguments,
// marked safe. nil elements are dropped; every remaining element is escaped
// individually.
func Args(items []any) Safe {
	return buildArgs(items, true)
}

// LiteralArgs is the direct-exec variant of Args: nil elements are dropped
// and the rest are inserted verbatim.
func LiteralArgs(items []any) Safe {
	return buildArgs(items, false)
}

func buildArgs(items []any, escape bool) Safe {
	tokens := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if escape {
			tokens = append(tokens, Escape(item, Unquoted))
		} else {
			tokens = append(tokens, Text(item))
		}
	}
	return Safe{text: strings.Join(tokens, " ")}
}
