package main

import (
	"github.com/fatih/color"

	"github.com/chriscalo/sh-cmd-tag/pkg/shell"
)

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
)

// printStatus writes a one-line status to stderr so it never mixes with the
// command's own stdout.
func printStatus(res *shell.Result) {
	if res.Ok {
		okColor.Fprintln(color.Error, "ok")
		return
	}
	failColor.Fprintf(color.Error, "exit %d\n", res.Error.Code)
}
