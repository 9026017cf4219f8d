package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chriscalo/sh-cmd-tag/pkg/shell/quote"
)

func newEscapeCmd() *cobra.Command {
	var double, single bool
	cmd := &cobra.Command{
		Use:   "escape <text>",
		Short: "Print the shell-escaped form of text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := quote.Unquoted
			switch {
			case double:
				ctx = quote.DoubleQuoted
			case single:
				ctx = quote.SingleQuoted
			}
			fmt.Println(quote.Escape(args[0], ctx))
			return nil
		},
	}
	cmd.Flags().BoolVar(&double, "double", false, "escape for a double-quoted context")
	cmd.Flags().BoolVar(&single, "single", false, "escape for a single-quoted context")
	return cmd
}
