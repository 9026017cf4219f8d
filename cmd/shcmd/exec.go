package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "exec -- <program> [args...]",
		Short: "Run a program directly, with no shell interpretation",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("program is required; use -- to separate CLI flags from the program")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(false, strings.Join(args, " "), flags)
		},
	}
	flags.register(cmd)
	return cmd
}
