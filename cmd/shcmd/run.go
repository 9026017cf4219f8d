package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chriscalo/sh-cmd-tag/pkg/shell"
)

type runFlags struct {
	dir     string
	env     []string
	noThrow bool
	quiet   bool
	noColor bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dir, "dir", "", "working directory for the command")
	cmd.Flags().StringArrayVar(&f.env, "env", nil, "environment override, key=value (repeatable)")
	cmd.Flags().BoolVar(&f.noThrow, "no-throw", false, "exit zero even when the command fails")
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "capture output instead of forwarding it live")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "suppress color in the child")
}

func newRunCmd() *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run -- <command>",
		Short: "Run a command through the system shell",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("command is required; use -- to separate CLI flags from the command")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(true, strings.Join(args, " "), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runTemplate(shellMode bool, tmpl string, flags runFlags) error {
	env, err := parseEnv(flags.env)
	if err != nil {
		return err
	}

	opts := []shell.Option{
		shell.WithNoThrow(), // the CLI inspects the result itself
		shell.WithColor(!flags.noColor && viper.GetBool("color")),
	}
	if flags.dir != "" {
		opts = append(opts, shell.WithDir(flags.dir))
	}
	if len(env) > 0 {
		opts = append(opts, shell.WithEnv(env))
	}
	if !flags.quiet {
		opts = append(opts, shell.WithLiveOutput(), shell.WithLiveDebug())
	}
	tag := shell.New(opts...)

	logrus.WithFields(logrus.Fields{
		"shell":    shellMode,
		"template": tmpl,
		"dir":      flags.dir,
	}).Debug("running command")

	var res *shell.Result
	if shellMode {
		res, err = tag.ShSync(tmpl)
	} else {
		res, err = tag.CmdSync(tmpl)
	}
	if err != nil {
		return errors.Wrap(err, "build command")
	}

	if flags.quiet {
		fmt.Print(res.Output)
		fmt.Fprint(os.Stderr, res.Debug)
	}
	printStatus(res)

	if !res.Ok && !flags.noThrow {
		return res.Error
	}
	return nil
}

// parseEnv turns repeated key=value flags into a map.
func parseEnv(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid --env value %q: expected key=value", pair)
		}
		env[key] = value
	}
	return env, nil
}
