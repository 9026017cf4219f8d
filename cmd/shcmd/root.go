package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "shcmd",
		Short:         "Run shell and direct-exec commands with safe interpolation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	viper.SetEnvPrefix("SHCMD")
	viper.AutomaticEnv()
	viper.SetDefault("color", true)

	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose || viper.GetBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newExecCmd())
	root.AddCommand(newEscapeCmd())

	return root
}
