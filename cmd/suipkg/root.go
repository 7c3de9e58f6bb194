package main

import (
	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

const mainnet = "mainnet"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	envFile    string
	network    string
	yes        bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", messages.FlagConfig)
	flags.StringVar(&opts.envFile, "env-file", "", messages.FlagEnvFile)
	flags.StringVar(&opts.network, "network", "", messages.FlagNetwork)
	flags.BoolVarP(&opts.yes, "yes", "y", false, messages.FlagYes)
	flags.StringVar(&opts.logLevel, "log-level", "", messages.FlagLogLevel)

	cmd.AddCommand(
		newPublishCmd(opts),
		newBatchCmd(opts),
		newUpgradeCmd(opts),
		newManifestCmd(opts),
	)
	return cmd
}
