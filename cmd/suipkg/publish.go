package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

type publishFlags struct {
	enforce      bool
	writeVariant bool
	artifact     bool
	skipFetch    bool
	unpublished  bool
	unsigned     bool
	sender       string
}

func newPublishCmd(opts *globalOptions) *cobra.Command {
	f := &publishFlags{}
	cmd := &cobra.Command{
		Use:   messages.PublishUse,
		Short: messages.PublishShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			buildOpts := build.Options{SkipDependencyFetch: f.skipFetch, IncludeUnpublishedDependencies: f.unpublished}
			out := cmd.OutOrStdout()

			if f.unsigned {
				sender, err := requireSender(f.sender)
				if err != nil {
					return err
				}
				p, err := a.publisher(cmd.Context(), false)
				if err != nil {
					return err
				}
				encoded, err := p.Prepare(cmd.Context(), dir, sender, buildOpts)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, messages.UnsignedTxFmt, encoded)
				return nil
			}

			if err := confirmMainnet(cmd, opts, a.cfg.Network, dir); err != nil {
				return err
			}
			p, err := a.publisher(cmd.Context(), true)
			if err != nil {
				return err
			}
			publishOpts := deploy.PublishOptions{
				Enforce:             f.enforce,
				WriteNetworkVariant: f.writeVariant,
				Build:               buildOpts,
			}
			if f.artifact {
				publishOpts.ResultParser = deploy.DefaultResultParser
			}
			outcome, err := p.Publish(cmd.Context(), dir, a.cfg.Network, publishOpts)
			reportPublish(out, dir, a.cfg.Network, outcome)
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&f.enforce, "enforce", false, messages.FlagEnforce)
	flags.BoolVar(&f.writeVariant, "write-variant", true, messages.FlagWriteVar)
	flags.BoolVar(&f.artifact, "artifact", true, messages.FlagArtifact)
	flags.BoolVar(&f.skipFetch, "skip-fetch-deps", deploy.PublishBuildOptions.SkipDependencyFetch, messages.FlagSkipFetch)
	flags.BoolVar(&f.unpublished, "with-unpublished-deps", deploy.PublishBuildOptions.IncludeUnpublishedDependencies, messages.FlagUnpublished)
	flags.BoolVar(&f.unsigned, "unsigned", false, messages.FlagUnsigned)
	flags.StringVar(&f.sender, "sender", "", messages.FlagSender)
	addGasBudgetFlag(cmd)
	return cmd
}
