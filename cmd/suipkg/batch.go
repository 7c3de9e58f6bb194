package main

import (
	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

func newBatchCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.BatchUse,
		Short: messages.BatchShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := deploy.LoadBatchFile(args[0])
			if err != nil {
				return err
			}
			a, err := loadApp(cmd, opts, file.Network)
			if err != nil {
				return err
			}
			if err := confirmMainnet(cmd, opts, a.cfg.Network, args[0]); err != nil {
				return err
			}
			p, err := a.publisher(cmd.Context(), true)
			if err != nil {
				return err
			}
			seq := &deploy.Sequencer{Publisher: p, Swapper: a.swapper(), Logger: a.logger}
			entries := file.Entries()
			results, err := seq.PublishBatch(cmd.Context(), entries, a.cfg.Network)
			reportBatch(cmd.OutOrStdout(), entries, results, err)
			return err
		},
	}
	addGasBudgetFlag(cmd)
	return cmd
}
