package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

type upgradeFlags struct {
	packageID    string
	upgradeCapID string
	deps         []string
	policy       string
	skipFetch    bool
	unpublished  bool
	unsigned     bool
	sender       string
}

func newUpgradeCmd(opts *globalOptions) *cobra.Command {
	f := &upgradeFlags{}
	cmd := &cobra.Command{
		Use:   messages.UpgradeUse,
		Short: messages.UpgradeShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if strings.TrimSpace(f.packageID) == "" || strings.TrimSpace(f.upgradeCapID) == "" {
				return errors.New(messages.UpgradeRequiresIDs)
			}
			policy, err := sui.ParseUpgradePolicy(f.policy)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			req := deploy.UpgradeRequest{
				Dir:          dir,
				PackageID:    f.packageID,
				UpgradeCapID: f.upgradeCapID,
				Dependencies: f.deps,
				Network:      a.cfg.Network,
			}
			upgradeOpts := deploy.UpgradeOptions{
				Policy: policy,
				Build:  build.Options{SkipDependencyFetch: f.skipFetch, IncludeUnpublishedDependencies: f.unpublished},
			}
			out := cmd.OutOrStdout()

			if f.unsigned {
				sender, err := requireSender(f.sender)
				if err != nil {
					return err
				}
				u, err := a.upgrader(false)
				if err != nil {
					return err
				}
				encoded, err := u.Prepare(cmd.Context(), req, sender, upgradeOpts)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, messages.UnsignedTxFmt, encoded)
				return nil
			}

			if err := confirmMainnet(cmd, opts, a.cfg.Network, dir); err != nil {
				return err
			}
			u, err := a.upgrader(true)
			if err != nil {
				return err
			}
			result, err := u.UpgradeWithDependencies(cmd.Context(), req, upgradeOpts)
			reportUpgrade(out, dir, result)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.packageID, "package-id", "", messages.FlagPackageID)
	flags.StringVar(&f.upgradeCapID, "upgrade-cap", "", messages.FlagUpgradeCap)
	flags.StringArrayVar(&f.deps, "dep", nil, messages.FlagDependency)
	flags.StringVar(&f.policy, "policy", sui.PolicyCompatible.String(), messages.FlagPolicy)
	flags.BoolVar(&f.skipFetch, "skip-fetch-deps", deploy.DefaultUpgradeOptions.Build.SkipDependencyFetch, messages.FlagSkipFetch)
	flags.BoolVar(&f.unpublished, "with-unpublished-deps", deploy.DefaultUpgradeOptions.Build.IncludeUnpublishedDependencies, messages.FlagUnpublished)
	flags.BoolVar(&f.unsigned, "unsigned", false, messages.FlagUnsigned)
	flags.StringVar(&f.sender, "sender", "", messages.FlagSender)
	addGasBudgetFlag(cmd)
	return cmd
}
