package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

func newManifestCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ManifestUse,
		Short: messages.ManifestShort,
	}
	cmd.AddCommand(
		newManifestApplyCmd(opts),
		newManifestRevertCmd(opts),
		newManifestDiffCmd(opts),
		newManifestShowCmd(opts),
		newManifestWriteVariantCmd(opts),
	)
	return cmd
}

func newManifestApplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ManifestApplyUse,
		Short: messages.ManifestApplyShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			network := a.cfg.Network
			return a.withLock(cmd.Context(), dir, func() error {
				if err := a.swapper().Apply(dir, network); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ManifestAppliedFmt, manifest.VariantFileName(network), dir)
				return nil
			})
		},
	}
}

func newManifestRevertCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ManifestRevertUse,
		Short: messages.ManifestRevertShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			return a.withLock(cmd.Context(), dir, func() error {
				if err := a.swapper().Revert(dir); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ManifestRevertedFmt, dir)
				return nil
			})
		},
	}
}

func newManifestDiffCmd(opts *globalOptions) *cobra.Command {
	var maxLines int
	cmd := &cobra.Command{
		Use:   messages.ManifestDiffUse,
		Short: messages.ManifestDiffShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			preview, err := manifest.NewStore(nil).Diff(args[0], a.cfg.Network, maxLines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if preview.Empty() {
				_, _ = fmt.Fprintf(out, messages.ManifestNoDiffFmt, preview.To)
				return nil
			}
			renderDiff(out, preview.UnifiedDiff)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxLines, "diff-lines", manifest.DefaultDiffMaxLines, messages.FlagDiffLines)
	return cmd
}

func newManifestShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ManifestShowUse,
		Short: messages.ManifestShowShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			network := a.cfg.Network
			store := manifest.NewStore(nil)
			m, err := store.Load(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, messages.EffectiveAddressesFmt, m.Package.Name, network)
			addresses := m.AddressesFor(network)
			names := make([]string, 0, len(addresses))
			for name := range addresses {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				_, _ = fmt.Fprintf(out, messages.AddressLineFmt, name, idColor.Sprint(addresses[name]))
			}

			variant, err := store.LoadVariant(dir, network)
			if errors.Is(err, manifest.ErrMissingNetworkManifest) {
				return nil
			}
			if err != nil {
				return err
			}
			if variant.Package.PublishedAt != "" {
				_, _ = fmt.Fprintf(out, messages.PublishedAtFmt, idColor.Sprint(variant.Package.PublishedAt))
			}
			return nil
		},
	}
}

func newManifestWriteVariantCmd(opts *globalOptions) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   messages.ManifestWriteVarUse,
		Short: messages.ManifestWriteVarShrt,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(address) == "" {
				return errors.New(messages.AddressFlagRequired)
			}
			dir := args[0]
			a, err := loadApp(cmd, opts, "")
			if err != nil {
				return err
			}
			return a.withLock(cmd.Context(), dir, func() error {
				path, err := manifest.NewStore(nil).WriteNetworkVariant(dir, a.cfg.Network, address)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.ManifestVariantFmt, path)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", messages.FlagAddress)
	return cmd
}
