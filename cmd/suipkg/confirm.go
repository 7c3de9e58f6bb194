package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/prompt"
)

type confirmer interface {
	Confirm(title string, defaultYes bool) (bool, error)
}

var newPrompter = func(cmd *cobra.Command) confirmer {
	return prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())
}

// confirmMainnet asks before anything is submitted to mainnet unless --yes was given.
func confirmMainnet(cmd *cobra.Command, opts *globalOptions, network string, target string) error {
	if network != mainnet || opts.yes {
		return nil
	}
	ok, err := newPrompter(cmd).Confirm(fmt.Sprintf(messages.MainnetConfirmFmt, target), false)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(messages.MainnetRequiresConfirm)
	}
	return nil
}
