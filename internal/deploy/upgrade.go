package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

// UpgradeOptions controls one upgrade.
type UpgradeOptions struct {
	Policy sui.UpgradePolicy
	Build  build.Options
}

// DefaultUpgradeOptions upgrade with the compatible policy and bundle unpublished dependencies.
var DefaultUpgradeOptions = UpgradeOptions{Policy: sui.PolicyCompatible, Build: build.DefaultOptions}

// UpgradeRequest identifies the package to upgrade.
type UpgradeRequest struct {
	Dir          string
	PackageID    string
	UpgradeCapID string
	// Dependencies are package directories whose network manifests are swapped in
	// while the target is built.
	Dependencies []string
	Network      string
}

// Upgrader upgrades published packages.
type Upgrader struct {
	Builder   build.Builder
	Ledger    LedgerClient
	Swapper   SessionStarter
	Signer    sui.Signer
	Locker    Locker
	Logger    *slog.Logger
	GasBudget uint64
}

func (u *Upgrader) gasBudget() uint64 {
	if u.GasBudget == 0 {
		return sui.DefaultGasBudget
	}
	return u.GasBudget
}

func (u *Upgrader) validate(req UpgradeRequest) error {
	switch {
	case strings.TrimSpace(req.Dir) == "":
		return errors.New(messages.DeployDirRequired)
	case strings.TrimSpace(req.PackageID) == "" || strings.TrimSpace(req.UpgradeCapID) == "":
		return errors.New(messages.DeployUpgradeIDsRequired)
	case len(req.Dependencies) > 0 && strings.TrimSpace(req.Network) == "":
		return errors.New(messages.DeployNetworkRequired)
	case len(req.Dependencies) > 0 && u.Swapper == nil:
		return errors.New(messages.DeploySwapperRequired)
	case u.Builder == nil:
		return errors.New(messages.DeployBuilderRequired)
	case u.Ledger == nil:
		return errors.New(messages.DeployLedgerRequired)
	}
	return nil
}

// Upgrade builds dir and upgrades packageID with it, without swapping any manifests.
func (u *Upgrader) Upgrade(ctx context.Context, dir string, packageID string, upgradeCapID string, opts UpgradeOptions) (UpgradeResult, error) {
	return u.UpgradeWithDependencies(ctx, UpgradeRequest{Dir: dir, PackageID: packageID, UpgradeCapID: upgradeCapID}, opts)
}

// UpgradeWithDependencies swaps the network manifest into every dependency directory,
// builds and submits authorize_upgrade, upgrade and commit_upgrade in one transaction,
// and reverts every dependency swap before returning. A transaction without a new
// package id returns the empty result together with an error wrapping ErrUpgradeFailed.
func (u *Upgrader) UpgradeWithDependencies(ctx context.Context, req UpgradeRequest, opts UpgradeOptions) (UpgradeResult, error) {
	if err := u.validate(req); err != nil {
		return UpgradeResult{}, err
	}
	if u.Signer == nil {
		return UpgradeResult{}, errors.New(messages.DeploySignerRequired)
	}
	logger := loggerOrDiscard(u.Logger).With("dir", req.Dir, "package_id", req.PackageID)

	var result UpgradeResult
	err := withLock(ctx, u.Locker, req.Dir, logger, func() error {
		tx, err := u.buildTransaction(ctx, req, opts, logger)
		if err != nil {
			return err
		}
		resp, err := u.Ledger.Submit(ctx, tx, u.Signer, sui.SubmitOptions{
			Op:                opUpgrade,
			GasBudget:         u.gasBudget(),
			ShowEffects:       true,
			ShowObjectChanges: true,
		})
		if err != nil {
			return fmt.Errorf(messages.DeploySubmitFmt, opUpgrade, req.Dir, err)
		}
		result, err = classifyUpgradeResponse(resp)
		if err != nil {
			return fmt.Errorf(messages.DeployClassifyFmt, opUpgrade, req.Dir, err)
		}
		if !result.Succeeded() {
			logger.Error("upgrade failed", "digest", resp.Digest, "reason", resp.Status().Error)
			return &TransactionFailedError{Op: opUpgrade, Dir: req.Dir, Digest: resp.Digest, Reason: resp.Status().Error}
		}
		logger.Info("package upgraded", "new_package_id", result.PackageID, "upgrade_cap_id", result.UpgradeCapID, "digest", result.Digest)
		return nil
	})
	return result, err
}

// Prepare builds the upgrade transaction for sender and returns it unsigned in base64.
// Dependency swaps are reverted before returning.
func (u *Upgrader) Prepare(ctx context.Context, req UpgradeRequest, sender string, opts UpgradeOptions) (string, error) {
	if err := u.validate(req); err != nil {
		return "", err
	}
	logger := loggerOrDiscard(u.Logger).With("dir", req.Dir, "package_id", req.PackageID)
	tx, err := u.buildTransaction(ctx, req, opts, logger)
	if err != nil {
		return "", err
	}
	encoded, err := u.Ledger.Serialize(ctx, tx, sender, u.gasBudget())
	if err != nil {
		return "", fmt.Errorf(messages.DeployTransactionFmt, opUpgrade, req.Dir, err)
	}
	return encoded, nil
}

// buildTransaction builds the target with the dependency manifests swapped in. The
// swaps are reverted before it returns, whether or not the build succeeded.
func (u *Upgrader) buildTransaction(ctx context.Context, req UpgradeRequest, opts UpgradeOptions, logger *slog.Logger) (tx *sui.ProgrammableTransaction, err error) {
	if len(req.Dependencies) > 0 {
		session := u.Swapper.NewSession(req.Network)
		defer func() {
			if closeErr := session.Close(); closeErr != nil {
				logger.Warn("restore dependency manifests", "err", closeErr)
			}
		}()
		for _, dep := range req.Dependencies {
			if err := session.Apply(dep); err != nil {
				return nil, fmt.Errorf(messages.DeploySwapDependencyFmt, dep, err)
			}
		}
	}

	artifact, err := u.Builder.Build(ctx, req.Dir, opts.Build)
	if err != nil {
		return nil, fmt.Errorf(messages.DeployBuildFmt, req.Dir, err)
	}
	tx, err = sui.NewUpgradeTransaction(sui.UpgradeParams{
		Modules:      artifact.Modules,
		Dependencies: artifact.Dependencies,
		Digest:       artifact.Digest,
		PackageID:    req.PackageID,
		UpgradeCapID: req.UpgradeCapID,
		Policy:       opts.Policy,
	})
	if err != nil {
		return nil, fmt.Errorf(messages.DeployTransactionFmt, opUpgrade, req.Dir, err)
	}
	return tx, nil
}

func classifyUpgradeResponse(resp *sui.TransactionResponse) (UpgradeResult, error) {
	if resp == nil {
		return UpgradeResult{}, ErrMissingEffects
	}
	var result UpgradeResult
	if resp.Status().Succeeded() {
		var err error
		result, err = ClassifyUpgrade(resp.ObjectChanges)
		if err != nil {
			return UpgradeResult{}, err
		}
	}
	result.Digest = resp.Digest
	return result, nil
}
