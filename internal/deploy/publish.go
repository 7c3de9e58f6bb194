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

// ResultParser extracts the publish-result document fields from a publish result.
type ResultParser func(PublishResult) map[string]any

// DefaultResultParser keeps the package id, the upgrade capability and the publishers.
func DefaultResultParser(r PublishResult) map[string]any {
	publishers := r.PublisherIDs
	if publishers == nil {
		publishers = []string{}
	}
	return map[string]any{
		"packageId":    r.PackageID,
		"upgradeCapId": r.UpgradeCapID,
		"publisherIds": publishers,
	}
}

// PublishBuildOptions are the build options used when publishing.
var PublishBuildOptions = build.Options{SkipDependencyFetch: true}

// PublishOptions controls one publish.
type PublishOptions struct {
	// Enforce publishes even when Move.<network>.toml already exists.
	Enforce bool
	// WriteNetworkVariant writes Move.<network>.toml after a successful publish.
	WriteNetworkVariant bool
	// ResultParser, when set, writes publish-result.<network>.json through the result writer.
	ResultParser ResultParser
	Build        build.Options
}

// PublishOutcome reports what Publish did.
type PublishOutcome struct {
	Result PublishResult
	// AlreadyPublished is set when the publish was skipped because a network manifest exists.
	AlreadyPublished bool
	VariantPath      string
}

// Publisher publishes a package unless it is already published on the network.
type Publisher struct {
	Builder   build.Builder
	Ledger    LedgerClient
	Manifests ManifestStore
	Signer    sui.Signer
	// Results receives publish-result documents. Nil disables result files.
	Results   ResultWriter
	Locker    Locker
	Logger    *slog.Logger
	GasBudget uint64
}

func (p *Publisher) validate(dir string, network string) error {
	switch {
	case strings.TrimSpace(dir) == "":
		return errors.New(messages.DeployDirRequired)
	case strings.TrimSpace(network) == "":
		return errors.New(messages.DeployNetworkRequired)
	case p.Builder == nil:
		return errors.New(messages.DeployBuilderRequired)
	case p.Ledger == nil:
		return errors.New(messages.DeployLedgerRequired)
	case p.Manifests == nil:
		return errors.New(messages.DeployManifestsRequired)
	}
	return nil
}

func (p *Publisher) gasBudget() uint64 {
	if p.GasBudget == 0 {
		return sui.DefaultGasBudget
	}
	return p.GasBudget
}

// Publish builds and publishes dir on network. An existing Move.<network>.toml skips
// the publish unless opts.Enforce is set. A transaction that yields no package id is
// returned as a *TransactionFailedError wrapping ErrPublishFailed.
func (p *Publisher) Publish(ctx context.Context, dir string, network string, opts PublishOptions) (*PublishOutcome, error) {
	if err := p.validate(dir, network); err != nil {
		return nil, err
	}
	if p.Signer == nil {
		return nil, errors.New(messages.DeploySignerRequired)
	}
	logger := loggerOrDiscard(p.Logger).With("dir", dir, "network", network)

	var outcome *PublishOutcome
	err := withLock(ctx, p.Locker, dir, logger, func() error {
		var err error
		outcome, err = p.publish(ctx, dir, network, opts, logger)
		return err
	})
	return outcome, err
}

func (p *Publisher) publish(ctx context.Context, dir string, network string, opts PublishOptions, logger *slog.Logger) (*PublishOutcome, error) {
	exists, err := p.Manifests.HasVariant(dir, network)
	if err != nil {
		return nil, fmt.Errorf(messages.DeployCheckVariantFmt, dir, err)
	}
	if exists && !opts.Enforce {
		logger.Info("package already published")
		return &PublishOutcome{AlreadyPublished: true}, nil
	}

	artifact, err := p.Builder.Build(ctx, dir, opts.Build)
	if err != nil {
		return nil, fmt.Errorf(messages.DeployBuildFmt, dir, err)
	}
	tx, err := sui.NewPublishTransaction(artifact.Modules, artifact.Dependencies, p.Signer.Address())
	if err != nil {
		return nil, fmt.Errorf(messages.DeployTransactionFmt, opPublish, dir, err)
	}
	resp, err := p.Ledger.Submit(ctx, tx, p.Signer, sui.SubmitOptions{
		Op:                opPublish,
		GasBudget:         p.gasBudget(),
		ShowEffects:       true,
		ShowObjectChanges: true,
	})
	if err != nil {
		return nil, fmt.Errorf(messages.DeploySubmitFmt, opPublish, dir, err)
	}

	result, err := classifyPublishResponse(resp)
	if err != nil {
		return nil, fmt.Errorf(messages.DeployClassifyFmt, opPublish, dir, err)
	}
	if n := countPublished(resp.ObjectChanges); n > 1 {
		logger.Warn("publish produced several packages; keeping the last", "count", n, "package_id", result.PackageID)
	}
	outcome := &PublishOutcome{Result: result}
	if !result.Succeeded() {
		logger.Error("publish failed", "digest", resp.Digest, "reason", resp.Status().Error)
		return outcome, &TransactionFailedError{Op: opPublish, Dir: dir, Digest: resp.Digest, Reason: resp.Status().Error}
	}
	logger.Info("package published", "package_id", result.PackageID, "upgrade_cap_id", result.UpgradeCapID, "digest", result.Digest)

	if opts.WriteNetworkVariant {
		path, err := p.Manifests.WriteNetworkVariant(dir, network, result.PackageID)
		if err != nil {
			return outcome, fmt.Errorf(messages.DeployWriteVariantFmt, dir, err)
		}
		outcome.VariantPath = path
		logger.Info("wrote network manifest", "path", path)
	}
	if opts.ResultParser != nil && p.Results != nil {
		doc := DefaultResultParser(result)
		for key, value := range opts.ResultParser(result) {
			doc[key] = value
		}
		if err := p.Results.Write(ctx, dir, network, doc); err != nil {
			return outcome, fmt.Errorf(messages.DeployWriteResultFmt, dir, err)
		}
	}
	return outcome, nil
}

func classifyPublishResponse(resp *sui.TransactionResponse) (PublishResult, error) {
	if resp == nil {
		return PublishResult{}, ErrMissingEffects
	}
	var result PublishResult
	var err error
	if resp.Status().Succeeded() {
		result, err = ClassifyPublish(resp.ObjectChanges)
		if err != nil {
			return PublishResult{}, err
		}
	} else {
		// A failed transaction reports no usable changes.
		result = PublishResult{PublisherIDs: []string{}, Created: []CreatedObject{}}
	}
	result.Digest = resp.Digest
	return result, nil
}

// Prepare builds dir and returns unsigned base64 publish transaction bytes for sender.
func (p *Publisher) Prepare(ctx context.Context, dir string, sender string, opts build.Options) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(messages.DeployDirRequired)
	}
	if p.Builder == nil {
		return "", errors.New(messages.DeployBuilderRequired)
	}
	if p.Ledger == nil {
		return "", errors.New(messages.DeployLedgerRequired)
	}
	artifact, err := p.Builder.Build(ctx, dir, opts)
	if err != nil {
		return "", fmt.Errorf(messages.DeployBuildFmt, dir, err)
	}
	tx, err := sui.NewPublishTransaction(artifact.Modules, artifact.Dependencies, sender)
	if err != nil {
		return "", fmt.Errorf(messages.DeployTransactionFmt, opPublish, dir, err)
	}
	encoded, err := p.Ledger.Serialize(ctx, tx, sender, p.gasBudget())
	if err != nil {
		return "", fmt.Errorf(messages.DeployTransactionFmt, opPublish, dir, err)
	}
	return encoded, nil
}
