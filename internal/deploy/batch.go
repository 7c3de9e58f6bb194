package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// BatchOption overrides the batch defaults field by field. Nil fields inherit.
type BatchOption struct {
	Enforce             *bool
	WriteNetworkVariant *bool
	// WriteResult set to false disables the publish-result document for the entry.
	WriteResult  *bool
	ResultParser ResultParser
	Build        *build.Options
}

// BatchEntry is one package of an ordered batch.
type BatchEntry struct {
	Path   string
	Option *BatchOption
}

// DefaultBatchOptions apply to every entry unless overridden.
var DefaultBatchOptions = PublishOptions{
	Enforce:             false,
	WriteNetworkVariant: true,
	ResultParser:        DefaultResultParser,
	Build:               PublishBuildOptions,
}

// Resolve merges o over base.
func (o *BatchOption) Resolve(base PublishOptions) PublishOptions {
	out := base
	if o == nil {
		return out
	}
	if o.Enforce != nil {
		out.Enforce = *o.Enforce
	}
	if o.WriteNetworkVariant != nil {
		out.WriteNetworkVariant = *o.WriteNetworkVariant
	}
	if o.ResultParser != nil {
		out.ResultParser = o.ResultParser
	}
	if o.WriteResult != nil && !*o.WriteResult {
		out.ResultParser = nil
	}
	if o.Build != nil {
		out.Build = *o.Build
	}
	return out
}

// BatchResult is the outcome of one batch entry.
type BatchResult struct {
	Path    string
	Outcome *PublishOutcome
}

// Sequencer publishes an ordered list of packages. After each publish the package's
// network manifest is swapped in so later entries build against its address.
type Sequencer struct {
	Publisher *Publisher
	Swapper   SessionStarter
	Logger    *slog.Logger
}

// PublishBatch publishes entries strictly in order and stops at the first failure.
// Every entry directory is reverted exactly once when the batch returns, whatever
// happened; revert failures are logged. Ledger effects of earlier entries stay.
func (s *Sequencer) PublishBatch(ctx context.Context, entries []BatchEntry, network string) (results []BatchResult, err error) {
	if s.Publisher == nil {
		return nil, errors.New(messages.DeployPublisherRequired)
	}
	if s.Swapper == nil {
		return nil, errors.New(messages.DeploySwapperRequired)
	}
	logger := loggerOrDiscard(s.Logger).With("network", network)

	// Locks are held for the whole batch; the per-publish lock would self-deadlock.
	publisher := *s.Publisher
	locker := publisher.Locker
	publisher.Locker = nil
	publisher.Logger = logger

	session := s.Swapper.NewSession(network)
	var unlocks []func() error
	locked := make(map[string]struct{})
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn("restore manifests after batch", "err", closeErr)
		}
		for i := len(unlocks) - 1; i >= 0; i-- {
			if unlockErr := unlocks[i](); unlockErr != nil {
				logger.Warn("release package lock", "err", unlockErr)
			}
		}
	}()
	for _, entry := range entries {
		session.Track(entry.Path)
	}

	results = make([]BatchResult, 0, len(entries))
	for i, entry := range entries {
		key := dirKey(entry.Path)
		if _, held := locked[key]; locker != nil && !held {
			unlock, err := locker.Lock(ctx, entry.Path)
			if err != nil {
				return results, fmt.Errorf(messages.DeployBatchEntryFmt, i, entry.Path, err)
			}
			unlocks = append(unlocks, unlock)
			locked[key] = struct{}{}
		}

		opts := entry.Option.Resolve(DefaultBatchOptions)
		outcome, err := publisher.Publish(ctx, entry.Path, network, opts)
		if err != nil {
			logger.Error("batch entry failed", "index", i, "dir", entry.Path, "err", err)
			if outcome != nil {
				results = append(results, BatchResult{Path: entry.Path, Outcome: outcome})
			}
			return results, fmt.Errorf(messages.DeployBatchEntryFmt, i, entry.Path, err)
		}
		results = append(results, BatchResult{Path: entry.Path, Outcome: outcome})

		if err := session.Apply(entry.Path); err != nil {
			return results, fmt.Errorf(messages.DeployBatchEntryFmt, i, entry.Path, fmt.Errorf(messages.DeploySwapPublishedFmt, entry.Path, err))
		}
	}
	return results, nil
}

// dirKey identifies a package directory however its path was spelled.
func dirKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}
