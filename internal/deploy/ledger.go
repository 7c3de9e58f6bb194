package deploy

import (
	"context"
	"io"
	"log/slog"

	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

// LedgerClient submits programmable transactions. *sui.Client implements it.
type LedgerClient interface {
	Submit(ctx context.Context, tx *sui.ProgrammableTransaction, signer sui.Signer, opts sui.SubmitOptions) (*sui.TransactionResponse, error)
	// Serialize returns unsigned base64 transaction bytes for external signing.
	Serialize(ctx context.Context, tx *sui.ProgrammableTransaction, sender string, budget uint64) (string, error)
}

// ManifestStore reads manifests and writes network variants. *manifest.Store implements it.
type ManifestStore interface {
	HasVariant(dir string, network string) (bool, error)
	WriteNetworkVariant(dir string, network string, address string) (string, error)
}

// SessionStarter opens swap sessions. *manifest.Swapper implements it.
type SessionStarter interface {
	NewSession(network string) *manifest.Session
}

// ResultWriter persists publish-result documents. *artifact.FileWriter and friends implement it.
type ResultWriter interface {
	Write(ctx context.Context, dir string, network string, doc map[string]any) error
}

// Locker serializes orchestrators per package directory. A nil Locker disables locking.
type Locker interface {
	Lock(ctx context.Context, dir string) (unlock func() error, err error)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger()
	}
	return logger
}

// withLock runs fn while holding the lock for dir when locker is set.
func withLock(ctx context.Context, locker Locker, dir string, logger *slog.Logger, fn func() error) (err error) {
	if locker == nil {
		return fn()
	}
	unlock, err := locker.Lock(ctx, dir)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := unlock(); unlockErr != nil {
			logger.Warn("release package lock", "dir", dir, "err", unlockErr)
		}
	}()
	return fn()
}
