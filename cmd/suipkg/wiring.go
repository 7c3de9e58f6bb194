package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scallop-io/sui-package-kit/internal/artifact"
	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/config"
	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/lock"
	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/messages"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

var newLedger = func(cfg *config.Config, logger *slog.Logger) (deploy.LedgerClient, error) {
	url, err := sui.RPCURL(cfg.Network, cfg.RPCURL)
	if err != nil {
		return nil, err
	}
	client, err := sui.NewClient(url, nil, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var loadSigner = func(cfg *config.Config) (sui.Signer, error) {
	if cfg.SecretKey != "" {
		key, err := sui.ParseSecretKey(cfg.SecretKey)
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	key, err := sui.LoadKeystore(cfg.Keystore, cfg.Address)
	if err != nil {
		return nil, err
	}
	return key, nil
}

var newObjectStore = func(cfg artifact.ObjectStoreConfig) (artifact.ObjectStore, error) {
	client, err := artifact.NewMinIOClient(cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

const gasBudgetFlagName = "gas-budget"

// addGasBudgetFlag registers --gas-budget; loadApp reads it back as a config override.
func addGasBudgetFlag(cmd *cobra.Command) {
	cmd.Flags().Uint64(gasBudgetFlagName, 0, messages.FlagGasBudget)
}

// gasBudgetFlag returns the --gas-budget value, or 0 when the command has no such flag.
func gasBudgetFlag(cmd *cobra.Command) uint64 {
	if cmd.Flags().Lookup(gasBudgetFlagName) == nil {
		return 0
	}
	budget, err := cmd.Flags().GetUint64(gasBudgetFlagName)
	if err != nil {
		return 0
	}
	return budget
}

// app is the per-invocation wiring built from flags and configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadApp resolves configuration with the --network flag taking precedence over
// fallbackNetwork, which in turn beats the config file and environment.
func loadApp(cmd *cobra.Command, opts *globalOptions, fallbackNetwork string) (*app, error) {
	overrides := map[string]any{}
	switch {
	case opts.network != "":
		overrides["network"] = opts.network
	case fallbackNetwork != "":
		overrides["network"] = fallbackNetwork
	}
	if opts.logLevel != "" {
		overrides["log.level"] = opts.logLevel
	}
	if budget := gasBudgetFlag(cmd); budget > 0 {
		overrides["gas_budget"] = budget
	}
	envFile, required := opts.envFile, true
	if envFile == "" {
		envFile, required = config.DefaultDotEnvFile, false
	}
	if err := config.LoadDotEnv(envFile, required); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.configPath, overrides)
	if err != nil {
		return nil, err
	}
	logger := config.SetupLogger(cfg.Log, cmd.ErrOrStderr()).With("run_id", uuid.NewString(), "network", cfg.Network)
	logger.Debug("configuration loaded", "config", opts.configPath, "sui_bin", cfg.SuiBin, "lock", cfg.Lock)
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) builder() build.Builder {
	return build.NewCLIBuilder(a.cfg.SuiBin, a.logger)
}

func (a *app) swapper() *manifest.Swapper {
	return manifest.NewSwapper(nil, a.logger)
}

// locker returns nil unless locking is enabled; callers must not wrap a nil *FileLocker
// in the deploy.Locker interface.
func (a *app) locker() deploy.Locker {
	if !a.cfg.Lock {
		return nil
	}
	return lock.NewFileLocker(a.cfg.LockTimeout)
}

// withLock runs fn while holding the package lock when locking is enabled.
func (a *app) withLock(ctx context.Context, dir string, fn func() error) error {
	locker := a.locker()
	if locker == nil {
		return fn()
	}
	unlock, err := locker.Lock(ctx, dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			a.logger.Warn("release package lock", "dir", dir, "err", err)
		}
	}()
	return fn()
}

// resultWriter writes publish results next to the package and, when configured, to S3.
func (a *app) resultWriter(ctx context.Context) (deploy.ResultWriter, error) {
	writers := artifact.MultiWriter{artifact.NewFileWriter()}
	s3 := a.cfg.Artifacts.S3
	if !s3.Enabled {
		return writers, nil
	}
	store, err := newObjectStore(artifact.ObjectStoreConfig{
		Endpoint:  s3.Endpoint,
		Bucket:    s3.Bucket,
		Prefix:    s3.Prefix,
		AccessKey: s3.AccessKey,
		SecretKey: s3.SecretKey,
		Region:    s3.Region,
		UseSSL:    s3.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	remote := artifact.NewObjectStoreWriter(store, s3.Bucket, s3.Prefix)
	if err := remote.CheckBucket(ctx); err != nil {
		return nil, err
	}
	return append(writers, remote), nil
}

// publisher wires a Publisher. Unsigned publishers carry no signer, results or lock.
func (a *app) publisher(ctx context.Context, signed bool) (*deploy.Publisher, error) {
	ledger, err := newLedger(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	p := &deploy.Publisher{
		Builder:   a.builder(),
		Ledger:    ledger,
		Manifests: manifest.NewStore(nil),
		Logger:    a.logger,
		GasBudget: a.cfg.GasBudget,
	}
	if !signed {
		return p, nil
	}
	signer, err := loadSigner(a.cfg)
	if err != nil {
		return nil, err
	}
	results, err := a.resultWriter(ctx)
	if err != nil {
		return nil, err
	}
	p.Signer = signer
	p.Results = results
	p.Locker = a.locker()
	a.logger.Info("publisher ready", "sender", signer.Address())
	return p, nil
}

// upgrader wires an Upgrader. Unsigned upgraders carry no signer or lock.
func (a *app) upgrader(signed bool) (*deploy.Upgrader, error) {
	ledger, err := newLedger(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	u := &deploy.Upgrader{
		Builder:   a.builder(),
		Ledger:    ledger,
		Swapper:   a.swapper(),
		Logger:    a.logger,
		GasBudget: a.cfg.GasBudget,
	}
	if !signed {
		return u, nil
	}
	signer, err := loadSigner(a.cfg)
	if err != nil {
		return nil, err
	}
	u.Signer = signer
	u.Locker = a.locker()
	a.logger.Info("upgrader ready", "sender", signer.Address())
	return u, nil
}

func requireSender(sender string) (string, error) {
	if strings.TrimSpace(sender) == "" {
		return "", errors.New(messages.UnsignedRequiresSender)
	}
	normalized, err := sui.NormalizeAddress(sender)
	if err != nil {
		return "", fmt.Errorf(messages.SenderInvalidFmt, err)
	}
	return normalized, nil
}
