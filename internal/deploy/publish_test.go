package deploy

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

func TestPublishSkipsWhenVariantExists(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.VariantFileName("testnet")), []byte("[package]\nname = \"pkg\"\n"), 0o644))
	builder := &fakeBuilder{}
	ledger := &fakeLedger{}

	outcome, err := newPublisher(builder, ledger, nil).Publish(context.Background(), dir, "testnet", PublishOptions{})
	require.NoError(t, err)
	assert.True(t, outcome.AlreadyPublished)
	assert.Empty(t, builder.dirs)
	assert.Empty(t, ledger.submitted)
}

func TestPublishEnforceIgnoresVariant(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.VariantFileName("testnet")), []byte("[package]\nname = \"pkg\"\n"), 0o644))
	builder := &fakeBuilder{}
	ledger := &fakeLedger{}

	outcome, err := newPublisher(builder, ledger, nil).Publish(context.Background(), dir, "testnet", PublishOptions{Enforce: true})
	require.NoError(t, err)
	assert.False(t, outcome.AlreadyPublished)
	assert.Equal(t, packageID(1), outcome.Result.PackageID)
	assert.Len(t, ledger.submitted, 1)
}

func TestPublishTwiceBuildsOnce(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	builder := &fakeBuilder{}
	ledger := &fakeLedger{}
	publisher := newPublisher(builder, ledger, nil)
	opts := PublishOptions{WriteNetworkVariant: true, Build: PublishBuildOptions}

	first, err := publisher.Publish(context.Background(), dir, "testnet", opts)
	require.NoError(t, err)
	assert.False(t, first.AlreadyPublished)
	assert.Equal(t, filepath.Join(dir, "Move.testnet.toml"), first.VariantPath)
	assert.Equal(t, "digest-1", first.Result.Digest)
	assert.Equal(t, "0xcap", first.Result.UpgradeCapID)
	assert.Equal(t, []string{"0xpub"}, first.Result.PublisherIDs)

	second, err := publisher.Publish(context.Background(), dir, "testnet", opts)
	require.NoError(t, err)
	assert.True(t, second.AlreadyPublished)

	assert.Len(t, builder.dirs, 1)
	assert.Len(t, ledger.submitted, 1)
	assert.Equal(t, []build.Options{PublishBuildOptions}, builder.opts)
	assert.Equal(t, sui.SubmitOptions{Op: "publish", GasBudget: sui.DefaultGasBudget, ShowEffects: true, ShowObjectChanges: true}, ledger.opts[0])

	variant, err := manifest.NewStore(nil).LoadVariant(dir, "testnet")
	require.NoError(t, err)
	assert.Equal(t, packageID(1), variant.Package.PublishedAt)
	assert.Equal(t, packageID(1), variant.Addresses["pkg"])
}

func TestPublishFailedTransaction(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	ledger := &fakeLedger{respond: func(int) (*sui.TransactionResponse, error) { return failedResponse(), nil }}
	writer := &recordingWriter{}

	outcome, err := newPublisher(&fakeBuilder{}, ledger, writer).Publish(context.Background(), dir, "testnet", PublishOptions{
		WriteNetworkVariant: true,
		ResultParser:        DefaultResultParser,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublishFailed))
	assert.Contains(t, err.Error(), "InsufficientGas")
	require.NotNil(t, outcome)
	assert.Equal(t, "", outcome.Result.PackageID)
	assert.Equal(t, []CreatedObject{}, outcome.Result.Created)

	ok, err := manifest.NewStore(nil).HasVariant(dir, "testnet")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, writer.docs)
}

func TestPublishErrorsPropagate(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")

	builder := &fakeBuilder{onBuild: func(string) error { return &build.BuildError{Dir: dir, Output: "error", Err: errBoom} }}
	_, err := newPublisher(builder, &fakeLedger{}, nil).Publish(context.Background(), dir, "testnet", PublishOptions{})
	assert.True(t, errors.Is(err, build.ErrBuildFailed))

	ledger := &fakeLedger{respond: func(int) (*sui.TransactionResponse, error) {
		return nil, &sui.SubmissionError{Op: "publish", Err: errBoom}
	}}
	_, err = newPublisher(&fakeBuilder{}, ledger, nil).Publish(context.Background(), dir, "testnet", PublishOptions{})
	assert.True(t, errors.Is(err, sui.ErrSubmission))

	ledger = &fakeLedger{respond: func(int) (*sui.TransactionResponse, error) {
		return &sui.TransactionResponse{Digest: "x", Effects: successEffects()}, nil
	}}
	_, err = newPublisher(&fakeBuilder{}, ledger, nil).Publish(context.Background(), dir, "testnet", PublishOptions{})
	assert.True(t, errors.Is(err, ErrMissingEffects))
}

func TestPublishWritesMergedResult(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	writer := &recordingWriter{}
	parser := func(r PublishResult) map[string]any {
		return map[string]any{"upgradeCapId": "override", "createdCount": len(r.Created)}
	}

	_, err := newPublisher(&fakeBuilder{}, &fakeLedger{}, writer).Publish(context.Background(), dir, "devnet", PublishOptions{ResultParser: parser})
	require.NoError(t, err)
	require.Len(t, writer.docs, 1)
	assert.Equal(t, map[string]any{
		"packageId":    packageID(1),
		"upgradeCapId": "override",
		"publisherIds": []string{"0xpub"},
		"createdCount": 0,
	}, writer.docs[0])

	writer.err = errBoom
	_, err = newPublisher(&fakeBuilder{}, &fakeLedger{}, writer).Publish(context.Background(), dir, "mainnet", PublishOptions{ResultParser: DefaultResultParser})
	assert.True(t, errors.Is(err, errBoom))
}

func TestPublishWarnsOnSeveralPackages(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	ledger := &fakeLedger{respond: func(n int) (*sui.TransactionResponse, error) {
		resp := publishedResponse(n)
		resp.ObjectChanges = append(resp.ObjectChanges, sui.PublishedChange{PackageID: "0xlast"})
		return resp, nil
	}}
	var logs bytes.Buffer
	publisher := newPublisher(&fakeBuilder{}, ledger, nil)
	publisher.Logger = slog.New(slog.NewTextHandler(&logs, nil))

	outcome, err := publisher.Publish(context.Background(), dir, "testnet", PublishOptions{})
	require.NoError(t, err)
	assert.Equal(t, "0xlast", outcome.Result.PackageID)
	assert.Contains(t, logs.String(), "publish produced several packages")
}

func TestPublishValidation(t *testing.T) {
	publisher := newPublisher(&fakeBuilder{}, &fakeLedger{}, nil)
	_, err := publisher.Publish(context.Background(), "", "testnet", PublishOptions{})
	assert.Error(t, err)
	_, err = publisher.Publish(context.Background(), "/pkg", "", PublishOptions{})
	assert.Error(t, err)

	publisher.Signer = nil
	_, err = publisher.Publish(context.Background(), "/pkg", "testnet", PublishOptions{})
	assert.ErrorContains(t, err, "signer is required")

	_, err = (&Publisher{}).Publish(context.Background(), "/pkg", "testnet", PublishOptions{})
	assert.ErrorContains(t, err, "builder is required")
}

func TestPublishUsesLocker(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	locker := &recordingLocker{}
	publisher := newPublisher(&fakeBuilder{}, &fakeLedger{}, nil)
	publisher.Locker = locker

	_, err := publisher.Publish(context.Background(), dir, "testnet", PublishOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, locker.locked)
	assert.Equal(t, 1, locker.released)

	locker.err = errBoom
	_, err = publisher.Publish(context.Background(), dir, "testnet", PublishOptions{Enforce: true})
	assert.True(t, errors.Is(err, errBoom))
}

func TestPrepareUnsignedPublish(t *testing.T) {
	dir := writePackage(t, t.TempDir(), "pkg")
	ledger := &fakeLedger{}
	builder := &fakeBuilder{}

	encoded, err := newPublisher(builder, ledger, nil).Prepare(context.Background(), dir, testSender, build.Options{IncludeUnpublishedDependencies: true})
	require.NoError(t, err)
	assert.Equal(t, "dW5zaWduZWQ=", encoded)
	assert.Equal(t, []string{testSender}, ledger.serialized)
	assert.Empty(t, ledger.submitted)
	assert.True(t, builder.opts[0].IncludeUnpublishedDependencies)
}

type recordingLocker struct {
	locked   []string
	released int
	err      error
}

func (l *recordingLocker) Lock(_ context.Context, dir string) (func() error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, dir)
	return func() error {
		l.released++
		return nil
	}, nil
}
