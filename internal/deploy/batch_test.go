package deploy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/testutil"
)

func newSequencer(builder *fakeBuilder, ledger *fakeLedger, results ResultWriter) *Sequencer {
	return &Sequencer{
		Publisher: newPublisher(builder, ledger, results),
		Swapper:   manifest.NewSwapper(nil, nil),
	}
}

func TestPublishBatchSwapsEarlierPackagesForLaterBuilds(t *testing.T) {
	root := t.TempDir()
	base := writePackage(t, root, "base")
	app := writePackage(t, root, "app")
	baseBefore := readManifest(t, base)
	appBefore := readManifest(t, app)

	var baseDuringAppBuild string
	builder := &fakeBuilder{onBuild: func(dir string) error {
		if dir == app {
			baseDuringAppBuild = readManifest(t, base)
		}
		return nil
	}}
	writer := &recordingWriter{}

	results, err := newSequencer(builder, &fakeLedger{}, writer).PublishBatch(context.Background(), []BatchEntry{{Path: base}, {Path: app}}, "testnet")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, packageID(1), results[0].Outcome.Result.PackageID)
	assert.Equal(t, packageID(2), results[1].Outcome.Result.PackageID)

	assert.Contains(t, baseDuringAppBuild, packageID(1))
	assert.Equal(t, baseBefore, readManifest(t, base))
	assert.Equal(t, appBefore, readManifest(t, app))
	for _, dir := range []string{base, app} {
		_, statErr := os.Stat(filepath.Join(dir, manifest.BackupFileName))
		assert.True(t, os.IsNotExist(statErr))
		_, statErr = os.Stat(filepath.Join(dir, "Move.testnet.toml"))
		assert.NoError(t, statErr)
	}

	assert.Equal(t, []string{base, app}, writer.dirs)
	assert.Equal(t, map[string]any{"packageId": packageID(1), "upgradeCapId": "0xcap", "publisherIds": []string{"0xpub"}}, writer.docs[0])
	assert.Equal(t, []build.Options{PublishBuildOptions, PublishBuildOptions}, builder.opts)
}

func TestPublishBatchFailureRestoresEveryManifest(t *testing.T) {
	root := t.TempDir()
	dirs := []string{writePackage(t, root, "a"), writePackage(t, root, "b"), writePackage(t, root, "c"), writePackage(t, root, "d")}
	before := make([]string, len(dirs))
	for i, dir := range dirs {
		before[i] = readManifest(t, dir)
	}

	builder := &fakeBuilder{onBuild: func(dir string) error {
		if dir == dirs[2] {
			return &build.BuildError{Dir: dir, Output: "error[E01001]", Err: errBoom}
		}
		return nil
	}}
	entries := make([]BatchEntry, 0, len(dirs))
	for _, dir := range dirs {
		entries = append(entries, BatchEntry{Path: dir})
	}

	results, err := newSequencer(builder, &fakeLedger{}, nil).PublishBatch(context.Background(), entries, "devnet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, build.ErrBuildFailed))
	assert.True(t, strings.HasPrefix(err.Error(), "batch entry 2"))
	assert.Len(t, results, 2)
	assert.Equal(t, []string{dirs[0], dirs[1], dirs[2]}, builder.dirs)

	for i, dir := range dirs {
		assert.Equal(t, before[i], readManifest(t, dir), dir)
		_, statErr := os.Stat(filepath.Join(dir, manifest.BackupFileName))
		assert.True(t, os.IsNotExist(statErr), dir)
	}
}

func TestPublishBatchSwapFailureStopsAndRestores(t *testing.T) {
	root := t.TempDir()
	first := writePackage(t, root, "first")
	second := writePackage(t, root, "second")
	before := readManifest(t, first)

	// Without a written variant the post-publish swap cannot happen.
	entries := []BatchEntry{{Path: first, Option: &BatchOption{WriteNetworkVariant: testutil.BoolPtr(false)}}, {Path: second}}
	builder := &fakeBuilder{}

	_, err := newSequencer(builder, &fakeLedger{}, nil).PublishBatch(context.Background(), entries, "testnet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, manifest.ErrMissingNetworkManifest))
	assert.Equal(t, []string{first}, builder.dirs)
	assert.Equal(t, before, readManifest(t, first))
}

func TestPublishBatchAlreadyPublishedEntryIsSwapped(t *testing.T) {
	root := t.TempDir()
	base := writePackage(t, root, "base")
	app := writePackage(t, root, "app")
	_, err := manifest.NewStore(nil).WriteNetworkVariant(base, "testnet", "0xfeed")
	require.NoError(t, err)

	var seen string
	builder := &fakeBuilder{onBuild: func(dir string) error {
		seen = readManifest(t, base)
		return nil
	}}
	results, err := newSequencer(builder, &fakeLedger{}, nil).PublishBatch(context.Background(), []BatchEntry{{Path: base}, {Path: app}}, "testnet")
	require.NoError(t, err)
	assert.True(t, results[0].Outcome.AlreadyPublished)
	assert.Equal(t, []string{app}, builder.dirs)
	assert.Contains(t, seen, "0xfeed")
}

func TestPublishBatchLocksEveryEntryOnce(t *testing.T) {
	root := t.TempDir()
	a := writePackage(t, root, "a")
	b := writePackage(t, root, "b")
	seq := newSequencer(&fakeBuilder{}, &fakeLedger{}, nil)
	locker := &recordingLocker{}
	seq.Publisher.Locker = locker

	_, err := seq.PublishBatch(context.Background(), []BatchEntry{{Path: a}, {Path: b}}, "testnet")
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, locker.locked)
	assert.Equal(t, 2, locker.released)
	assert.NotNil(t, seq.Publisher.Locker)
}

func TestPublishBatchDuplicateEntryRestoresManifest(t *testing.T) {
	a := writePackage(t, t.TempDir(), "a")
	before := readManifest(t, a)
	builder := &fakeBuilder{}
	seq := newSequencer(builder, &fakeLedger{}, nil)
	locker := &recordingLocker{}
	seq.Publisher.Locker = locker

	results, err := seq.PublishBatch(context.Background(), []BatchEntry{{Path: a}, {Path: a}}, "testnet")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[1].Outcome.AlreadyPublished)
	assert.Equal(t, []string{a}, builder.dirs)

	assert.Equal(t, before, readManifest(t, a))
	_, statErr := os.Stat(filepath.Join(a, manifest.BackupFileName))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, []string{a}, locker.locked)
	assert.Equal(t, 1, locker.released)
}

func TestPublishBatchValidation(t *testing.T) {
	_, err := (&Sequencer{}).PublishBatch(context.Background(), nil, "testnet")
	assert.Error(t, err)
	_, err = (&Sequencer{Publisher: &Publisher{}}).PublishBatch(context.Background(), nil, "testnet")
	assert.ErrorContains(t, err, "swapper is required")
}

func TestBatchOptionResolve(t *testing.T) {
	var nilOpt *BatchOption
	assert.Equal(t, false, nilOpt.Resolve(DefaultBatchOptions).Enforce)
	assert.True(t, nilOpt.Resolve(DefaultBatchOptions).WriteNetworkVariant)
	assert.NotNil(t, nilOpt.Resolve(DefaultBatchOptions).ResultParser)

	opt := &BatchOption{Enforce: testutil.BoolPtr(true)}
	resolved := opt.Resolve(DefaultBatchOptions)
	assert.True(t, resolved.Enforce)
	assert.True(t, resolved.WriteNetworkVariant)
	assert.NotNil(t, resolved.ResultParser)
	assert.Equal(t, PublishBuildOptions, resolved.Build)

	opt = &BatchOption{WriteNetworkVariant: testutil.BoolPtr(false), WriteResult: testutil.BoolPtr(false), Build: &build.Options{IncludeUnpublishedDependencies: true}}
	resolved = opt.Resolve(DefaultBatchOptions)
	assert.False(t, resolved.Enforce)
	assert.False(t, resolved.WriteNetworkVariant)
	assert.Nil(t, resolved.ResultParser)
	assert.Equal(t, build.Options{IncludeUnpublishedDependencies: true}, resolved.Build)
}
