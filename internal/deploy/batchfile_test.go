package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scallop-io/sui-package-kit/internal/build"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBatchFile(t *testing.T) {
	path := writeBatchFile(t, `network: testnet
packages:
  - path: ./package_b
    enforce: true
    artifact: false
    with_unpublished_deps: true
  - path: /abs/package_a
`)
	file, err := LoadBatchFile(path)
	require.NoError(t, err)
	assert.Equal(t, "testnet", file.Network)

	entries := file.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "package_b"), entries[0].Path)
	assert.Equal(t, "/abs/package_a", entries[1].Path)
	assert.Nil(t, entries[1].Option)

	resolved := entries[0].Option.Resolve(DefaultBatchOptions)
	assert.True(t, resolved.Enforce)
	assert.True(t, resolved.WriteNetworkVariant)
	assert.Nil(t, resolved.ResultParser)
	assert.Equal(t, build.Options{SkipDependencyFetch: true, IncludeUnpublishedDependencies: true}, resolved.Build)
}

func TestLoadBatchFileErrors(t *testing.T) {
	_, err := LoadBatchFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read batch file")

	_, err = LoadBatchFile(writeBatchFile(t, "packages: [\n"))
	assert.ErrorContains(t, err, "decode batch file")

	_, err = LoadBatchFile(writeBatchFile(t, "network: devnet\n"))
	assert.ErrorContains(t, err, "lists no packages")

	_, err = LoadBatchFile(writeBatchFile(t, "packages:\n  - enforce: true\n"))
	assert.ErrorContains(t, err, "package 0 has no path")
}
