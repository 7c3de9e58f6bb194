package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestLifecycle(t *testing.T) {
	setupCLI(t)
	dir := writeMovePackage(t, t.TempDir(), "demo")
	live := filepath.Join(dir, "Move.toml")
	original := readText(t, live)

	out, err := runCLI(t, "manifest", "write-variant", dir, "--network", "testnet", "--address", "0xfeed")
	require.NoError(t, err)
	assert.Contains(t, out, "Move.testnet.toml")

	out, err = runCLI(t, "manifest", "diff", dir, "--network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "--- Move.toml")
	assert.Contains(t, out, "+++ Move.testnet.toml")
	assert.Contains(t, out, "-demo = \"0x0\"")
	assert.Contains(t, out, "published-at = \"0xfeed\"")

	out, err = runCLI(t, "manifest", "show", dir, "--network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "Effective addresses for demo on testnet:")
	assert.Contains(t, out, "demo = 0x0")
	assert.Contains(t, out, "published-at = 0xfeed")

	out, err = runCLI(t, "manifest", "apply", dir, "--network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "Swapped Move.testnet.toml into "+dir)
	assert.Contains(t, readText(t, live), "0xfeed")
	_, err = os.Stat(filepath.Join(dir, "Move.toml.bak"))
	assert.NoError(t, err)

	out, err = runCLI(t, "manifest", "diff", dir, "--network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "No differences between Move.toml and Move.testnet.toml")

	out, err = runCLI(t, "manifest", "revert", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Restored Move.toml in "+dir)
	assert.Equal(t, original, readText(t, live))
}

func TestManifestErrors(t *testing.T) {
	setupCLI(t)
	dir := writeMovePackage(t, t.TempDir(), "demo")

	_, err := runCLI(t, "manifest", "apply", dir, "--network", "mainnet")
	assert.ErrorContains(t, err, "Move.mainnet.toml not found")

	_, err = runCLI(t, "manifest", "write-variant", dir)
	assert.ErrorContains(t, err, "--address")

	_, err = runCLI(t, "manifest", "diff", dir)
	assert.Error(t, err)

	out, err := runCLI(t, "manifest", "show", dir, "--network", "devnet")
	require.NoError(t, err)
	assert.NotContains(t, out, "published-at")
}
