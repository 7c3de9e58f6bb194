package manifest

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const variantManifest = `[package]
name = "package_a"
published-at = "0xabc"

[addresses]
package_a = "0xabc"
helper = "0xabc"
`

func writeVariant(t *testing.T, dir string, network string, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, VariantFileName(network)), []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestApplyRevert_RoundTrip(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "testnet", variantManifest)
	swapper := NewSwapper(nil, nil)

	require.NoError(t, swapper.Apply(dir, "testnet"))
	assert.Equal(t, variantManifest, readFile(t, filepath.Join(dir, FileName)))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, BackupFileName)))

	require.NoError(t, swapper.Revert(dir))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, FileName)))
	_, err := os.Stat(filepath.Join(dir, BackupFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestApply_RepeatedKeepsLastBackup(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "testnet", variantManifest)
	swapper := NewSwapper(nil, nil)

	require.NoError(t, swapper.Apply(dir, "testnet"))
	require.NoError(t, swapper.Apply(dir, "testnet"))

	// The second apply snapshots the already swapped manifest.
	require.NoError(t, swapper.Revert(dir))
	assert.Equal(t, variantManifest, readFile(t, filepath.Join(dir, FileName)))
	require.NoError(t, swapper.Revert(dir))
	assert.Equal(t, variantManifest, readFile(t, filepath.Join(dir, FileName)))
}

func TestRevert_NoBackupIsNoop(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	swapper := NewSwapper(nil, nil)

	require.NoError(t, swapper.Revert(dir))
	require.NoError(t, swapper.Revert(dir))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, FileName)))

	require.NoError(t, swapper.Revert(filepath.Join(dir, "gone")))
}

func TestApply_MissingVariant(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	swapper := NewSwapper(nil, nil)

	err := swapper.Apply(dir, "mainnet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingNetworkManifest))
	assert.Contains(t, err.Error(), "Move.mainnet.toml not found in")

	_, statErr := os.Stat(filepath.Join(dir, BackupFileName))
	assert.True(t, os.IsNotExist(statErr))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, FileName)))
}

func TestApply_RequiresArguments(t *testing.T) {
	swapper := NewSwapper(nil, nil)
	assert.Error(t, swapper.Apply("", "testnet"))
	assert.Error(t, swapper.Apply(t.TempDir(), ""))
	assert.Error(t, swapper.Revert(""))
}

func TestApply_FailureAfterBackupIsRecoverable(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "testnet", variantManifest)
	sys := &failingSystem{RealSystem: RealSystem{}, failWrite: filepath.Join(dir, FileName)}
	swapper := NewSwapper(sys, nil)

	err := swapper.Apply(dir, "testnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write")
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, BackupFileName)))

	require.NoError(t, NewSwapper(nil, nil).Revert(dir))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, FileName)))
}

func TestApply_WarnsOnAddressDrift(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "devnet", "[package]\nname = \"package_a\"\n[addresses]\npackage_a = \"0x1\"\n")
	var buf bytes.Buffer
	swapper := NewSwapper(nil, slog.New(slog.NewTextHandler(&buf, nil)))

	require.NoError(t, swapper.Apply(dir, "devnet"))
	assert.Contains(t, buf.String(), "network manifest declares different addresses")
}

func TestSession_CloseRevertsTrackedOnce(t *testing.T) {
	first := writePackage(t, sampleManifest)
	second := writePackage(t, sampleManifest)
	writeVariant(t, first, "testnet", variantManifest)
	swapper := NewSwapper(nil, nil)

	session := swapper.NewSession("testnet")
	require.NoError(t, session.Apply(first))
	err := session.Apply(second)
	require.Error(t, err)
	session.Track(first)

	assert.Equal(t, []string{first, second}, session.Dirs())
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(first, FileName)))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(second, FileName)))
}

func TestSession_ApplyTwiceKeepsOriginalBackup(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "testnet", variantManifest)
	session := NewSwapper(nil, nil).NewSession("testnet")

	require.NoError(t, session.Apply(dir))
	require.NoError(t, session.Apply(filepath.Join(dir, ".")))
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, BackupFileName)))
	assert.Equal(t, []string{dir}, session.Dirs())

	require.NoError(t, session.Close())
	assert.Equal(t, sampleManifest, readFile(t, filepath.Join(dir, FileName)))
}

func TestSession_CloseJoinsErrors(t *testing.T) {
	dir := writePackage(t, sampleManifest)
	writeVariant(t, dir, "testnet", variantManifest)
	sys := &failingSystem{RealSystem: RealSystem{}}
	swapper := NewSwapper(sys, nil)

	session := swapper.NewSession("testnet")
	require.NoError(t, session.Apply(dir))
	sys.failWrite = filepath.Join(dir, FileName)

	err := session.Close()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "revert manifest in"))
}

type failingSystem struct {
	RealSystem
	failWrite string
}

func (f *failingSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if f.failWrite != "" && filename == f.failWrite {
		return errors.New("disk full")
	}
	return f.RealSystem.WriteFileAtomic(filename, data, perm)
}
