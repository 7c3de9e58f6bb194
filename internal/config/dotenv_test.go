package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetForTest clears key for the test and restores it afterwards.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDotEnv(t *testing.T) {
	unsetForTest(t, "SUIPKG_SECRET_KEY")
	t.Setenv("SUIPKG_NETWORK", "devnet")
	path := writeConfig(t, ".env", "# deploy key\nSUIPKG_SECRET_KEY=\"c2VjcmV0\"\nSUIPKG_NETWORK=mainnet\n")

	require.NoError(t, LoadDotEnv(path, true))
	assert.Equal(t, "c2VjcmV0", os.Getenv("SUIPKG_SECRET_KEY"))
	assert.Equal(t, "devnet", os.Getenv("SUIPKG_NETWORK"))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "c2VjcmV0", cfg.SecretKey)
	assert.Equal(t, "devnet", cfg.Network)
}

func TestLoadDotEnvMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), ".env")
	assert.NoError(t, LoadDotEnv(missing, false))
	assert.ErrorContains(t, LoadDotEnv(missing, true), "load env file")
}
