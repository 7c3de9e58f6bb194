package main

// NOTE: Tests in this package replace package-level seams (newLedger, newPrompter,
// newObjectStore). Do not use t.Parallel(); every test restores seams via t.Cleanup().

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/scallop-io/sui-package-kit/internal/config"
	"github.com/scallop-io/sui-package-kit/internal/deploy"
	"github.com/scallop-io/sui-package-kit/internal/sui"
	"github.com/scallop-io/sui-package-kit/internal/testutil"
)

const buildJSON = `{"modules":["oRzrCwYAAAAK"],"dependencies":["0x1","0x2"],"digest":[1,2,3]}`

type cliLedger struct {
	mu         sync.Mutex
	submitted  []*sui.ProgrammableTransaction
	opts       []sui.SubmitOptions
	respond    func(n int) *sui.TransactionResponse
	serialized []string
}

func (l *cliLedger) Submit(_ context.Context, tx *sui.ProgrammableTransaction, signer sui.Signer, opts sui.SubmitOptions) (*sui.TransactionResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitted = append(l.submitted, tx)
	l.opts = append(l.opts, opts)
	n := len(l.submitted)
	if l.respond != nil {
		return l.respond(n), nil
	}
	return publishResponse(n, signer.Address()), nil
}

func (l *cliLedger) Serialize(_ context.Context, _ *sui.ProgrammableTransaction, sender string, _ uint64) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.serialized = append(l.serialized, sender)
	return "dW5zaWduZWQ=", nil
}

func cliPackageID(n int) string {
	return fmt.Sprintf("0x%064x", 0xabc0+n)
}

func publishResponse(n int, sender string) *sui.TransactionResponse {
	return &sui.TransactionResponse{
		Digest:  fmt.Sprintf("tx-%d", n),
		Effects: &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: "success"}},
		ObjectChanges: []sui.ObjectChange{
			sui.PublishedChange{PackageID: cliPackageID(n), Modules: []string{"demo"}},
			sui.CreatedChange{Sender: sender, Owner: sui.AddressOwner{Address: sender}, ObjectType: "0x2::package::UpgradeCap", ObjectID: "0xcap"},
			sui.CreatedChange{Sender: sender, Owner: sui.SharedOwner{InitialSharedVersion: 3}, ObjectType: cliPackageID(n) + "::demo::Registry", ObjectID: "0xregistry"},
		},
	}
}

func stubLedger(t *testing.T, ledger *cliLedger) {
	t.Helper()
	orig := newLedger
	newLedger = func(*config.Config, *slog.Logger) (deploy.LedgerClient, error) { return ledger, nil }
	t.Cleanup(func() { newLedger = orig })
}

type fixedConfirmer struct {
	answer bool
	titles *[]string
}

func (c fixedConfirmer) Confirm(title string, _ bool) (bool, error) {
	if c.titles != nil {
		*c.titles = append(*c.titles, title)
	}
	return c.answer, nil
}

func stubPrompter(t *testing.T, answer bool) *[]string {
	t.Helper()
	var titles []string
	orig := newPrompter
	newPrompter = func(*cobra.Command) confirmer { return fixedConfirmer{answer: answer, titles: &titles} }
	t.Cleanup(func() { newPrompter = orig })
	return &titles
}

// setupCLI points suipkg at a stub sui binary and a throwaway key and returns the stub path.
func setupCLI(t *testing.T) string {
	t.Helper()
	stub := testutil.WriteStubOutput(t, t.TempDir(), "sui", buildJSON, 0)
	t.Setenv("SUIPKG_SUI_BIN", stub)
	t.Setenv("SUIPKG_SECRET_KEY", strings.Repeat("01", 32))
	t.Setenv("TMPDIR", t.TempDir())
	return stub
}

func writeMovePackage(t *testing.T, root string, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := fmt.Sprintf("[package]\nname = %q\nedition = \"2024.beta\"\n\n[addresses]\n%s = \"0x0\"\n", name, name)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Move.toml"), []byte(content), 0o644))
	return dir
}

func readText(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := execute(append([]string{"suipkg"}, args...), &out, &errOut)
	return out.String(), err
}
