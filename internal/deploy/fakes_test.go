package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scallop-io/sui-package-kit/internal/build"
	"github.com/scallop-io/sui-package-kit/internal/manifest"
	"github.com/scallop-io/sui-package-kit/internal/sui"
)

const testSender = "0x00000000000000000000000000000000000000000000000000000000000000a1"

type fakeSigner struct{}

func (fakeSigner) Address() string { return testSender }

func (fakeSigner) SignTransaction([]byte) (string, error) { return "sig", nil }

type fakeBuilder struct {
	mu      sync.Mutex
	dirs    []string
	opts    []build.Options
	onBuild func(dir string) error
}

func (b *fakeBuilder) Build(_ context.Context, dir string, opts build.Options) (*build.Artifact, error) {
	b.mu.Lock()
	b.dirs = append(b.dirs, dir)
	b.opts = append(b.opts, opts)
	b.mu.Unlock()
	if b.onBuild != nil {
		if err := b.onBuild(dir); err != nil {
			return nil, err
		}
	}
	return &build.Artifact{
		Modules:      [][]byte{{0xa1, 0x1c}},
		Dependencies: []string{"0x1", "0x2"},
		Digest:       []byte{1, 2, 3},
	}, nil
}

type fakeLedger struct {
	mu         sync.Mutex
	submitted  []*sui.ProgrammableTransaction
	opts       []sui.SubmitOptions
	respond    func(n int) (*sui.TransactionResponse, error)
	serialized []string
}

func (l *fakeLedger) Submit(_ context.Context, tx *sui.ProgrammableTransaction, _ sui.Signer, opts sui.SubmitOptions) (*sui.TransactionResponse, error) {
	l.mu.Lock()
	l.submitted = append(l.submitted, tx)
	l.opts = append(l.opts, opts)
	n := len(l.submitted)
	l.mu.Unlock()
	if l.respond == nil {
		return publishedResponse(n), nil
	}
	return l.respond(n)
}

func (l *fakeLedger) Serialize(_ context.Context, _ *sui.ProgrammableTransaction, sender string, _ uint64) (string, error) {
	l.serialized = append(l.serialized, sender)
	return "dW5zaWduZWQ=", nil
}

func successEffects() *sui.TransactionEffects {
	return &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: "success"}}
}

func packageID(n int) string {
	return fmt.Sprintf("0x%064x", 0xb00+n)
}

func publishedResponse(n int) *sui.TransactionResponse {
	return &sui.TransactionResponse{
		Digest:  fmt.Sprintf("digest-%d", n),
		Effects: successEffects(),
		ObjectChanges: []sui.ObjectChange{
			sui.PublishedChange{PackageID: packageID(n)},
			sui.CreatedChange{Sender: testSender, Owner: sui.AddressOwner{Address: testSender}, ObjectType: "0x2::package::UpgradeCap", ObjectID: "0xcap"},
			sui.CreatedChange{Sender: testSender, Owner: sui.AddressOwner{Address: testSender}, ObjectType: "0x2::package::Publisher", ObjectID: "0xpub"},
		},
	}
}

func failedResponse() *sui.TransactionResponse {
	return &sui.TransactionResponse{
		Digest:        "bad",
		Effects:       &sui.TransactionEffects{Status: sui.ExecutionStatus{Status: "failure", Error: "InsufficientGas"}},
		ObjectChanges: []sui.ObjectChange{},
	}
}

type recordingWriter struct {
	docs []map[string]any
	dirs []string
	err  error
}

func (w *recordingWriter) Write(_ context.Context, dir string, _ string, doc map[string]any) error {
	w.dirs = append(w.dirs, dir)
	w.docs = append(w.docs, doc)
	return w.err
}

func writePackage(t *testing.T, root string, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := []byte("[package]\nname = \"" + name + "\"\n\n[addresses]\n" + name + " = \"0x0\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifest.FileName), content, 0o644))
	return dir
}

func readManifest(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, manifest.FileName))
	require.NoError(t, err)
	return string(data)
}

func newPublisher(builder *fakeBuilder, ledger *fakeLedger, results ResultWriter) *Publisher {
	return &Publisher{
		Builder:   builder,
		Ledger:    ledger,
		Manifests: manifest.NewStore(nil),
		Signer:    fakeSigner{},
		Results:   results,
	}
}

var errBoom = errors.New("boom")
