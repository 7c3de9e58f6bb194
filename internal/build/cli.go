package build

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultBin is the sui binary looked up on PATH.
const DefaultBin = "sui"

// makeTempDir is a seam for tests.
var makeTempDir = os.MkdirTemp

// CLIBuilder runs `sui move build --dump-bytecode-as-base64` and decodes its JSON output.
type CLIBuilder struct {
	Bin    string
	Logger *slog.Logger
}

// NewCLIBuilder returns a builder for bin. An empty bin uses DefaultBin.
func NewCLIBuilder(bin string, logger *slog.Logger) *CLIBuilder {
	if strings.TrimSpace(bin) == "" {
		bin = DefaultBin
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CLIBuilder{Bin: bin, Logger: logger}
}

// Args returns the build command arguments for dir, excluding the binary.
func Args(dir string, installDir string, opts Options) []string {
	args := []string{"move", "build", "--dump-bytecode-as-base64", "--path", dir}
	if opts.SkipDependencyFetch {
		args = append(args, "--skip-fetch-latest-git-deps")
	}
	if opts.IncludeUnpublishedDependencies {
		args = append(args, "--with-unpublished-dependencies")
	}
	return append(args, "--install-dir", installDir)
}

// Build compiles dir into a temporary install directory that is removed afterwards.
func (b *CLIBuilder) Build(ctx context.Context, dir string, opts Options) (*Artifact, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New(messages.BuildDirRequired)
	}
	if strings.TrimSpace(b.Bin) == "" {
		return nil, errors.New(messages.BuildBinRequired)
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	installDir, err := makeTempDir("", "suipkg-build-")
	if err != nil {
		return nil, fmt.Errorf(messages.BuildTempDirFmt, err)
	}
	defer func() { _ = os.RemoveAll(installDir) }()

	args := Args(dir, installDir, opts)
	logger.Info("building package", "dir", dir, "cmd", b.Bin+" "+strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.Bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		logger.Error("build failed", "dir", dir, "err", err)
		return nil, &BuildError{Dir: dir, Output: combineOutput(stdout.String(), stderr.String()), Err: err}
	}

	artifact, err := DecodeOutput(stdout.Bytes())
	if err != nil {
		return nil, &BuildError{Dir: dir, Output: combineOutput(stdout.String(), stderr.String()), Err: fmt.Errorf(messages.BuildDecodeFmt, dir, err)}
	}
	logger.Info("build succeeded", "dir", dir, "modules", len(artifact.Modules), "dependencies", len(artifact.Dependencies))
	return artifact, nil
}

type buildOutput struct {
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Digest       []int    `json:"digest"`
}

// DecodeOutput parses the JSON document printed by --dump-bytecode-as-base64.
// Lines printed before the JSON object are ignored.
func DecodeOutput(data []byte) (*Artifact, error) {
	start := bytes.IndexByte(data, '{')
	if start < 0 {
		return nil, errors.New(messages.BuildNoJSONOutput)
	}
	var out buildOutput
	if err := json.Unmarshal(data[start:], &out); err != nil {
		return nil, err
	}
	if len(out.Modules) == 0 {
		return nil, errors.New(messages.BuildNoModules)
	}

	modules := make([][]byte, 0, len(out.Modules))
	for i, encoded := range out.Modules {
		module, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf(messages.BuildModuleDecodeFmt, i, err)
		}
		modules = append(modules, module)
	}
	digest := make([]byte, 0, len(out.Digest))
	for i, v := range out.Digest {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf(messages.BuildDigestByteFmt, i, v)
		}
		digest = append(digest, byte(v))
	}
	deps := out.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return &Artifact{Modules: modules, Dependencies: deps, Digest: digest}, nil
}

func combineOutput(stdout string, stderr string) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(stdout); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(stderr); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n")
}
