// Package build compiles Move packages into publishable bytecode.
package build

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// ErrBuildFailed is wrapped by every compilation failure.
var ErrBuildFailed = errors.New("build failed")

// Options controls dependency handling during a build.
type Options struct {
	// SkipDependencyFetch skips fetching the latest git dependencies.
	SkipDependencyFetch bool
	// IncludeUnpublishedDependencies bundles dependencies that are not published yet.
	IncludeUnpublishedDependencies bool
}

// DefaultOptions are the options used for upgrades and plain publishes.
var DefaultOptions = Options{IncludeUnpublishedDependencies: true}

// Artifact is the compiled output of one package.
type Artifact struct {
	Modules      [][]byte
	Dependencies []string
	Digest       []byte
}

// Builder compiles the package in dir.
type Builder interface {
	Build(ctx context.Context, dir string, opts Options) (*Artifact, error)
}

// BuildError carries the compiler output of a failed build.
type BuildError struct {
	Dir    string
	Output string
	Err    error
}

// Error formats the failure with the captured compiler output.
func (e *BuildError) Error() string {
	output := strings.TrimSpace(e.Output)
	if output == "" {
		return fmt.Sprintf(messages.BuildErrorNoOutputFmt, e.Dir, e.Err)
	}
	return fmt.Sprintf(messages.BuildErrorFmt, e.Dir, e.Err, output)
}

// Unwrap returns ErrBuildFailed and the underlying cause.
func (e *BuildError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBuildFailed}
	}
	return []error{ErrBuildFailed, e.Err}
}

// IsBuildError reports whether err is a *BuildError.
func IsBuildError(err error) bool {
	var target *BuildError
	return errors.As(err, &target)
}
