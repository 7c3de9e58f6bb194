package deploy

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// BatchFile is the YAML description of a batch.
type BatchFile struct {
	Network  string           `yaml:"network"`
	Packages []BatchFileEntry `yaml:"packages"`

	// dir is the directory package paths are relative to.
	dir string
}

// BatchFileEntry is one package in a batch file. Omitted fields inherit the batch defaults.
type BatchFileEntry struct {
	Path                string `yaml:"path"`
	Enforce             *bool  `yaml:"enforce"`
	WriteVariant        *bool  `yaml:"write_variant"`
	Artifact            *bool  `yaml:"artifact"`
	SkipFetchDeps       *bool  `yaml:"skip_fetch_deps"`
	WithUnpublishedDeps *bool  `yaml:"with_unpublished_deps"`
}

// LoadBatchFile reads a YAML batch file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.DeployBatchFileReadFmt, path, err)
	}
	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf(messages.DeployBatchFileDecodeFmt, path, err)
	}
	if len(file.Packages) == 0 {
		return nil, fmt.Errorf(messages.DeployBatchFileEmptyFmt, path)
	}
	for i, pkg := range file.Packages {
		if strings.TrimSpace(pkg.Path) == "" {
			return nil, fmt.Errorf(messages.DeployBatchFilePathFmt, path, i)
		}
	}
	file.dir = filepath.Dir(path)
	return &file, nil
}

// Entries converts the file into batch entries with paths resolved against the file.
func (f *BatchFile) Entries() []BatchEntry {
	entries := make([]BatchEntry, 0, len(f.Packages))
	for _, pkg := range f.Packages {
		path := pkg.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(f.dir, path)
		}
		entries = append(entries, BatchEntry{Path: path, Option: pkg.option()})
	}
	return entries
}

func (e BatchFileEntry) option() *BatchOption {
	if e.Enforce == nil && e.WriteVariant == nil && e.Artifact == nil && e.SkipFetchDeps == nil && e.WithUnpublishedDeps == nil {
		return nil
	}
	opt := &BatchOption{
		Enforce:             e.Enforce,
		WriteNetworkVariant: e.WriteVariant,
		WriteResult:         e.Artifact,
	}
	if e.SkipFetchDeps != nil || e.WithUnpublishedDeps != nil {
		b := DefaultBatchOptions.Build
		if e.SkipFetchDeps != nil {
			b.SkipDependencyFetch = *e.SkipFetchDeps
		}
		if e.WithUnpublishedDeps != nil {
			b.IncludeUnpublishedDependencies = *e.WithUnpublishedDeps
		}
		opt.Build = &b
	}
	return opt
}
