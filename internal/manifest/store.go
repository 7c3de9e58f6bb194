package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

const variantPerm os.FileMode = 0o644

// Store reads package manifests and writes their network variants.
type Store struct {
	sys System
}

// NewStore returns a Store backed by sys. A nil sys uses the OS filesystem.
func NewStore(sys System) *Store {
	if sys == nil {
		sys = RealSystem{}
	}
	return &Store{sys: sys}
}

// Load parses the live Move.toml in dir.
func (s *Store) Load(dir string) (*Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New(messages.ManifestDirRequired)
	}
	path := DefaultPaths(dir, "").Manifest
	data, err := s.sys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestFailedReadFmt, path, err)
	}
	return Parse(data, path)
}

// LoadVariant parses Move.<network>.toml in dir.
func (s *Store) LoadVariant(dir string, network string) (*Manifest, error) {
	paths := DefaultPaths(dir, network)
	data, err := s.sys.ReadFile(paths.Variant)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(messages.ManifestMissingNetworkFmt, ErrMissingNetworkManifest, VariantFileName(network), dir)
		}
		return nil, fmt.Errorf(messages.ManifestFailedReadFmt, paths.Variant, err)
	}
	return Parse(data, paths.Variant)
}

// HasVariant reports whether Move.<network>.toml exists in dir.
func (s *Store) HasVariant(dir string, network string) (bool, error) {
	if strings.TrimSpace(dir) == "" {
		return false, errors.New(messages.ManifestDirRequired)
	}
	if strings.TrimSpace(network) == "" {
		return false, errors.New(messages.ManifestNetworkRequired)
	}
	path := DefaultPaths(dir, network).Variant
	if _, err := s.sys.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf(messages.ManifestFailedStatFmt, path, err)
	}
	return true, nil
}

// WriteNetworkVariant writes Move.<network>.toml derived from the live manifest with
// package.published-at and every entry of [addresses] set to address.
// The live manifest is left untouched.
func (s *Store) WriteNetworkVariant(dir string, network string, address string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(messages.ManifestDirRequired)
	}
	if strings.TrimSpace(network) == "" {
		return "", errors.New(messages.ManifestNetworkRequired)
	}
	if strings.TrimSpace(address) == "" {
		return "", errors.New(messages.ManifestAddressRequired)
	}
	paths := DefaultPaths(dir, network)
	data, err := s.sys.ReadFile(paths.Manifest)
	if err != nil {
		return "", fmt.Errorf(messages.ManifestFailedReadFmt, paths.Manifest, err)
	}
	rendered, err := renderVariant(data, paths.Manifest, address)
	if err != nil {
		return "", err
	}
	if err := s.sys.WriteFileAtomic(paths.Variant, []byte(rendered), variantPerm); err != nil {
		return "", fmt.Errorf(messages.ManifestFailedWriteFmt, paths.Variant, err)
	}
	return paths.Variant, nil
}

// renderVariant rewrites manifest content so every logical address resolves to address.
func renderVariant(data []byte, source string, address string) (string, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return "", fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, err)
	}
	if !tree.Has("package") {
		return "", fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, messages.ManifestMissingPackage)
	}
	tree.SetPath([]string{"package", "published-at"}, address)

	if raw := tree.Get("addresses"); raw != nil {
		addresses, ok := raw.(*toml.Tree)
		if !ok {
			return "", fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, fmt.Sprintf(messages.ManifestSectionNotTable, "addresses"))
		}
		for _, name := range addresses.Keys() {
			tree.SetPath([]string{"addresses", name}, address)
		}
	}

	out, err := tree.ToTomlString()
	if err != nil {
		return "", fmt.Errorf(messages.ManifestSerializeFmt, source, err)
	}
	return out, nil
}
