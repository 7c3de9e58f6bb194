// Package manifest reads and rewrites Move package manifests and swaps their
// network-scoped variants in and out of place.
package manifest

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

var (
	// ErrMissingNetworkManifest is returned when a swap needs Move.<network>.toml and it does not exist.
	ErrMissingNetworkManifest = errors.New("missing network manifest")
	// ErrInvalidManifest wraps TOML syntax and structure problems.
	ErrInvalidManifest = errors.New("invalid manifest")
)

const networkAddressesSuffix = "-addresses"

// Manifest is the parsed form of a Move.toml file.
type Manifest struct {
	Package         PackageSection    `toml:"package"`
	Dependencies    map[string]any    `toml:"dependencies"`
	DevDependencies map[string]any    `toml:"dev-dependencies"`
	Addresses       map[string]string `toml:"addresses"`
	DevAddresses    map[string]string `toml:"dev-addresses"`

	// NetworkAddresses holds the [<network>-addresses] override sections keyed by network.
	NetworkAddresses map[string]map[string]string `toml:"-"`
}

// PackageSection is the [package] table.
type PackageSection struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Edition     string `toml:"edition"`
	PublishedAt string `toml:"published-at"`
}

// Parse decodes manifest TOML. source is used in error messages.
func Parse(data []byte, source string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, err)
	}
	if strings.TrimSpace(m.Package.Name) == "" {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, messages.ManifestMissingPackageName)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, err)
	}
	overrides, err := networkSections(raw)
	if err != nil {
		return nil, fmt.Errorf(messages.ManifestInvalidFmt, ErrInvalidManifest, source, err)
	}
	m.NetworkAddresses = overrides
	return &m, nil
}

// networkSections extracts every [<network>-addresses] table except dev-addresses.
func networkSections(raw map[string]any) (map[string]map[string]string, error) {
	out := make(map[string]map[string]string)
	for key, value := range raw {
		if !strings.HasSuffix(key, networkAddressesSuffix) || key == "dev-addresses" {
			continue
		}
		network := strings.TrimSuffix(key, networkAddressesSuffix)
		if network == "" {
			continue
		}
		table, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf(messages.ManifestSectionNotTable, key)
		}
		addrs := make(map[string]string, len(table))
		for name, v := range table {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf(messages.ManifestAddressNotString, name, key)
			}
			addrs[name] = s
		}
		out[network] = addrs
	}
	return out, nil
}

// AddressesFor returns the address table with the [<network>-addresses] overrides applied.
func (m *Manifest) AddressesFor(network string) map[string]string {
	out := make(map[string]string, len(m.Addresses))
	for name, addr := range m.Addresses {
		out[name] = addr
	}
	for name, addr := range m.NetworkAddresses[network] {
		out[name] = addr
	}
	return out
}

// AddressNames returns the sorted logical address names.
func (m *Manifest) AddressNames() []string {
	names := make([]string, 0, len(m.Addresses))
	for name := range m.Addresses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SameAddressKeys reports whether both manifests declare the same logical address names.
func SameAddressKeys(a *Manifest, b *Manifest) bool {
	left := a.AddressNames()
	right := b.AddressNames()
	if len(left) != len(right) {
		return false
	}
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
