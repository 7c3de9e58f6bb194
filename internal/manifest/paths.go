package manifest

import "path/filepath"

const (
	// FileName is the live manifest read by the Move builder.
	FileName = "Move.toml"
	// BackupFileName holds the live manifest while a network variant is swapped in.
	BackupFileName = "Move.toml.bak"
)

// VariantFileName returns the file name of the network-scoped manifest.
func VariantFileName(network string) string {
	return "Move." + network + ".toml"
}

// Paths holds the manifest file locations of one package directory.
type Paths struct {
	Dir      string
	Manifest string
	Backup   string
	Variant  string
}

// DefaultPaths returns the manifest paths of dir for network.
func DefaultPaths(dir string, network string) Paths {
	return Paths{
		Dir:      dir,
		Manifest: filepath.Join(dir, FileName),
		Backup:   filepath.Join(dir, BackupFileName),
		Variant:  filepath.Join(dir, VariantFileName(network)),
	}
}
