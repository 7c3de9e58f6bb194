package messages

// Manifest and swap messages.
const (
	ManifestDirRequired        = "package directory is required"
	ManifestNetworkRequired    = "network is required"
	ManifestAddressRequired    = "resolved address is required"
	ManifestSystemRequired     = "manifest system is required"
	ManifestMissingNetworkFmt  = "%w: %s not found in %s"
	ManifestFailedReadFmt      = "failed to read %s: %w"
	ManifestFailedWriteFmt     = "failed to write %s: %w"
	ManifestFailedStatFmt      = "failed to stat %s: %w"
	ManifestFailedRemoveFmt    = "failed to remove %s: %w"
	ManifestInvalidFmt         = "%w: %s: %v"
	ManifestMissingPackageName = "package.name is required"
	ManifestMissingPackage     = "missing [package] section"
	ManifestAddressNotString   = "address %q in [%s] must be a string"
	ManifestSectionNotTable    = "section [%s] must be a table"
	ManifestSerializeFmt       = "serialize network manifest for %s: %w"
	ManifestRevertFailedFmt    = "revert manifest in %s: %w"

	ManifestDiffTruncatedFmt = "... (truncated to %d lines; rerun with --diff-lines <n> to see more)"
)
