package messages

// CLI messages for user-facing commands and prompts.
const (
	// RootUse is the CLI command name.
	RootUse = "suipkg"
	// RootShort is the short description for the root command.
	RootShort = "Publish and upgrade Sui Move packages across networks"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	FlagConfig      = "Path to a suipkg config file (toml, yaml or json)"
	FlagEnvFile     = "Path to a dotenv file with SUIPKG_* variables (default .env when present)"
	FlagNetwork     = "Target network (mainnet, testnet, devnet, localnet or a custom name)"
	FlagYes         = "Skip the confirmation prompt for mainnet deployments"
	FlagLogLevel    = "Log level (debug, info, warn, error)"
	FlagEnforce     = "Publish even when a network manifest already exists"
	FlagWriteVar    = "Write Move.<network>.toml after a successful publish"
	FlagArtifact    = "Write publish-result.<network>.json after a successful publish"
	FlagSkipFetch   = "Skip fetching the latest git dependencies while building"
	FlagUnpublished = "Include unpublished dependencies in the build"
	FlagUnsigned    = "Print unsigned base64 transaction bytes instead of submitting"
	FlagSender      = "Sender address used when building unsigned transactions"
	FlagPackageID   = "Id of the package being upgraded"
	FlagUpgradeCap  = "Id of the UpgradeCap that authorizes the upgrade"
	FlagDependency  = "Dependency package directory whose network manifest is swapped in before building (repeatable)"
	FlagPolicy      = "Upgrade policy (compatible, additive, dep_only)"
	FlagAddress     = "Resolved package address written into the network manifest"
	FlagDiffLines   = "Maximum number of diff lines to print"
	FlagGasBudget   = "Gas budget in MIST (0 uses the configured default)"

	PublishUse           = "publish <package-dir>"
	PublishShort         = "Publish a Move package unless it is already published on the network"
	BatchUse             = "batch <batch-file>"
	BatchShort           = "Publish an ordered batch of Move packages"
	UpgradeUse           = "upgrade <package-dir>"
	UpgradeShort         = "Upgrade a published Move package"
	ManifestUse          = "manifest"
	ManifestShort        = "Inspect and swap network manifests"
	ManifestApplyUse     = "apply <package-dir>"
	ManifestApplyShort   = "Swap Move.<network>.toml in as Move.toml (keeps a backup)"
	ManifestRevertUse    = "revert <package-dir>"
	ManifestRevertShort  = "Restore Move.toml from its backup"
	ManifestDiffUse      = "diff <package-dir>"
	ManifestDiffShort    = "Show the difference between Move.toml and Move.<network>.toml"
	ManifestShowUse      = "show <package-dir>"
	ManifestShowShort    = "Show the effective addresses of a package for the network"
	ManifestWriteVarUse  = "write-variant <package-dir>"
	ManifestWriteVarShrt = "Write Move.<network>.toml with every address set to --address"

	UnsignedRequiresSender = "--unsigned requires --sender"
	SenderInvalidFmt       = "--sender: %w"
	UpgradeRequiresIDs     = "upgrade requires --package-id and --upgrade-cap"
	AddressFlagRequired    = "write-variant requires --address"
	MainnetRequiresConfirm = "deploying to mainnet requires confirmation; re-run with --yes"
	MainnetConfirmFmt      = "Deploy %s to mainnet?"

	AlreadyPublishedFmt    = "Package already published on %s at path: %s\n"
	PublishSuccess         = "Successfully published package"
	UpgradeSuccessFmt      = "Successfully upgraded package at %s\n"
	CreatedObjectsHeader   = "==============Created objects=============="
	PackageInfoHeader      = "==============Package info=============="
	BatchSummaryHeader     = "==============Batch summary=============="
	ManifestAppliedFmt     = "Swapped %s into %s\n"
	ManifestRevertedFmt    = "Restored Move.toml in %s\n"
	ManifestVariantFmt     = "Wrote %s\n"
	ManifestNoDiffFmt      = "No differences between Move.toml and %s\n"
	EffectiveAddressesFmt  = "Effective addresses for %s on %s:\n"
	AddressLineFmt         = "  %s = %s\n"
	PublishedAtFmt         = "published-at = %s\n"
	UnsignedTxFmt          = "%s\n"

	ReportObjectFmt       = "%s\n  objectId: %s\n  owner: %s\n"
	ReportPackageIDFmt    = "packageId: %s\n"
	ReportUpgradeCapFmt   = "upgradeCapId: %s\n"
	ReportPublisherFmt    = "publisherId: %s\n"
	ReportDigestFmt       = "digest: %s\n"
	ReportBatchLineFmt    = "%d. %s: %s\n"
	ReportBatchSkipped    = "already published"
	ReportBatchNotRun     = "not run"
	ReportNoCreated       = "(none)"
	ReportBatchFailed     = "failed"
	ReportBatchStoppedFmt = "batch stopped after %d of %d packages"
)
