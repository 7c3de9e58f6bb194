package messages

// Deploy orchestration messages.
const (
	DeployDirRequired          = "package directory is required"
	DeployNetworkRequired      = "network is required"
	DeployBuilderRequired      = "builder is required"
	DeployLedgerRequired       = "ledger client is required"
	DeployManifestsRequired    = "manifest store is required"
	DeploySwapperRequired      = "manifest swapper is required"
	DeploySignerRequired       = "signer is required"
	DeployPublisherRequired    = "publisher is required"
	DeployUpgradeIDsRequired   = "package id and upgrade cap id are required"
	DeployTxFailedFmt          = "%s failed for %s"
	DeployTxFailedDigestFmt    = " (digest %s)"
	DeployTxFailedReasonFmt    = ": %s"
	DeployCheckVariantFmt      = "check network manifest for %s: %w"
	DeployBuildFmt             = "build %s: %w"
	DeployTransactionFmt       = "create %s transaction for %s: %w"
	DeploySubmitFmt            = "submit %s for %s: %w"
	DeployClassifyFmt          = "classify %s effects for %s: %w"
	DeployWriteVariantFmt      = "write network manifest for %s: %w"
	DeployWriteResultFmt       = "write publish result for %s: %w"
	DeployBatchEntryFmt        = "batch entry %d (%s): %w"
	DeploySwapDependencyFmt    = "swap dependency %s: %w"
	DeploySwapPublishedFmt     = "swap published package %s: %w"
	DeployLockFmt              = "lock %s: %w"
	DeployBatchFileReadFmt     = "read batch file %s: %w"
	DeployBatchFileDecodeFmt   = "decode batch file %s: %w"
	DeployBatchFileEmptyFmt    = "batch file %s lists no packages"
	DeployBatchFilePathFmt     = "batch file %s: package %d has no path"
	DeployUnresolvedAddressFmt = "resolve address for %s: %w"
)
