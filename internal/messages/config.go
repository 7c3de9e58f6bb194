package messages

// Configuration messages.
const (
	ConfigReadFmt             = "read config file %s: %w"
	ConfigDecodeFmt           = "decode config: %w"
	ConfigInvalidFmt          = "%w: %s"
	ConfigNetworkRequired     = "network is required"
	ConfigSuiBinRequired      = "sui_bin is required"
	ConfigGasBudgetRequired   = "gas_budget must be positive"
	ConfigUnknownLogLevelFmt  = "unknown log.level %q (expected debug, info, warn or error)"
	ConfigUnknownLogFormatFmt = "unknown log.format %q (expected text or json)"
	ConfigLockTimeoutNegative = "lock_timeout must not be negative"
	ConfigS3EndpointRequired  = "artifacts.s3.endpoint is required when artifacts.s3.enabled is true"
	ConfigS3BucketRequired    = "artifacts.s3.bucket is required when artifacts.s3.enabled is true"
	ConfigKeystoreExpandFmt   = "expand keystore path %s: %w"
	ConfigDotEnvFmt           = "load env file %s: %w"
)
