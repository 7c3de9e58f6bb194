package messages

// Sui ledger client messages.
const (
	SuiInvalidAddressFmt    = "invalid sui address %q"
	SuiInvalidStructTagFmt  = "invalid struct tag %q"
	SuiDigestLengthFmt      = "object digest must be 32 bytes, got %d"
	SuiDigestDecodeFmt      = "decode object digest %q: %w"
	SuiUnknownNetworkFmt    = "no default RPC URL for network %q; set rpc_url"
	SuiRPCURLRequired       = "rpc url is required"
	SuiRPCErrorFmt          = "sui rpc %s: code %d: %s"
	SuiRPCStatusFmt         = "sui rpc %s: unexpected status %s"
	SuiRPCRequestFmt        = "sui rpc %s: %w"
	SuiRPCDecodeFmt         = "sui rpc %s: decode response: %w"
	SuiRPCEmptyResult       = "empty result"
	SuiSubmissionFmt        = "%s transaction: %v"
	SuiSenderRequired       = "sender address is required"
	SuiSignerRequired       = "signer is required"
	SuiGasBudgetRequired    = "gas budget must be positive"
	SuiInsufficientGasFmt   = "gas coins of %s hold %d MIST, need %d"
	SuiNoGasCoinsFmt        = "no SUI coins owned by %s"
	SuiGasPriceFmt          = "invalid reference gas price %q: %w"
	SuiCoinBalanceFmt       = "invalid balance %q for coin %s: %w"
	SuiCoinVersionFmt       = "invalid version %q for coin %s: %w"
	SuiObjectNotFoundFmt    = "object %s not found: %s"
	SuiObjectOwnerFmt       = "object %s has unsupported owner for a transaction input"
	SuiInputIndexFmt        = "transaction input index %d exceeds u16"
	SuiTooManyCommands      = "transaction command count exceeds u16"
	SuiKeystoreReadFmt      = "read keystore %s: %w"
	SuiKeystoreDecodeFmt    = "decode keystore %s: %w"
	SuiKeystoreEmptyFmt     = "keystore %s has no ed25519 keys"
	SuiKeystoreNoAddressFmt = "keystore %s has no key for %s"
	SuiSecretKeyEmpty       = "secret key is empty"
	SuiSecretKeyInvalid     = "secret key must be base64 (flag||seed or seed) or hex encoded 32-byte seed"
	SuiSecretKeySchemeFmt   = "unsupported key scheme flag %d (only ed25519 is supported)"
	SuiHomeExpandFmt        = "expand keystore path %s: %w"
	SuiUnknownPolicyFmt     = "unknown upgrade policy %q"
)
