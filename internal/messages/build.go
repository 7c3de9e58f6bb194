package messages

// Build messages.
const (
	BuildDirRequired      = "package directory is required"
	BuildBinRequired      = "sui binary is required"
	BuildTempDirFmt       = "create build install dir: %w"
	BuildErrorFmt         = "build package at %s: %v\n%s"
	BuildErrorNoOutputFmt = "build package at %s: %v"
	BuildDecodeFmt        = "decode build output for %s: %w"
	BuildNoJSONOutput     = "no JSON object in build output"
	BuildModuleDecodeFmt  = "module %d is not valid base64: %w"
	BuildDigestByteFmt    = "digest byte %d out of range: %d"
	BuildNoModules        = "build produced no modules"
)
