package messages

// Publish result artifact messages.
const (
	ArtifactDirRequired       = "package directory is required"
	ArtifactNetworkRequired   = "network is required"
	ArtifactEncodeFmt         = "encode publish result for %s: %w"
	ArtifactWriteFmt          = "write %s: %w"
	ArtifactPackageNameFmt    = "read package name in %s: %w"
	ArtifactUploadFmt         = "upload s3://%s/%s: %w"
	ArtifactBucketRequired    = "artifact bucket is required"
	ArtifactEndpointRequired  = "artifact endpoint is required"
	ArtifactEndpointSchemeFmt = "artifact endpoint must not include a scheme: %q"
	ArtifactCredentials       = "artifact access key and secret key are required"
	ArtifactClientFmt         = "create object store client for %s: %w"
	ArtifactBucketCheckFmt    = "check bucket %s: %w"
	ArtifactBucketMissingFmt  = "bucket %s does not exist"
)
