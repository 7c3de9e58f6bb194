package messages

// Package lock messages.
const (
	LockDirRequired  = "package directory is required"
	LockResolveFmt   = "resolve lock path for %s: %w"
	LockCreateDirFmt = "create lock directory %s: %w"
	LockOpenFmt      = "open lock file %s: %w"
	LockAcquireFmt   = "lock %s: %w"
	LockTimeoutFmt   = "timed out after %s waiting for another suipkg run on %s"
	LockReleaseFmt   = "release lock %s: %w"
)
