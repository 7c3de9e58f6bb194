// Package lock serializes suipkg runs that touch the same package directory.
package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultTimeout bounds how long Lock waits for another process.
const DefaultTimeout = 30 * time.Second

var flockFn = unix.Flock
var lockSleep = time.Sleep
var lockPollEvery = 100 * time.Millisecond

// FileLocker takes exclusive advisory locks keyed by package directory. Lock files live
// outside the package so they never show up in the Move sources.
type FileLocker struct {
	// Dir holds the lock files. Empty means $TMPDIR/suipkg-locks.
	Dir     string
	Timeout time.Duration
}

// NewFileLocker returns a locker that waits up to timeout (DefaultTimeout when zero).
func NewFileLocker(timeout time.Duration) *FileLocker {
	return &FileLocker{Timeout: timeout}
}

func (l *FileLocker) lockDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return filepath.Join(os.TempDir(), "suipkg-locks")
}

func (l *FileLocker) timeout() time.Duration {
	if l.Timeout <= 0 {
		return DefaultTimeout
	}
	return l.Timeout
}

// Path returns the lock file used for dir.
func (l *FileLocker) Path(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New(messages.LockDirRequired)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf(messages.LockResolveFmt, dir, err)
	}
	sum := sha256.Sum256([]byte(filepath.Clean(abs)))
	return filepath.Join(l.lockDir(), hex.EncodeToString(sum[:])+".lock"), nil
}

// Lock blocks until dir is exclusively locked, the timeout passes or ctx is done.
// The returned func releases the lock.
func (l *FileLocker) Lock(ctx context.Context, dir string) (func() error, error) {
	path, err := l.Path(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf(messages.LockCreateDirFmt, filepath.Dir(path), err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFmt, path, err)
	}
	if err := l.acquire(ctx, file, dir); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.LockAcquireFmt, dir, err)
	}
	return func() error {
		if err := flockFn(int(file.Fd()), unix.LOCK_UN); err != nil {
			_ = file.Close()
			return fmt.Errorf(messages.LockReleaseFmt, path, err)
		}
		return file.Close()
	}, nil
}

func (l *FileLocker) acquire(ctx context.Context, file *os.File, dir string) error {
	deadline := time.Now().Add(l.timeout())
	for {
		err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(messages.LockTimeoutFmt, l.timeout(), dir)
		}
		lockSleep(lockPollEvery)
	}
}
