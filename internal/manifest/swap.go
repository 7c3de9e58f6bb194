package manifest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

const defaultManifestPerm os.FileMode = 0o644

// Swapper swaps Move.<network>.toml in as Move.toml and restores it from Move.toml.bak.
// At most one swap may be outstanding per package directory.
type Swapper struct {
	sys    System
	logger *slog.Logger
}

// NewSwapper returns a Swapper backed by sys. Nil arguments fall back to the OS filesystem
// and a discarding logger.
func NewSwapper(sys System, logger *slog.Logger) *Swapper {
	if sys == nil {
		sys = RealSystem{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Swapper{sys: sys, logger: logger}
}

// Apply backs up Move.toml to Move.toml.bak, overwriting a stale backup, then copies
// Move.<network>.toml over Move.toml. The two writes are not atomic as a pair; Revert
// recovers from a failure between them.
func (s *Swapper) Apply(dir string, network string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New(messages.ManifestDirRequired)
	}
	if strings.TrimSpace(network) == "" {
		return errors.New(messages.ManifestNetworkRequired)
	}
	paths := DefaultPaths(dir, network)

	if _, err := s.sys.Stat(paths.Variant); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf(messages.ManifestMissingNetworkFmt, ErrMissingNetworkManifest, VariantFileName(network), dir)
		}
		return fmt.Errorf(messages.ManifestFailedStatFmt, paths.Variant, err)
	}
	variant, err := s.sys.ReadFile(paths.Variant)
	if err != nil {
		return fmt.Errorf(messages.ManifestFailedReadFmt, paths.Variant, err)
	}

	live, err := s.sys.ReadFile(paths.Manifest)
	if err != nil {
		return fmt.Errorf(messages.ManifestFailedReadFmt, paths.Manifest, err)
	}
	perm := defaultManifestPerm
	if info, err := s.sys.Stat(paths.Manifest); err == nil {
		perm = info.Mode().Perm()
	}

	if err := s.sys.WriteFileAtomic(paths.Backup, live, perm); err != nil {
		return fmt.Errorf(messages.ManifestFailedWriteFmt, paths.Backup, err)
	}
	if err := s.sys.WriteFileAtomic(paths.Manifest, variant, perm); err != nil {
		return fmt.Errorf(messages.ManifestFailedWriteFmt, paths.Manifest, err)
	}

	s.warnOnAddressDrift(dir, network, live, variant)
	s.logger.Debug("applied network manifest", "dir", dir, "network", network)
	return nil
}

// warnOnAddressDrift logs when the variant declares a different set of logical addresses.
func (s *Swapper) warnOnAddressDrift(dir string, network string, live []byte, variant []byte) {
	liveManifest, err := Parse(live, FileName)
	if err != nil {
		return
	}
	variantManifest, err := Parse(variant, VariantFileName(network))
	if err != nil {
		return
	}
	if !SameAddressKeys(liveManifest, variantManifest) {
		s.logger.Warn("network manifest declares different addresses",
			"dir", dir,
			"network", network,
			"live", liveManifest.AddressNames(),
			"variant", variantManifest.AddressNames(),
		)
	}
}

// Revert restores Move.toml from Move.toml.bak byte for byte and removes the backup.
// A directory without a backup is left alone.
func (s *Swapper) Revert(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New(messages.ManifestDirRequired)
	}
	paths := DefaultPaths(dir, "")

	backup, err := s.sys.ReadFile(paths.Backup)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ManifestFailedReadFmt, paths.Backup, err)
	}
	perm := defaultManifestPerm
	if info, err := s.sys.Stat(paths.Backup); err == nil {
		perm = info.Mode().Perm()
	}
	if err := s.sys.WriteFileAtomic(paths.Manifest, backup, perm); err != nil {
		return fmt.Errorf(messages.ManifestFailedWriteFmt, paths.Manifest, err)
	}
	if err := s.sys.Remove(paths.Backup); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(messages.ManifestFailedRemoveFmt, paths.Backup, err)
	}
	s.logger.Debug("restored manifest", "dir", dir)
	return nil
}

// Session tracks the directories swapped during one orchestration run so they can all be
// restored by a single deferred Close.
type Session struct {
	swapper *Swapper
	network string
	dirs    []string
	seen    map[string]struct{}
	applied map[string]struct{}
	closed  bool
}

// NewSession starts a swap session for network.
func (s *Swapper) NewSession(network string) *Session {
	return &Session{
		swapper: s,
		network: network,
		seen:    make(map[string]struct{}),
		applied: make(map[string]struct{}),
	}
}

// sessionKey identifies dir independently of how the path was spelled.
func sessionKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// Track registers dir for cleanup without swapping it.
func (ss *Session) Track(dir string) {
	key := sessionKey(dir)
	if _, ok := ss.seen[key]; ok {
		return
	}
	ss.seen[key] = struct{}{}
	ss.dirs = append(ss.dirs, dir)
}

// Apply swaps the network manifest into dir. The directory is tracked before the swap
// so a half-applied swap is still reverted by Close. A directory already swapped in
// this session is left alone so its backup keeps the pre-session manifest.
func (ss *Session) Apply(dir string) error {
	ss.Track(dir)
	key := sessionKey(dir)
	if _, ok := ss.applied[key]; ok {
		return nil
	}
	if err := ss.swapper.Apply(dir, ss.network); err != nil {
		return err
	}
	ss.applied[key] = struct{}{}
	return nil
}

// Dirs returns the tracked directories in registration order.
func (ss *Session) Dirs() []string {
	out := make([]string, len(ss.dirs))
	copy(out, ss.dirs)
	return out
}

// Close reverts every tracked directory exactly once, in reverse registration order.
// Calling Close again is a no-op.
func (ss *Session) Close() error {
	if ss.closed {
		return nil
	}
	ss.closed = true
	var errs []error
	for i := len(ss.dirs) - 1; i >= 0; i-- {
		dir := ss.dirs[i]
		if err := ss.swapper.Revert(dir); err != nil {
			errs = append(errs, fmt.Errorf(messages.ManifestRevertFailedFmt, dir, err))
		}
	}
	return errors.Join(errs...)
}
