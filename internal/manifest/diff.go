package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// DefaultDiffMaxLines is the default maximum number of diff lines shown.
const DefaultDiffMaxLines = 40

// DiffPreview is the unified diff between the live manifest and a network variant.
type DiffPreview struct {
	From        string
	To          string
	UnifiedDiff string
	Truncated   bool
}

// Empty reports whether the two manifests are identical.
func (p DiffPreview) Empty() bool {
	return strings.TrimSpace(p.UnifiedDiff) == ""
}

// Diff renders Move.toml against Move.<network>.toml for dir.
func (s *Store) Diff(dir string, network string, maxLines int) (DiffPreview, error) {
	paths := DefaultPaths(dir, network)
	live, err := s.sys.ReadFile(paths.Manifest)
	if err != nil {
		return DiffPreview{}, fmt.Errorf(messages.ManifestFailedReadFmt, paths.Manifest, err)
	}
	variant, err := s.sys.ReadFile(paths.Variant)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DiffPreview{}, fmt.Errorf(messages.ManifestMissingNetworkFmt, ErrMissingNetworkManifest, VariantFileName(network), dir)
		}
		return DiffPreview{}, fmt.Errorf(messages.ManifestFailedReadFmt, paths.Variant, err)
	}

	from := FileName
	to := VariantFileName(network)
	rendered, truncated := renderTruncatedUnifiedDiff(from, to, string(live), string(variant), maxLines)
	return DiffPreview{From: from, To: to, UnifiedDiff: rendered, Truncated: truncated}, nil
}

func renderTruncatedUnifiedDiff(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := maxLines
	if limit <= 0 {
		limit = DefaultDiffMaxLines
	}
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitDiffLines(diff)
	if len(lines) == 0 {
		return "", false
	}
	if len(lines) <= limit {
		return strings.Join(lines, "\n") + "\n", false
	}
	truncated := append(lines[:limit:limit], fmt.Sprintf(messages.ManifestDiffTruncatedFmt, limit))
	return strings.Join(truncated, "\n") + "\n", true
}

func splitDiffLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
