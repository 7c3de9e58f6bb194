// Package artifact persists publish result documents.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scallop-io/sui-package-kit/internal/fsutil"
	"github.com/scallop-io/sui-package-kit/internal/messages"
)

// FileName returns the publish result file name for network.
func FileName(network string) string {
	return "publish-result." + network + ".json"
}

// Writer stores the publish result document of the package in dir.
type Writer interface {
	Write(ctx context.Context, dir string, network string, doc map[string]any) error
}

// Encode renders doc as indented JSON with a trailing newline.
func Encode(doc map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func validate(dir string, network string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New(messages.ArtifactDirRequired)
	}
	if strings.TrimSpace(network) == "" {
		return errors.New(messages.ArtifactNetworkRequired)
	}
	return nil
}

// FileWriter writes publish-result.<network>.json into the package directory.
type FileWriter struct{}

// NewFileWriter returns a writer that replaces the result file atomically.
func NewFileWriter() *FileWriter {
	return &FileWriter{}
}

// Path returns the result file path for dir and network.
func (w *FileWriter) Path(dir string, network string) string {
	return filepath.Join(dir, FileName(network))
}

// Write encodes doc and writes it next to Move.toml.
func (w *FileWriter) Write(_ context.Context, dir string, network string, doc map[string]any) error {
	if err := validate(dir, network); err != nil {
		return err
	}
	data, err := Encode(doc)
	if err != nil {
		return fmt.Errorf(messages.ArtifactEncodeFmt, dir, err)
	}
	path := w.Path(dir, network)
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ArtifactWriteFmt, path, err)
	}
	return nil
}

// MultiWriter fans a document out to every writer in order and stops at the first error.
type MultiWriter []Writer

// Write implements Writer.
func (m MultiWriter) Write(ctx context.Context, dir string, network string, doc map[string]any) error {
	for _, w := range m {
		if w == nil {
			continue
		}
		if err := w.Write(ctx, dir, network, doc); err != nil {
			return err
		}
	}
	return nil
}
