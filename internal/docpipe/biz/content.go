package biz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kart-io/docpipe/internal/model"
)

// DirContentProvider reads document content from a flat data directory,
// keyed by the stored filename.
type DirContentProvider struct {
	dir string
}

var _ ContentProvider = (*DirContentProvider)(nil)

// NewDirContentProvider creates a filesystem-backed content provider.
func NewDirContentProvider(dir string) *DirContentProvider {
	return &DirContentProvider{dir: dir}
}

// Content reads the document's file. The filename is reduced to its base
// so a stored path can never escape the data directory.
func (p *DirContentProvider) Content(_ context.Context, doc *model.Document) ([]byte, error) {
	name := filepath.Base(strings.TrimSpace(doc.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("document %s has no usable filename", doc.ID)
	}

	content, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read content for document %s: %w", doc.ID, err)
	}
	return content, nil
}
