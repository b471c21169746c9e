package biz

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kart-io/docpipe/internal/model"
)

// TextExtractor turns raw document bytes into plain text for chunking.
// Binary formats (PDF, office documents) are collaborator territory;
// the pipeline only requires that some extractor yields text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *model.Document, content []byte) (string, error)
}

// PlainTextExtractor handles documents that are already plain text.
type PlainTextExtractor struct{}

var _ TextExtractor = (*PlainTextExtractor)(nil)

// NewPlainTextExtractor creates a plain text extractor.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{}
}

// Extract validates and returns the content as UTF-8 text. Invalid
// encodings and empty content are errors so the orchestrator can fail
// the document with a meaningful message.
func (e *PlainTextExtractor) Extract(_ context.Context, doc *model.Document, content []byte) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("document %s is not valid UTF-8 text", doc.ID)
	}

	text := string(content)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text extracted from document %s", doc.ID)
	}

	return text, nil
}
