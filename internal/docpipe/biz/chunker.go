package biz

import (
	"strings"
	"unicode/utf8"

	"github.com/kart-io/docpipe/internal/pkg/textutil"
)

// ChunkerConfig configures the chunking engine.
type ChunkerConfig struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int
	// ChunkOverlap is the overlap between consecutive chunks in characters.
	ChunkOverlap int
	// MinChunkSize is the minimum size for a trailing chunk to be emitted.
	MinChunkSize int
}

// DefaultChunkerConfig returns the default chunking parameters.
func DefaultChunkerConfig() *ChunkerConfig {
	return &ChunkerConfig{
		ChunkSize:    2000,
		ChunkOverlap: 200,
		MinChunkSize: 100,
	}
}

// Chunk is one bounded segment of chunked text.
type Chunk struct {
	// Content is the chunk text, including any seeded overlap prefix.
	Content string
	// Index is the zero-based position of the chunk within the document.
	Index int
	// TokenCount is the estimated token count (chars/4).
	TokenCount int
	// CharCount is the content length in Unicode characters.
	CharCount int
}

// Chunker splits extracted text into overlapping chunks sized for
// embedding. Splitting prefers paragraph boundaries, falls back to
// sentence boundaries for oversized paragraphs, and accepts an oversized
// sentence as one hard chunk. The output is a pure function of the input
// text and configuration.
//
// A trailing buffer below MinChunkSize is dropped rather than emitted.
// This is a deliberate, lossy policy to avoid tiny near-duplicate chunks
// at document tails.
type Chunker struct {
	config *ChunkerConfig
}

// NewChunker creates a chunking engine.
func NewChunker(config *ChunkerConfig) *Chunker {
	if config == nil {
		config = DefaultChunkerConfig()
	}
	return &Chunker{config: config}
}

// ChunkText splits text into ordered chunks. Empty or whitespace-only
// input yields no chunks.
func (c *Chunker) ChunkText(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = textutil.NormalizeWhitespace(text)
	parts := c.split(text)

	chunks := make([]Chunk, 0, len(parts))
	for i, content := range parts {
		chunks = append(chunks, Chunk{
			Content:    content,
			Index:      i,
			TokenCount: textutil.EstimateTokens(content),
			CharCount:  utf8.RuneCountInString(content),
		})
	}
	return chunks
}

// split accumulates paragraphs into a running buffer, closing the buffer
// as a chunk whenever the next paragraph would push it past ChunkSize.
func (c *Chunker) split(text string) []string {
	var chunks []string
	var buffer string

	for _, paragraph := range textutil.SplitParagraphs(text) {
		if utf8.RuneCountInString(paragraph) > c.config.ChunkSize {
			// Oversized paragraph: close the current buffer and fall back
			// to sentence granularity with the same buffer/overlap logic.
			chunks, buffer = c.splitSentences(paragraph, chunks, buffer)
			continue
		}

		if utf8.RuneCountInString(buffer)+utf8.RuneCountInString(paragraph) > c.config.ChunkSize && buffer != "" {
			chunks = append(chunks, strings.TrimSpace(buffer))
			buffer = c.seed(buffer, paragraph, " ")
			continue
		}

		buffer = join(buffer, paragraph, "\n\n")
	}

	if trailing := strings.TrimSpace(buffer); trailing != "" && utf8.RuneCountInString(trailing) >= c.config.MinChunkSize {
		chunks = append(chunks, trailing)
	}

	return chunks
}

// splitSentences applies the buffer/overlap logic at sentence granularity.
// A single sentence exceeding ChunkSize is accepted as one hard chunk.
func (c *Chunker) splitSentences(paragraph string, chunks []string, buffer string) ([]string, string) {
	for _, sentence := range textutil.SplitSentences(paragraph) {
		if utf8.RuneCountInString(buffer)+utf8.RuneCountInString(sentence) > c.config.ChunkSize {
			if buffer != "" {
				chunks = append(chunks, strings.TrimSpace(buffer))
				buffer = c.seed(buffer, sentence, " ")
			} else {
				// Hard chunk: no further splitting below sentence level.
				buffer = sentence
			}
			continue
		}
		buffer = join(buffer, sentence, " ")
	}
	return chunks, buffer
}

// seed starts a new buffer with the overlap snippet of the closed chunk.
func (c *Chunker) seed(closed, next, sep string) string {
	overlap := c.overlap(closed)
	if overlap == "" {
		return next
	}
	return overlap + sep + next
}

// overlap returns the trailing ChunkOverlap characters of text, trimmed to
// the nearest sentence boundary so the next buffer starts mid-context
// rather than mid-word.
func (c *Chunker) overlap(text string) string {
	if utf8.RuneCountInString(text) <= c.config.ChunkOverlap {
		return text
	}

	runes := []rune(text)
	tail := string(runes[len(runes)-c.config.ChunkOverlap:])

	sentences := textutil.SplitSentences(tail)
	if len(sentences) > 1 {
		return strings.Join(sentences[len(sentences)-2:], " ")
	}
	if len(sentences) == 1 {
		return sentences[0]
	}
	return tail
}

func join(buffer, next, sep string) string {
	if buffer == "" {
		return next
	}
	return buffer + sep + next
}
