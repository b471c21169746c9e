package biz

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentence(word string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = word
	}
	return strings.Join(parts, " ") + "."
}

func TestChunker_EmptyInput(t *testing.T) {
	c := NewChunker(nil)

	assert.Empty(t, c.ChunkText(""))
	assert.Empty(t, c.ChunkText("   \n\n\t  "))
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 200, ChunkOverlap: 20, MinChunkSize: 10})

	text := "A short document. It fits in one chunk."
	chunks := c.ChunkText(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, utf8.RuneCountInString(text), chunks[0].CharCount)
	assert.Equal(t, utf8.RuneCountInString(text)/4, chunks[0].TokenCount)
}

func TestChunker_ParagraphBoundaries(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 0, MinChunkSize: 10})

	p1 := sentence("alpha", 8)   // 48 chars
	p2 := sentence("bravo", 8)   // 48 chars
	p3 := sentence("charlie", 8) // 64 chars
	text := p1 + "\n\n" + p2 + "\n\n" + p3

	chunks := c.ChunkText(text)

	// p1+p2 fit together (98 with the separator), p3 pushes past the limit.
	require.Len(t, chunks, 2)
	assert.Equal(t, p1+"\n\n"+p2, chunks[0].Content)
	assert.Equal(t, p3, chunks[1].Content)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestChunker_OverlapSeedsNextChunk(t *testing.T) {
	c := NewChunker(DefaultChunkerConfig())

	// One paragraph of ~2550 chars forces sentence-level splitting and
	// exactly one mid-text chunk close.
	s := sentence("abcd", 10)
	text := strings.Repeat(s+" ", 51)

	chunks := c.ChunkText(text)

	require.Len(t, chunks, 2)
	assert.LessOrEqual(t, chunks[0].CharCount, 2000)
	assert.Greater(t, chunks[0].CharCount, 1500)

	// The second chunk starts with trailing sentences of the first.
	overlapEnd := strings.Index(chunks[1].Content, s)
	require.GreaterOrEqual(t, overlapEnd, 0)
	assert.True(t, strings.HasSuffix(chunks[0].Content, chunks[1].Content[:overlapEnd+len(s)]))
}

func TestChunker_OversizedSentenceHardChunk(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 0, MinChunkSize: 10})

	long := sentence("x", 80) // 160 chars, no internal boundary
	chunks := c.ChunkText(long)

	require.Len(t, chunks, 1)
	assert.Equal(t, long, chunks[0].Content)
	assert.Greater(t, chunks[0].CharCount, 100)
}

func TestChunker_DropsUndersizedTrailing(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 100, ChunkOverlap: 0, MinChunkSize: 50})

	p1 := sentence("delta", 15) // 90 chars
	p2 := sentence("tiny", 6)   // 30 chars, below MinChunkSize
	chunks := c.ChunkText(p1 + "\n\n" + p2)

	require.Len(t, chunks, 1)
	assert.Equal(t, p1, chunks[0].Content)
}

func TestChunker_ReconstructionWithoutOverlap(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 120, ChunkOverlap: 0, MinChunkSize: 1})

	words := []string{"one", "two", "three", "four", "five", "six", "seven", "eight"}
	var paragraphs []string
	for _, w := range words {
		paragraphs = append(paragraphs, sentence(w, 10))
	}
	text := strings.Join(paragraphs, "\n\n")

	chunks := c.ChunkText(text)
	require.NotEmpty(t, chunks)

	// With zero overlap every source sentence appears exactly once.
	var joined strings.Builder
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		joined.WriteString(ch.Content)
		joined.WriteString(" ")
	}
	for _, p := range paragraphs {
		assert.Equal(t, 1, strings.Count(joined.String(), p))
	}
}

func TestChunker_NormalizesMessyWhitespace(t *testing.T) {
	c := NewChunker(&ChunkerConfig{ChunkSize: 500, ChunkOverlap: 0, MinChunkSize: 1})

	text := "Line one\r\ncontinues here.\n\n\n\nSecond   paragraph\there."
	chunks := c.ChunkText(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Line one continues here.\n\nSecond paragraph here.", chunks[0].Content)
}
