// Package textutil provides text processing helpers for the document
// pipeline: whitespace normalization, paragraph and sentence splitting,
// and cheap token estimation.
package textutil

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	crlfRegex      = regexp.MustCompile(`\r\n?`)
	multiNewline   = regexp.MustCompile(`\n{3,}`)
	horizontalWS   = regexp.MustCompile(`[^\S\n]+`)
	singleNewline  = regexp.MustCompile(`([^\n])\n([^\n])`)
	paragraphBreak = regexp.MustCompile(`\n\n+`)
)

// NormalizeWhitespace collapses runs of whitespace to single spaces while
// preserving paragraph breaks: three or more consecutive newlines become a
// single blank-line break, single newlines become spaces.
func NormalizeWhitespace(text string) string {
	text = crlfRegex.ReplaceAllString(text, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = horizontalWS.ReplaceAllString(text, " ")
	// Join lines within a paragraph. Applied twice because the regex
	// cannot match overlapping pairs in one pass.
	text = singleNewline.ReplaceAllString(text, "$1 $2")
	text = singleNewline.ReplaceAllString(text, "$1 $2")

	paragraphs := paragraphBreak.Split(text, -1)
	out := paragraphs[:0]
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

// SplitParagraphs splits normalized text on blank-line paragraph breaks.
func SplitParagraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// SplitSentences splits text into sentences on terminal punctuation
// followed by whitespace. It is a deliberately simple splitter; chunking
// only needs approximate boundaries, not linguistic accuracy.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		// Consume consecutive terminal punctuation ("...", "?!").
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 < len(runes) && !isSpace(runes[j+1]) {
			i = j
			continue
		}
		s := strings.TrimSpace(string(runes[start : j+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		i = j
		start = j + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

// EstimateTokens estimates the token count of text as chars/4. Cheap
// approximation, good enough for sizing; avoids an external tokenizer.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// TruncateString truncates a string to at most maxLen Unicode characters.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// CosineSimilarity computes the cosine similarity of two vectors.
// Returns a value in [-1, 1]; 0 for mismatched or empty inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
