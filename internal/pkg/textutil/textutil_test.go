package textutil

import (
	"math"
	"reflect"
	"testing"
)

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "joins lines within a paragraph",
			input: "first line\nsecond line",
			want:  "first line second line",
		},
		{
			name:  "collapses horizontal whitespace",
			input: "revenue \t grew   fast",
			want:  "revenue grew fast",
		},
		{
			name:  "keeps paragraph breaks",
			input: "intro paragraph\n\n\n\nbody paragraph",
			want:  "intro paragraph\n\nbody paragraph",
		},
		{
			name:  "normalizes crlf",
			input: "a\r\nb\r\n\r\nc",
			want:  "a b\n\nc",
		},
		{
			name:  "drops empty paragraphs",
			input: "\n\n  \n\nonly content\n\n",
			want:  "only content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeWhitespace(tt.input); got != tt.want {
				t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := SplitParagraphs("summary\n\ndetails\n\n\nconclusion")
	want := []string{"summary", "details", "conclusion"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitParagraphs = %v, want %v", got, want)
	}

	if got := SplitParagraphs("   "); len(got) != 0 {
		t.Errorf("expected no paragraphs for blank input, got %v", got)
	}
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "terminal punctuation with space",
			input: "Revenue grew. Costs fell! Margins?",
			want:  []string{"Revenue grew.", "Costs fell!", "Margins?"},
		},
		{
			name:  "ellipsis stays together",
			input: "It continued... Then it stopped.",
			want:  []string{"It continued...", "Then it stopped."},
		},
		{
			name:  "decimal points do not split",
			input: "Growth was 3.5 percent. Good.",
			want:  []string{"Growth was 3.5 percent.", "Good."},
		},
		{
			name:  "unterminated tail kept",
			input: "Complete sentence. trailing fragment",
			want:  []string{"Complete sentence.", "trailing fragment"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitSentences(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(""); got != 0 {
		t.Errorf("EstimateTokens(empty) = %d, want 0", got)
	}
	if got := EstimateTokens("12345678"); got != 2 {
		t.Errorf("EstimateTokens(8 chars) = %d, want 2", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString should not touch short strings, got %q", got)
	}
	if got := TruncateString("abcdefgh", 3); got != "abc" {
		t.Errorf("TruncateString = %q, want %q", got, "abc")
	}
	// Rune-aware, not byte-aware.
	if got := TruncateString("héllo", 2); got != "hé" {
		t.Errorf("TruncateString = %q, want %q", got, "hé")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := CosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %f, want 1", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %f, want 0", got)
	}
	if got := CosineSimilarity([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Errorf("opposite vectors: got %f, want -1", got)
	}
	if got := CosineSimilarity([]float32{1}, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched lengths: got %f, want 0", got)
	}
	if got := CosineSimilarity([]float32{0, 0}, []float32{1, 1}); got != 0 {
		t.Errorf("zero vector: got %f, want 0", got)
	}
}
