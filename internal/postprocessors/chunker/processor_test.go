package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithSeparators(nil))
		if p.chunkSize != DefaultChunkSize || p.overlap != DefaultChunkOverlap {
			t.Errorf("expected defaults, got size=%d overlap=%d", p.chunkSize, p.overlap)
		}
		if len(p.separators) != len(DefaultSeparators) {
			t.Errorf("expected default separators, got %q", p.separators)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if got := New().Name(); got != "recursive" {
		t.Errorf("expected name 'recursive', got %q", got)
	}
}

func TestSegment_Empty(t *testing.T) {
	p := New()
	for _, in := range []string{"", "   ", "\n\n\n"} {
		if got := p.Segment(in); len(got) != 0 {
			t.Errorf("Segment(%q) = %q, want no chunks", in, got)
		}
	}
}

func TestSegment_SmallText(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))
	got := p.Segment("  A short paragraph.  ")
	if len(got) != 1 || got[0] != "A short paragraph." {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestSegment_BoundsAndOverlap(t *testing.T) {
	words := make([]string, 400)
	for i := range words {
		words[i] = "word" + strings.Repeat("x", i%5)
	}
	text := strings.Join(words[:200], " ") + "\n\n" + strings.Join(words[200:], " ")

	p := New(WithChunkSize(120), WithOverlap(30))
	chunks := p.Segment(text)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 120 {
			t.Errorf("chunk %d has %d characters, want <= 120", i, n)
		}
		if strings.TrimSpace(c) != c || c == "" {
			t.Errorf("chunk %d not trimmed or empty: %q", i, c)
		}
	}

	// Consecutive chunks within a paragraph share their boundary word.
	shared := 0
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		if strings.HasPrefix(chunks[i], prevWords[len(prevWords)-1]) ||
			strings.Contains(chunks[i], prevWords[len(prevWords)-1]) {
			shared++
		}
	}
	if shared == 0 {
		t.Error("expected overlapping context between consecutive chunks")
	}
}

func TestSegment_CoversEveryWord(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon.\n", 40) + "\n\nomega"

	chunks := New(WithChunkSize(64), WithOverlap(16)).Segment(text)

	joined := strings.Join(chunks, " ")
	for _, w := range strings.Fields(text) {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q lost during segmentation", w)
		}
	}
	if !strings.Contains(chunks[len(chunks)-1], "omega") {
		t.Errorf("last chunk should end the text, got %q", chunks[len(chunks)-1])
	}
}

func TestSegment_UnbreakableTokenIsHardSliced(t *testing.T) {
	long := strings.Repeat("z", 250)

	chunks := New(WithChunkSize(100), WithOverlap(10)).Segment(long)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 slices, got %d", len(chunks))
	}
	total := 0
	for _, c := range chunks {
		if utf8.RuneCountInString(c) > 100 {
			t.Errorf("slice too long: %d", len(c))
		}
		total += len(c)
	}
	if total < 250 {
		t.Errorf("slices cover %d characters, want >= 250", total)
	}
}

func TestSegment_SizeOneTerminates(t *testing.T) {
	chunks := New(WithChunkSize(1), WithOverlap(0)).Segment("ab c")
	if strings.Join(chunks, "") != "abc" {
		t.Errorf("unexpected chunks %q", chunks)
	}
}

func TestSplitKeepingSeparator(t *testing.T) {
	got := splitKeepingSeparator("a\n\nb\n\nc", "\n\n")
	want := []string{"a", "\n\nb", "\n\nc"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("got %q, want %q", got, want)
	}

	if got := splitKeepingSeparator("héy", ""); len(got) != 3 {
		t.Errorf("expected 3 runes, got %q", got)
	}
}
