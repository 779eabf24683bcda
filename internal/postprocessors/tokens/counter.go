// Package tokens approximates the word-piece token counts used to budget
// chunks for sentence-embedding models.
package tokens

import (
	"unicode"

	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// runesPerPiece is how many runes of a long word one extra piece covers.
const runesPerPiece = 6

// WordPiece counts words, punctuation and CJK ideographs the way a
// word-piece tokenizer roughly does: one token per short word, one per
// further runesPerPiece runes of a long word, one per punctuation rune, and
// one per ideograph.
type WordPiece struct{}

var _ driven.TokenCounter = WordPiece{}

// CountTokens implements driven.TokenCounter.
func (WordPiece) CountTokens(text string) int {
	count := 0
	word := 0

	flush := func() {
		if word > 0 {
			count += 1 + (word-1)/runesPerPiece
			word = 0
		}
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r):
			flush()
			count++
		case unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r):
			word++
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			count++
		}
	}
	flush()
	return count
}

// Runes counts Unicode code points. Used when no token counter is configured.
type Runes struct{}

var _ driven.TokenCounter = Runes{}

// CountTokens implements driven.TokenCounter.
func (Runes) CountTokens(text string) int {
	n := 0
	for range text {
		n++
	}
	return n
}
