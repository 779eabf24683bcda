// Package semantic provides the budgeted semantic splitter: text is split
// at the most meaningful boundary available (blank lines, lines, sentences,
// clauses, words) and pieces are packed into chunks that stay within a
// token budget.
package semantic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/postprocessors/tokens"
)

// DefaultBudget is the default chunk size in tokens.
const DefaultBudget = 500

var (
	newlineRuns    = regexp.MustCompile(`[\r\n]+`)
	tabRuns        = regexp.MustCompile(`\t+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// sentenceEnds and clauseEnds mark single spaces worth splitting after.
const (
	sentenceEnds = ".?!…"
	clauseEnds   = ";:,)]}\"'”’"
	wordJoiners  = "/\\-–—|&"
)

// Splitter implements driven.Segmenter.
type Splitter struct {
	budget  int
	counter driven.TokenCounter
}

var _ driven.Segmenter = (*Splitter)(nil)

// Option configures the splitter.
type Option func(*Splitter)

// WithBudget sets the maximum tokens per chunk.
func WithBudget(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.budget = n
		}
	}
}

// WithCounter sets the token measure. It should match the embedder's.
func WithCounter(c driven.TokenCounter) Option {
	return func(s *Splitter) {
		if c != nil {
			s.counter = c
		}
	}
}

// New creates a splitter with the word-piece counter and DefaultBudget.
func New(opts ...Option) *Splitter {
	s := &Splitter{budget: DefaultBudget, counter: tokens.WordPiece{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the segmenter name.
func (s *Splitter) Name() string {
	return "semantic"
}

// Segment implements driven.Segmenter.
func (s *Splitter) Segment(text string) []string {
	var out []string
	for _, c := range s.chunk(text) {
		if t := strings.TrimSpace(c); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Splitter) chunk(text string) []string {
	if s.fits(text) {
		return []string{text}
	}

	sep, pieces := splitOnce(text)
	if len(pieces) <= 1 {
		// Nothing left to split on: a single rune over budget is its own chunk.
		return []string{text}
	}

	var out []string
	for i := 0; i < len(pieces); {
		if !s.fits(pieces[i]) {
			out = append(out, s.chunk(pieces[i])...)
			i++
			continue
		}
		n := s.pack(pieces[i:], sep)
		out = append(out, strings.Join(pieces[i:i+n], sep))
		i += n
	}
	return out
}

// pack returns how many leading pieces fit in one chunk when joined by sep.
// Counts are summed first, then the joined text is verified exactly.
func (s *Splitter) pack(pieces []string, sep string) int {
	sepCost := s.counter.CountTokens(sep)
	n, total := 1, s.counter.CountTokens(pieces[0])
	for n < len(pieces) {
		next := total + sepCost + s.counter.CountTokens(pieces[n])
		if next > s.budget {
			break
		}
		total = next
		n++
	}
	for n > 1 && !s.fits(strings.Join(pieces[:n], sep)) {
		n--
	}
	return n
}

func (s *Splitter) fits(text string) bool {
	return s.counter.CountTokens(text) <= s.budget
}

// splitOnce splits at the strongest boundary present and returns the
// separator to rejoin with. Punctuation stays on the piece before a split;
// only whitespace separators are consumed.
func splitOnce(text string) (string, []string) {
	if sep := longest(newlineRuns, text); sep != "" {
		return sep, nonEmpty(strings.Split(text, sep))
	}
	if sep := longest(tabRuns, text); sep != "" {
		return sep, nonEmpty(strings.Split(text, sep))
	}
	if sep := longest(whitespaceRuns, text); utf8.RuneCountInString(sep) > 1 {
		return sep, nonEmpty(strings.Split(text, sep))
	}
	for _, marks := range []string{sentenceEnds, clauseEnds} {
		if pieces := splitAfterMarks(text, marks); len(pieces) > 1 {
			return " ", pieces
		}
	}
	if sep := longest(whitespaceRuns, text); sep != "" {
		return sep, nonEmpty(strings.Split(text, sep))
	}
	if pieces := splitAfterRunes(text, wordJoiners); len(pieces) > 1 {
		return "", pieces
	}
	return "", splitRunes(text)
}

func longest(re *regexp.Regexp, text string) string {
	best := ""
	for _, m := range re.FindAllString(text, -1) {
		if len(m) > len(best) {
			best = m
		}
	}
	return best
}

// splitAfterMarks splits on single spaces that follow one of marks.
func splitAfterMarks(text, marks string) []string {
	var out []string
	start := 0
	prev := rune(0)
	for i, r := range text {
		if r == ' ' && prev != 0 && strings.ContainsRune(marks, prev) {
			out = append(out, text[start:i])
			start = i + 1
		}
		prev = r
	}
	out = append(out, text[start:])
	return nonEmpty(out)
}

// splitAfterRunes splits immediately after any of the given runes, keeping them.
func splitAfterRunes(text, set string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if strings.ContainsRune(set, r) {
			end := i + utf8.RuneLen(r)
			out = append(out, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

func splitRunes(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}

func nonEmpty(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
