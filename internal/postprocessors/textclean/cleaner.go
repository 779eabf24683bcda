// Package textclean repairs encoding damage in extracted text before it is
// segmented: invalid UTF-8, UTF-8 that was mis-decoded as Windows-1252 or
// Latin-1 ("donâ€™t", "cafÃ©"), stray control and zero-width characters,
// and non-canonical Unicode composition.
package textclean

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// mojibakeMarkers are lead characters produced when UTF-8 multi-byte
// sequences are decoded one byte at a time as Windows-1252 or Latin-1.
const mojibakeMarkers = "ÃÂâÅÐÑØÙÎÏÄÆÇÈ"

var (
	nonSpaceRuns = regexp.MustCompile(`\S+`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	trailingWS   = regexp.MustCompile(`[ \t]+\n`)
)

// Cleaner implements driven.TextCleaner.
type Cleaner struct {
	legacy []*charmap.Charmap
}

var _ driven.TextCleaner = (*Cleaner)(nil)

// New creates a cleaner that tries Windows-1252 then Latin-1 repairs.
func New() *Cleaner {
	return &Cleaner{legacy: []*charmap.Charmap{charmap.Windows1252, charmap.ISO8859_1}}
}

// Clean returns repaired, NFC-normalised text with collapsed blank lines.
// Text that only contained noise comes back empty.
func (c *Cleaner) Clean(text string) string {
	if !utf8.ValidString(text) {
		text = c.decodeInvalid(text)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if strings.ContainsAny(text, mojibakeMarkers) {
		text = nonSpaceRuns.ReplaceAllStringFunc(text, c.fixRun)
	}

	out, _, err := transform.String(transform.Chain(runes.Remove(runes.Predicate(isJunk)), norm.NFC), text)
	if err == nil {
		text = out
	}

	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = trailingWS.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// decodeInvalid keeps valid UTF-8 sequences and decodes every stray byte as
// Windows-1252, which is what unlabelled legacy text almost always is.
func (c *Cleaner) decodeInvalid(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(charmap.Windows1252.DecodeByte(s[0]))
		} else {
			b.WriteString(s[:size])
		}
		s = s[size:]
	}
	return b.String()
}

// fixRun re-encodes a whitespace-free run with each legacy charmap and keeps
// the result when it is valid UTF-8 with fewer mojibake markers.
func (c *Cleaner) fixRun(run string) string {
	if !strings.ContainsAny(run, mojibakeMarkers) {
		return run
	}
	best, bestScore := run, badness(run)
	for _, cm := range c.legacy {
		raw, err := encoding.ReplaceUnsupported(cm.NewEncoder()).String(run)
		if err != nil || strings.ContainsRune(raw, utf8.RuneError) || !utf8.ValidString(raw) {
			continue
		}
		if strings.Contains(raw, "\x1a") {
			// A rune the charmap cannot encode was substituted.
			continue
		}
		if score := badness(raw); score < bestScore {
			best, bestScore = raw, score
		}
	}
	return best
}

// badness counts mojibake markers and C1 control characters.
func badness(s string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(mojibakeMarkers, r) || (r >= 0x80 && r <= 0x9f) {
			n++
		}
	}
	return n
}

// isJunk matches control characters other than newline and tab, plus
// zero-width characters and byte-order marks.
func isJunk(r rune) bool {
	switch r {
	case '\n', '\t':
		return false
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff', utf8.RuneError:
		return true
	}
	return unicode.IsControl(r)
}
