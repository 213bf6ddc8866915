package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aryann/difflib"
	"golang.org/x/text/unicode/norm"
)

var unsafeRX = regexp.MustCompile(`[<>&;{}\[\]\\]`)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// Normalize applies NFKC normalization, drops control characters, collapses
// whitespace runs to single spaces and trims. Total on well-formed input.
func Normalize(s string) string {
	normalized := norm.NFKC.String(s)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// EscapeUnsafe strips the denylisted characters, then HTML-entity-escapes
// the five reserved characters in what remains.
func EscapeUnsafe(s string) string {
	stripped := unsafeRX.ReplaceAllString(s, "")
	stripped = strings.Join(strings.Fields(stripped), " ")
	return escaper.Replace(stripped)
}

// Removed lists words present in before but absent after sanitization,
// so validation details can say what was dropped.
func Removed(before, after string) []string {
	recs := difflib.Diff(strings.Fields(before), strings.Fields(after))
	var out []string
	for _, r := range recs {
		if r.Delta == difflib.LeftOnly {
			out = append(out, r.Payload)
		}
	}
	return out
}
