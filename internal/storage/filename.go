package storage

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultTitle is used when a title is empty after cleaning.
const DefaultTitle = "video"

var (
	nonWord    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]+`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanTitle strips everything but letters, digits, underscores, dashes and
// spaces from a media title.
func CleanTitle(title string) string {
	cleaned := nonWord.ReplaceAllString(title, "")
	cleaned = strings.TrimSpace(whitespace.ReplaceAllString(cleaned, " "))
	if cleaned == "" {
		return DefaultTitle
	}
	return cleaned
}

// ASCIIName transliterates a cleaned title to ASCII for use in
// Content-Disposition headers and file names.
func ASCIIName(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, CleanTitle(title))
	if err != nil {
		folded = title
	}
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' '):
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " "))
	if out == "" {
		return DefaultTitle
	}
	return out
}

// Filename joins an ASCII-safe title and extension.
func Filename(title, ext string) string {
	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		return ASCIIName(title)
	}
	return ASCIIName(title) + "." + ext
}
