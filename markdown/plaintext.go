package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	headingMarkerRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	quoteMarkerRe   = regexp.MustCompile(`(?m)^>\s?`)
	listMarkerRe    = regexp.MustCompile(`(?m)^(?:[-*+]|\d+\.)\s+`)
	fenceRe         = regexp.MustCompile("(?m)^```.*$")
	linkRe          = regexp.MustCompile(`\[([^\]]*)\]\([^()]*\)`)
	strongTextRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	emTextRe        = regexp.MustCompile(`\*([^*]+)\*`)
)

// PlainText converts HTML or Markdown into a single line of plain text,
// suitable for excerpts.
func PlainText(s string) string {
	s = NewNormalizer().Normalize(s)
	s = fenceRe.ReplaceAllString(s, "")
	s = headingMarkerRe.ReplaceAllString(s, "")
	s = quoteMarkerRe.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "")
	s = linkRe.ReplaceAllString(s, "$1")
	s = strongTextRe.ReplaceAllString(s, "$1")
	s = emTextRe.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "`", "")
	return collapse(s)
}

// Truncate shortens s to at most limit runes, cutting at a word boundary
// where possible and marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit-1])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
