package util

import (
	"strings"
	"unicode"
)

// DisplaySnippet produces a compact, human-readable excerpt of raw segment
// text, capped at maxRunes with a trailing ellipsis.
func DisplaySnippet(s string, maxRunes int) string {
	return trimClean(s, maxRunes)
}

func trimClean(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 160
	}
	s = SanitizeText(s)
	s = restoreWordBoundaries(s)
	s = normalizeWhitespace(s)

	out := make([]rune, 0, len(s))
	for _, r := range s {
		if !unicode.IsPrint(r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || unicode.IsPunct(r) {
			out = append(out, r)
		}
	}
	trimmed := strings.TrimSpace(string(out))
	runes := []rune(trimmed)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return trimmed
}

// restoreWordBoundaries re-inserts spaces that PDF extraction tends to eat,
// e.g. "latencyReduction" or "chapter3Introduction".
func restoreWordBoundaries(s string) string {
	if s == "" {
		return s
	}
	in := []rune(s)
	out := make([]rune, 0, len(in)+len(in)/8)
	for i, r := range in {
		if i > 0 && needBoundary(in[i-1], r) {
			if last := out[len(out)-1]; !unicode.IsSpace(last) {
				out = append(out, ' ')
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func needBoundary(a, b rune) bool {
	if unicode.IsLower(a) && unicode.IsUpper(b) {
		return true
	}
	if unicode.IsLetter(a) && unicode.IsDigit(b) {
		return true
	}
	if unicode.IsDigit(a) && unicode.IsLetter(b) {
		return true
	}
	return false
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
