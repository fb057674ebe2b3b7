package util

import "strings"

// SanitizeText strips bytes that Postgres text columns reject, in particular
// NUL (0x00) which some PDF extractors emit, plus other non-printing control
// characters. Newlines and tabs survive so paragraph structure is preserved.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch == '\n' || ch == '\r' || ch == '\t':
			b.WriteRune(ch)
		case ch < 0x20:
			// drop NUL and other controls
		default:
			b.WriteRune(ch)
		}
	}
	return strings.TrimSpace(b.String())
}
