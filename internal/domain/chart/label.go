package chart

import "unicode/utf8"

const ellipsis = "…"

// TruncateLabel shortens label to n runes, the last being an ellipsis.
func TruncateLabel(label string, n int) string {
	if n <= 0 || utf8.RuneCountInString(label) <= n {
		return label
	}
	if n == 1 {
		return ellipsis
	}
	runes := []rune(label)
	return string(runes[:n-1]) + ellipsis
}
