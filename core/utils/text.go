package utils

import "strings"

// Truncate shortens s to at most limit runes, ending with an ellipsis when
// anything was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// ProgressBar renders done/total as a bar of width blocks.
func ProgressBar(done, total, width int) string {
	if width <= 0 {
		return ""
	}
	filled := width
	if total > 0 {
		filled = done * width / total
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
