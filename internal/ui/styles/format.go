package styles

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
// Width is measured in terminal cells, so wide runes count double.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}

	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	// Need to truncate - leave room for ellipsis
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}
	return runewidth.Truncate(s, maxWidth, "...")
}
