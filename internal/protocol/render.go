package protocol

import (
	"html"
	"strings"
)

// renderText makes arbitrary text safe to place in an HTML transcript:
// everything is escaped, then newlines become line breaks. Model output
// never injects markup.
func renderText(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
}
