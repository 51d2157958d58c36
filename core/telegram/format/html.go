package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes the characters Telegram HTML parse mode reserves.
// User-provided text must pass through it before being wrapped in tags.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Bold wraps text in Telegram HTML emphasis. The text itself is emitted as-is.
func Bold(text string) string {
	return "<b>" + text + "</b>"
}

// Italic wraps text in Telegram HTML italics.
func Italic(text string) string {
	return "<i>" + text + "</i>"
}

// Join concatenates non-empty message parts separated by a blank line.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "\n\n")
}
