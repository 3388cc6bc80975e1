// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips every tag from s and returns the remaining text
// unescaped, trimmed, for storing user-supplied profile strings.
// Templates escape on output, so the stored value stays literal.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s looks free of markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
