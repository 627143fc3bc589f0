// Package htmlsanitize strips markup from free-text fields (club and
// event descriptions) before they are stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every HTML tag and trims the result. Text content of
// script and style elements is dropped along with the element. Entities
// the policy escaped are decoded again: values are served as JSON, not HTML.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
