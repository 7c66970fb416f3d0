package notify

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxSanitizePasses bounds how many layers of entity escaping are peeled.
const maxSanitizePasses = 8

// PlainText strips all markup from server-supplied text and collapses runs of
// whitespace. Entities are decoded so "&amp;" comes back as "&"; markup that
// only appears after decoding ("&lt;b&gt;") is stripped as well.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}
