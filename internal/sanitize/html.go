// Package sanitize cleans user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes every tag and attribute.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy keeps basic formatting (p, b, i, em, strong, a, lists, br)
	// and drops scripts, iframes, event handlers and styles.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns trimmed plain text. Entities escaped by
// the policy are decoded again so "Rock & Roll" survives unchanged.
// Use for titles, locations and user names.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// HTML sanitizes rich text, allowing safe formatting tags.
// Use for event descriptions.
func HTML(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}
