package fields

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy

	richOnce   sync.Once
	richPolicy *bluemonday.Policy
)

// PlainText strips every tag from a rich text value and unescapes entities.
func PlainText(markup string) string {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return html.UnescapeString(strictPolicy.Sanitize(markup))
}

// SanitizeHTML keeps the formatting subset a clinical note may carry and
// drops scripts, handlers and unknown elements.
func SanitizeHTML(markup string) string {
	richOnce.Do(func() {
		policy := bluemonday.NewPolicy()
		policy.AllowElements(
			"p", "br", "strong", "b", "em", "i", "u", "s",
			"ul", "ol", "li", "blockquote", "h3", "h4", "span",
		)
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowElements("a")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.RequireNoFollowOnLinks(true)
		richPolicy = policy
	})
	return strings.TrimSpace(richPolicy.Sanitize(markup))
}
