// Package htmlsanitize cleans text that arrives from the API before the
// console hands it to the browser.
//
// Business names, ticket subjects and backend messages are free text typed
// by end users; FAQ answers are rich text written in the CMS.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	rich   *bluemonday.Policy
	strict *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		rich = bluemonday.UGCPolicy()
		rich.AllowAttrs("class").OnElements("table", "tr", "td", "th")
		strict = bluemonday.StrictPolicy()
	})
	return rich, strict
}

// Sanitize keeps safe formatting markup and removes scripts, event handlers
// and dangerous URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return p.Sanitize(s)
}

// PlainText strips every tag and returns unescaped text suitable for a
// JSON string field that the client inserts as a text node.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// IsPlainText reports whether s contains no markup at all.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}
