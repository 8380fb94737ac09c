// Package sanitize cleans user supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy strips markup from short fields and keeps safe formatting in long-form content.
type Policy struct {
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

// New builds the default Policy.
func New() *Policy {
	return &Policy{
		strict: bluemonday.StrictPolicy(),
		ugc:    bluemonday.UGCPolicy(),
	}
}

// Text removes all HTML and trims surrounding whitespace. Used for titles, tags and comments.
// The result is plain text: entities the strict policy emits are decoded again, so "R&D"
// is stored as typed and must be escaped by whoever renders it as HTML.
func (p *Policy) Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(p.strict.Sanitize(s)))
}

// RichText keeps user-generated-content markup (links, emphasis, lists) and drops scripts,
// event handlers and other active content.
func (p *Policy) RichText(s string) string {
	return strings.TrimSpace(p.ugc.Sanitize(s))
}
