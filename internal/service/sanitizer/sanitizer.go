package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TitleSanitizer reduces stored titles to plain text. Category and page
// titles may carry markup from the editor; menus only show their text.
//
// Thread-safe for concurrent use.
type TitleSanitizer struct {
	policy *bluemonday.Policy
}

// NewTitleSanitizer creates a sanitizer that strips all HTML.
func NewTitleSanitizer() *TitleSanitizer {
	return &TitleSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text strips every tag and returns unescaped text, ready to be escaped
// once by the template that prints it.
func (s *TitleSanitizer) Text(title string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(title)))
}
