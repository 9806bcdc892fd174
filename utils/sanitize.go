package utils

import "github.com/microcosm-cc/bluemonday"

// PostSanitizer strips unsafe HTML from user text. The zero value passes text through.
type PostSanitizer struct {
	policy *bluemonday.Policy
}

// NewPostSanitizer returns a sanitizer using the user-generated-content policy
// when enabled, or a pass-through one otherwise. Enabled sanitizing rewrites
// text: disallowed markup is dropped and bare & < > become entities, so the
// stored text can differ from the input and be longer than it.
func NewPostSanitizer(enabled bool) PostSanitizer {
	if !enabled {
		return PostSanitizer{}
	}
	return PostSanitizer{policy: bluemonday.UGCPolicy()}
}

// Sanitize cleans HTML content to prevent XSS attacks.
func (s PostSanitizer) Sanitize(input string) string {
	if s.policy == nil {
		return input
	}
	return s.policy.Sanitize(input)
}
