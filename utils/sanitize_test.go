package utils

import (
	"strings"
	"testing"
)

func TestPostSanitizerDisabledPassesThrough(t *testing.T) {
	in := `<script>alert(1)</script>hi`
	if got := NewPostSanitizer(false).Sanitize(in); got != in {
		t.Fatalf("Sanitize = %q", got)
	}
	var zero PostSanitizer
	if got := zero.Sanitize(in); got != in {
		t.Fatalf("zero value Sanitize = %q", got)
	}
}

func TestPostSanitizerStripsScripts(t *testing.T) {
	got := NewPostSanitizer(true).Sanitize(`<b>bold</b><script>alert(1)</script>`)
	if strings.Contains(got, "<script") {
		t.Fatalf("script survived: %q", got)
	}
	if !strings.Contains(got, "<b>bold</b>") {
		t.Fatalf("safe markup dropped: %q", got)
	}
}
