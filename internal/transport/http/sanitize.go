package http

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	pinPattern  = regexp.MustCompile(`^\d{6}$`)
	namePattern = regexp.MustCompile(`^[a-zA-Z0-9\s.\-_àáâäèéêëìíîïòóôöùúûüñç]+$`)
	spacesRun   = regexp.MustCompile(`\s+`)
)

// ValidPin reports whether a PIN is exactly six decimal digits.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

// SanitizePlayerName validates and cleans a raw player name. Returns the
// sanitized name and false if the input is unusable. Names are 2-20
// characters from a conservative allowlist, HTML-escaped, with
// whitespace runs collapsed.
func SanitizePlayerName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	// Length limits count characters, not bytes; the allowlist admits
	// multi-byte letters.
	if n := utf8.RuneCountInString(name); n < 2 || n > 20 {
		return "", false
	}
	if !namePattern.MatchString(name) {
		return "", false
	}
	name = html.EscapeString(name)
	name = spacesRun.ReplaceAllString(name, " ")
	return name, true
}

// SanitizeAnswer trims, caps at 500 characters, and HTML-escapes a
// submitted answer. The cap cuts on rune boundaries so a multi-byte
// character is never split.
func SanitizeAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	if utf8.RuneCountInString(answer) > 500 {
		answer = string([]rune(answer)[:500])
	}
	return html.EscapeString(answer)
}
