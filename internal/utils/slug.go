package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single dashes.
func Slugify(name string) string {

	var b strings.Builder
	lastDash := true // suppress a leading dash

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
