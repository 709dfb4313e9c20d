package event

import (
	"fmt"
	"unicode"
)

// ValidIdentifier reports whether s is a bare identifier: a letter or
// underscore followed by letters, digits or underscores.
func ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// CheckIdentifier returns ErrInvalidIdentifier wrapped with s when s is not
// a valid identifier.
func CheckIdentifier(s string) error {
	if !ValidIdentifier(s) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, s)
	}
	return nil
}
