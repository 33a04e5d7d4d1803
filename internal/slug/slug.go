// Package slug builds and validates URL-safe identifiers.
package slug

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug accepted.
const MaxLength = 200

var (
	ErrEmpty    = errors.New("slug is empty")
	ErrTooLong  = errors.New("slug is too long")
	ErrAlphabet = errors.New("slug contains characters outside [a-z0-9_-]")
)

// Make derives a slug from a display name: accents are stripped, letters are
// lower-cased and every run of other characters collapses to a single dash.
func Make(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(name) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			dash = false
		default:
			if b.Len() > 0 && !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	s := strings.TrimRight(b.String(), "-")
	if len(s) > MaxLength {
		s = strings.TrimRight(s[:MaxLength], "-")
	}
	return s
}

// Normalize cleans an untrusted slug: surrounding whitespace is removed and
// letters are lower-cased. Anything left outside the slug alphabet is rejected
// rather than rewritten.
func Normalize(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", ErrEmpty
	}
	if len(s) > MaxLength {
		return "", ErrTooLong
	}
	for i := 0; i < len(s); i++ {
		if !isSlugByte(s[i]) {
			return "", ErrAlphabet
		}
	}
	return s, nil
}

func isSlugByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}
