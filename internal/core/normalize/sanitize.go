package normalize

import (
	"strings"
	"unicode/utf8"
)

// Sanitize removes runes that must never reach storage or matching:
// NUL, ASCII controls other than '\n', '\r', '\t', DEL, and the C1 control
// block U+0080..U+009F. Invalid UTF-8 bytes are dropped as well.
// Returns s unchanged when nothing needs cleaning
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	clean := true
	for i := 0; i < len(s); {
		b := s[i]
		if b < 0x20 && b != '\n' && b != '\r' && b != '\t' {
			clean = false
			break
		}
		if b == 0x7F {
			clean = false
			break
		}
		if b < 0x80 {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || (r >= 0x80 && r <= 0x9F) {
			clean = false
			break
		}
		i += size
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c < 0x20 {
			if c == '\n' || c == '\r' || c == '\t' {
				b.WriteByte(c)
			}
			i++
			continue
		}
		if c == 0x7F {
			i++
			continue
		}
		if c < 0x80 {
			b.WriteByte(c)
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if r >= 0x80 && r <= 0x9F {
			i += size
			continue
		}
		b.WriteString(s[i : i+size])
		i += size
	}
	return b.String()
}
