package syntax

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Unescape decodes the escape sequences of a JavaScript string or template
// body (without the surrounding quotes). Malformed escapes are kept as
// written.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}

		next := s[i+1]
		switch next {
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'v':
			b.WriteByte('\v')
			i += 2
		case '0':
			b.WriteByte(0)
			i += 2
		case '\n':
			// line continuation
			i += 2
		case '\r':
			i += 2
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case 'x':
			if r, ok := parseHex(s, i+2, 2); ok {
				b.WriteRune(r)
				i += 4
				continue
			}
			b.WriteString(`\x`)
			i += 2
		case 'u':
			r, width := decodeUnicodeEscape(s, i)
			if width == 0 {
				b.WriteString(`\u`)
				i += 2
				continue
			}
			// high surrogate followed by \uDC00-\uDFFF forms one code point
			if utf16.IsSurrogate(r) {
				if lo, w2 := decodeUnicodeEscape(s, i+width); w2 > 0 {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						b.WriteRune(pair)
						i += width + w2
						continue
					}
				}
			}
			b.WriteRune(r)
			i += width
		default:
			r, size := utf8.DecodeRuneInString(s[i+1:])
			b.WriteRune(r)
			i += 1 + size
		}
	}

	return b.String()
}

// decodeUnicodeEscape decodes \uHHHH or \u{H...} starting at s[i] == '\\'.
// It returns the rune and the number of bytes consumed, or width 0.
func decodeUnicodeEscape(s string, i int) (rune, int) {
	if i+1 >= len(s) || s[i] != '\\' || s[i+1] != 'u' {
		return 0, 0
	}
	if i+2 < len(s) && s[i+2] == '{' {
		end := strings.IndexByte(s[i+3:], '}')
		if end <= 0 || end > 6 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[i+3:i+3+end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), 3 + end + 1
	}
	r, ok := parseHex(s, i+2, 4)
	if !ok {
		return 0, 0
	}
	return r, 6
}

func parseHex(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
