package mutf8

import (
	"unicode/utf16"
	"unicode/utf8"
)

const (
	nulLead  = 0xC0
	nulTrail = 0x80

	maxBMP = 0xFFFF

	surrogateMin     = 0xD800
	highSurrogateMax = 0xDBFF
	lowSurrogateMin  = 0xDC00
	surrogateMax     = 0xDFFF
)

// Encode converts UTF-8 text to MUTF-8.
//
// When s contains no U+0000 and no supplementary-plane character its UTF-8
// bytes are already MUTF-8, and the result borrows them without copying.
// Otherwise the result is an owned buffer: U+0000 becomes C0 80 and each
// supplementary-plane character becomes a 6-byte surrogate pair.
//
// Encode never fails. Ill-formed UTF-8 in s is a caller error; each
// ill-formed byte is encoded as U+FFFD.
func Encode(s string) Bytes {
	i := firstSpecial(s)
	if i < 0 {
		return Bytes{data: borrowString(s)}
	}
	buf := make([]byte, i, EncodedLen(s))
	copy(buf, s[:i])
	return Bytes{data: appendEncoded(buf, s[i:]), owned: true}
}

// AppendEncode appends the MUTF-8 encoding of s to dst and returns the
// extended slice.
func AppendEncode(dst []byte, s string) []byte {
	return appendEncoded(dst, s)
}

// EncodedLen returns the number of bytes Encode(s) produces.
func EncodedLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c == 0 {
				n += 2
			} else {
				n++
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r > maxBMP:
			n += 6
		case r == utf8.RuneError && size == 1:
			n += 3
		default:
			n += size
		}
		i += size
	}
	return n
}

// Compatible reports whether the UTF-8 bytes of s are already valid MUTF-8,
// which is exactly when Encode(s) returns a borrowed result.
func Compatible(s string) bool {
	return firstSpecial(s) < 0
}

// firstSpecial returns the offset of the first sequence in s whose MUTF-8
// form differs from its UTF-8 form, or -1.
func firstSpecial(s string) int {
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c == 0 {
				return i
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r > maxBMP || (r == utf8.RuneError && size == 1) {
			return i
		}
		i += size
	}
	return -1
}

func appendEncoded(dst []byte, s string) []byte {
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c == 0 {
				dst = append(dst, nulLead, nulTrail)
			} else {
				dst = append(dst, c)
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r > maxBMP:
			hi, lo := utf16.EncodeRune(r)
			dst = appendUnit(appendUnit(dst, hi), lo)
		case r == utf8.RuneError && size == 1:
			dst = utf8.AppendRune(dst, utf8.RuneError)
		default:
			dst = append(dst, s[i:i+size]...)
		}
		i += size
	}
	return dst
}

// appendUnit writes a 16-bit value as a 3-byte sequence. utf8.AppendRune
// refuses surrogate halves, so the bits are laid out by hand.
func appendUnit(dst []byte, u rune) []byte {
	return append(dst,
		0xE0|byte(u>>12),
		0x80|byte(u>>6)&0x3F,
		0x80|byte(u)&0x3F,
	)
}
