package mutf8

import (
	"strings"
	"unicode/utf8"

	"github.com/wippyai/mutf8/errors"
)

// Class identifies the shape of one decoded sequence.
type Class uint8

const (
	ClassASCII         Class = iota // 1 byte, 00-7F
	ClassNUL                        // C0 80
	ClassTwoByte                    // C2-DF + 1 continuation
	ClassThreeByte                  // E0-EF + 2 continuations, not a surrogate
	ClassSurrogatePair              // two 3-byte surrogate halves
)

var classNames = [...]string{
	ClassASCII:         "ascii",
	ClassNUL:           "nul",
	ClassTwoByte:       "2-byte",
	ClassThreeByte:     "3-byte",
	ClassSurrogatePair: "surrogate-pair",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Special reports whether sequences of this class differ between MUTF-8
// and UTF-8.
func (c Class) Special() bool {
	return c == ClassNUL || c == ClassSurrogatePair
}

// Sequence is one decoded scalar value and the bytes it came from.
type Sequence struct {
	Offset int
	Len    int
	Rune   rune
	Class  Class
}

// Decode converts MUTF-8 bytes to text.
//
// When b contains neither C0 80 nor a surrogate pair it is already plain
// UTF-8 and the result borrows it without copying; the borrowed Text is
// only valid while b is left unmodified. Otherwise the result is owned.
//
// Decoding stops at the first invalid sequence. The returned *errors.Error
// has Phase decode, one of the positional kinds, and the byte offset where
// the failing sequence starts.
func Decode(b []byte) (Text, error) {
	var (
		sb    strings.Builder
		owned bool
	)
	sc := scanner{b: b}
	for sc.pos < len(b) {
		if c := b[sc.pos]; c < utf8.RuneSelf {
			if owned {
				sb.WriteByte(c)
			}
			sc.pos++
			continue
		}
		seq, err := sc.next()
		if err != nil {
			return Text{}, err
		}
		switch {
		case seq.Class.Special():
			if !owned {
				owned = true
				sb.Grow(len(b))
				sb.Write(b[:seq.Offset])
			}
			sb.WriteRune(seq.Rune)
		case owned:
			sb.Write(b[seq.Offset : seq.Offset+seq.Len])
		}
	}
	if !owned {
		return Text{s: borrowBytes(b)}, nil
	}
	return Text{s: sb.String(), owned: true}, nil
}

// Valid reports whether b is well-formed MUTF-8. It does not allocate.
func Valid(b []byte) bool {
	sc := scanner{b: b}
	for sc.pos < len(b) {
		if b[sc.pos] < utf8.RuneSelf {
			sc.pos++
			continue
		}
		if _, err := sc.next(); err != nil {
			return false
		}
	}
	return true
}

// Scan walks b sequence by sequence, calling fn for each decoded scalar
// value in order. Scanning stops early when fn returns false. Scan returns
// the same error Decode would for b, after fn has seen every sequence
// before the failure.
func Scan(b []byte, fn func(Sequence) bool) error {
	sc := scanner{b: b}
	for sc.pos < len(b) {
		seq, err := sc.next()
		if err != nil {
			return err
		}
		if !fn(seq) {
			return nil
		}
	}
	return nil
}

// unit is one raw 1-, 2- or 3-byte sequence. Surrogate halves are units
// until they are paired.
type unit struct {
	off   int
	n     int
	value rune
	class Class
}

type scanner struct {
	b   []byte
	pos int
}

// next decodes the sequence at pos and advances past it. The caller must
// ensure pos < len(b).
func (s *scanner) next() (Sequence, error) {
	var (
		high    unit
		pending bool
	)
	for {
		if s.pos >= len(s.b) {
			return Sequence{}, errors.Decode(errors.KindUnpairedSurrogate, high.off, s.b)
		}
		u, kind := decodeUnit(s.b, s.pos)
		if kind != "" {
			if pending {
				return Sequence{}, errors.Decode(errors.KindUnpairedSurrogate, high.off, s.b)
			}
			return Sequence{}, errors.Decode(kind, u.off, s.b)
		}

		switch {
		case pending:
			if !isLowSurrogate(u.value) {
				return Sequence{}, errors.Decode(errors.KindUnpairedSurrogate, high.off, s.b)
			}
			s.pos += u.n
			return Sequence{
				Offset: high.off,
				Len:    high.n + u.n,
				Rune:   combineSurrogates(high.value, u.value),
				Class:  ClassSurrogatePair,
			}, nil
		case isHighSurrogate(u.value):
			high, pending = u, true
			s.pos += u.n
		case isLowSurrogate(u.value):
			return Sequence{}, errors.Decode(errors.KindUnpairedSurrogate, u.off, s.b)
		default:
			s.pos += u.n
			return Sequence{Offset: u.off, Len: u.n, Rune: u.value, Class: u.class}, nil
		}
	}
}

// decodeUnit decodes the raw sequence starting at b[i]. A non-empty kind
// reports why the sequence is invalid.
func decodeUnit(b []byte, i int) (unit, errors.Kind) {
	u := unit{off: i}
	c := b[i]
	switch {
	case c < utf8.RuneSelf:
		u.n, u.value, u.class = 1, rune(c), ClassASCII

	case c == nulLead:
		if i+1 >= len(b) || b[i+1] != nulTrail {
			return u, errors.KindIllegalOverlong
		}
		u.n, u.value, u.class = 2, 0, ClassNUL

	case c == nulLead+1:
		return u, errors.KindIllegalOverlong

	case c >= 0xC2 && c <= 0xDF:
		if i+1 >= len(b) || !isContinuation(b[i+1]) {
			return u, errors.KindTruncatedSequence
		}
		u.n, u.class = 2, ClassTwoByte
		u.value = rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)

	case c >= 0xE0 && c <= 0xEF:
		if i+2 >= len(b) || !isContinuation(b[i+1]) || !isContinuation(b[i+2]) {
			return u, errors.KindTruncatedSequence
		}
		if c == 0xE0 && b[i+1] < 0xA0 {
			return u, errors.KindIllegalOverlong
		}
		u.n, u.class = 3, ClassThreeByte
		u.value = rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)

	default:
		return u, errors.KindInvalidLeadingByte
	}
	return u, ""
}

func isContinuation(c byte) bool {
	return c&0xC0 == 0x80
}

func isHighSurrogate(v rune) bool {
	return v >= surrogateMin && v <= highSurrogateMax
}

func isLowSurrogate(v rune) bool {
	return v >= lowSurrogateMin && v <= surrogateMax
}

func combineSurrogates(hi, lo rune) rune {
	return 0x10000 + (hi-surrogateMin)<<10 + (lo - lowSurrogateMin)
}
