package mutf8

import (
	"strings"
	"unsafe"
)

// Bytes is the result of Encode: either a borrowed view over the input
// string's bytes or an independently owned buffer.
//
// A borrowed Bytes aliases immutable string memory and must not be
// modified. Use Clone for a mutable copy.
type Bytes struct {
	data  []byte
	owned bool
}

// Borrowed reports whether b aliases the encoded string.
func (b Bytes) Borrowed() bool { return !b.owned }

// Owned reports whether b holds a freshly allocated buffer.
func (b Bytes) Owned() bool { return b.owned }

// Bytes returns the MUTF-8 bytes. The slice must not be modified when b is
// borrowed.
func (b Bytes) Bytes() []byte { return b.data }

// Len returns the number of MUTF-8 bytes.
func (b Bytes) Len() int { return len(b.data) }

// Clone returns an owned copy of b.
func (b Bytes) Clone() Bytes {
	if b.data == nil {
		return Bytes{owned: true}
	}
	c := make([]byte, len(b.data))
	copy(c, b.data)
	return Bytes{data: c, owned: true}
}

// Text is the result of Decode: either a borrowed view over the input
// bytes or an independently owned string.
//
// A borrowed Text shares memory with the decoded slice and is only valid
// while that slice is left unmodified. Use Clone before mutating or
// reusing the input.
type Text struct {
	s     string
	owned bool
}

// Borrowed reports whether t aliases the decoded byte slice.
func (t Text) Borrowed() bool { return !t.owned }

// Owned reports whether t holds a freshly allocated string.
func (t Text) Owned() bool { return t.owned }

// String returns the decoded text.
func (t Text) String() string { return t.s }

// Len returns the length of the decoded text in UTF-8 bytes.
func (t Text) Len() int { return len(t.s) }

// Clone returns an owned copy of t.
func (t Text) Clone() Text {
	if t.owned {
		return t
	}
	return Text{s: strings.Clone(t.s), owned: true}
}

func borrowString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func borrowBytes(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}
