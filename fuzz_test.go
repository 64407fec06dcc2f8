package mutf8

import (
	"bytes"
	stderrors "errors"
	"testing"
	"unicode/utf8"

	"github.com/wippyai/mutf8/errors"
)

func FuzzRoundTrip(f *testing.F) {
	seeds := []string{"", "hello", "\x00", "\U00010401", "a\x00\U0001F600b", "é€✓"}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, s string) {
		if !utf8.ValidString(s) {
			t.Skip()
		}
		enc := Encode(s)
		if enc.Len() != EncodedLen(s) {
			t.Fatalf("EncodedLen = %d, encoded %d", EncodedLen(s), enc.Len())
		}
		if enc.Borrowed() != Compatible(s) {
			t.Fatalf("Borrowed = %v, Compatible = %v", enc.Borrowed(), Compatible(s))
		}
		if bytes.IndexByte(enc.Bytes(), 0) >= 0 {
			t.Fatal("MUTF-8 output contains a raw NUL")
		}
		dec, err := Decode(enc.Bytes())
		if err != nil {
			t.Fatalf("Decode(Encode(%q)): %v", s, err)
		}
		if dec.String() != s {
			t.Fatalf("round trip = %q, want %q", dec.String(), s)
		}
	})
}

func FuzzDecode(f *testing.F) {
	seeds := [][]byte{
		{},
		{0xC0, 0x80},
		{0xED, 0xA0, 0x81, 0xED, 0xB0, 0x81},
		{0xED, 0xA0, 0x81},
		{0xC0, 0x81},
		{0xF0, 0x9F, 0x98, 0x80},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, b []byte) {
		dec, err := Decode(b)
		if Valid(b) != (err == nil) {
			t.Fatalf("Valid = %v, Decode err = %v", Valid(b), err)
		}
		if err != nil {
			var e *errors.Error
			if !stderrors.As(err, &e) || !e.Kind.Positional() {
				t.Fatalf("unexpected error %v", err)
			}
			if e.Offset < 0 || e.Offset >= len(b) {
				t.Fatalf("offset %d outside input of %d bytes", e.Offset, len(b))
			}
			return
		}
		if !utf8.ValidString(dec.String()) {
			t.Fatalf("decoded text is not valid UTF-8: %q", dec.String())
		}
		if dec.Borrowed() && !bytes.Equal([]byte(dec.String()), b) {
			t.Fatal("borrowed text differs from input")
		}
		// Raw NUL bytes decode but re-encode as C0 80, so only NUL-free
		// inputs are byte-identical after a round trip.
		if bytes.IndexByte(b, 0) < 0 {
			if re := Encode(dec.String()); !bytes.Equal(re.Bytes(), b) {
				t.Fatalf("re-encode = % x, want % x", re.Bytes(), b)
			}
		}
	})
}
