package mutf8

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/mutf8/errors"
)

func TestAppendPrefixed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{"empty", "", []byte{0, 0}},
		{"ascii", "hi", []byte{0, 2, 'h', 'i'}},
		{"nul", "\x00", []byte{0, 2, 0xC0, 0x80}},
		{"supplementary", "\U00010401", []byte{0, 6, 0xED, 0xA0, 0x81, 0xED, 0xB0, 0x81}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AppendPrefixed(nil, tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("AppendPrefixed(%q) = % x, want % x", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppendPrefixed_Limit(t *testing.T) {
	atLimit := strings.Repeat("a", MaxPrefixedLen)
	out, err := AppendPrefixed(nil, atLimit)
	if err != nil {
		t.Fatalf("payload of exactly %d bytes should fit: %v", MaxPrefixedLen, err)
	}
	if out[0] != 0xFF || out[1] != 0xFF {
		t.Errorf("prefix = % x, want ff ff", out[:2])
	}

	// The NUL pushes the encoded form one byte over the limit even though
	// the UTF-8 form fits.
	over := strings.Repeat("a", MaxPrefixedLen-1) + "\x00"
	dst := []byte{1, 2, 3}
	got, err := AppendPrefixed(dst, over)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseFrame, Kind: errors.KindOverflow}) {
		t.Fatalf("err = %v, want frame overflow", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("dst changed on error: % x", got)
	}
}

func TestCutPrefixed(t *testing.T) {
	var buf []byte
	var err error
	inputs := []string{"first", "", "a\x00b", "\U0001F600"}
	for _, s := range inputs {
		buf, err = AppendPrefixed(buf, s)
		if err != nil {
			t.Fatal(err)
		}
	}
	buf = append(buf, 0xAA)

	rest := buf
	for _, want := range inputs {
		var txt Text
		txt, rest, err = CutPrefixed(rest)
		if err != nil {
			t.Fatalf("CutPrefixed: %v", err)
		}
		if txt.String() != want {
			t.Errorf("got %q, want %q", txt.String(), want)
		}
	}
	if !bytes.Equal(rest, []byte{0xAA}) {
		t.Errorf("rest = % x, want aa", rest)
	}
}

func TestCutPrefixed_Errors(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		kind   errors.Kind
		offset int
	}{
		{"no header", nil, errors.KindTruncatedSequence, 0},
		{"half header", []byte{0}, errors.KindTruncatedSequence, 1},
		{"short body", []byte{0, 4, 'a', 'b'}, errors.KindTruncatedSequence, 4},
		{"bad body rebased", []byte{0, 3, 'a', 0xC0, 0x81}, errors.KindIllegalOverlong, 3},
		{"unpaired in body", []byte{0, 4, 'x', 0xED, 0xA0, 0x81}, errors.KindUnpairedSurrogate, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rest, err := CutPrefixed(tt.in)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("err = %v, want *errors.Error", err)
			}
			if e.Phase != errors.PhaseFrame || e.Kind != tt.kind {
				t.Errorf("got %s/%s, want frame/%s", e.Phase, e.Kind, tt.kind)
			}
			if e.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", e.Offset, tt.offset)
			}
			if !bytes.Equal(rest, tt.in) {
				t.Error("input should be returned unconsumed on error")
			}
		})
	}
}

func TestSplitPrefixed(t *testing.T) {
	in := []byte{0, 3, 'a', 0xC0, 0x80, 0xFF}
	body, rest, err := SplitPrefixed(in)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(body, []byte{'a', 0xC0, 0x80}) || !bytes.Equal(rest, []byte{0xFF}) {
		t.Errorf("body = % x rest = % x", body, rest)
	}

	// the body is not decoded
	body, _, err = SplitPrefixed([]byte{0, 1, 0x80})
	if err != nil || !bytes.Equal(body, []byte{0x80}) {
		t.Errorf("body = % x, err = %v", body, err)
	}

	for _, short := range [][]byte{nil, {0}, {0, 4, 'a'}} {
		body, rest, err := SplitPrefixed(short)
		var e *errors.Error
		if !stderrors.As(err, &e) || e.Phase != errors.PhaseFrame || e.Kind != errors.KindTruncatedSequence {
			t.Errorf("SplitPrefixed(% x) err = %v", short, err)
			continue
		}
		if e.Offset != len(short) || body != nil || len(rest) != len(short) {
			t.Errorf("SplitPrefixed(% x) = % x, % x at %d", short, body, rest, e.Offset)
		}
	}
}
