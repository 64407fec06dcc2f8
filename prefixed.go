package mutf8

import (
	"encoding/binary"

	"github.com/wippyai/mutf8/errors"
)

// MaxPrefixedLen is the largest MUTF-8 payload a u16 length prefix can
// describe.
const MaxPrefixedLen = 0xFFFF

// PrefixSize is the length of the u16 header in front of a frame body.
const PrefixSize = 2

// AppendPrefixed appends s as a big-endian u16 byte count followed by its
// MUTF-8 bytes, the layout of DataOutput.writeUTF and class-file
// CONSTANT_Utf8 entries. If the encoding exceeds MaxPrefixedLen bytes dst
// is returned unchanged with an overflow error.
func AppendPrefixed(dst []byte, s string) ([]byte, error) {
	n := EncodedLen(s)
	if n > MaxPrefixedLen {
		return dst, errors.New(errors.PhaseFrame, errors.KindOverflow).
			Value(n).
			Detail("encoded length %d exceeds maximum %d", n, MaxPrefixedLen).
			Build()
	}
	dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	return appendEncoded(dst, s), nil
}

// SplitPrefixed splits one length-prefixed frame from the front of b into
// its MUTF-8 body and the bytes that follow, without decoding the body.
// On error b is returned unconsumed as rest.
func SplitPrefixed(b []byte) (body, rest []byte, err error) {
	if len(b) < PrefixSize {
		return nil, b, errors.New(errors.PhaseFrame, errors.KindTruncatedSequence).
			Offset(len(b)).
			Detail("need %d length bytes, have %d", PrefixSize, len(b)).
			Build()
	}
	n := int(binary.BigEndian.Uint16(b))
	if len(b)-PrefixSize < n {
		return nil, b, errors.New(errors.PhaseFrame, errors.KindTruncatedSequence).
			Offset(len(b)).
			Detail("length prefix %d exceeds remaining %d bytes", n, len(b)-PrefixSize).
			Build()
	}
	return b[PrefixSize : PrefixSize+n], b[PrefixSize+n:], nil
}

// CutPrefixed decodes one length-prefixed string from the front of b and
// returns it with the bytes that follow. Error offsets are relative to b.
// A borrowed result aliases b.
func CutPrefixed(b []byte) (Text, []byte, error) {
	body, rest, err := SplitPrefixed(b)
	if err != nil {
		return Text{}, b, err
	}
	t, err := Decode(body)
	if err != nil {
		return Text{}, b, errors.Rebase(err, PrefixSize, errors.PhaseFrame, nil)
	}
	return t, rest, nil
}
