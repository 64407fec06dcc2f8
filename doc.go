// Package mutf8 converts between UTF-8 and Modified UTF-8 (MUTF-8).
//
// MUTF-8 is the string encoding of JVM class files, JNI and
// java.io.DataOutput.writeUTF. It differs from UTF-8 in two places only:
//
//	Scalar value         UTF-8      MUTF-8
//	────────────────────────────────────────────────────────────
//	U+0000               00         C0 80
//	U+10000..U+10FFFF    4 bytes    6 bytes (surrogate pair, 3+3)
//
// Every other scalar value has the same bytes in both encodings.
//
// # Borrowed and Owned Results
//
// Encode returns Bytes and Decode returns Text. Both are either borrowed
// (a view over the input, no allocation) or owned (a fresh buffer):
//
//	b := mutf8.Encode("hello")     // b.Borrowed() == true
//	b = mutf8.Encode("a\x00b")     // b.Owned() == true, 61 c0 80 62
//
//	t, err := mutf8.Decode(data)   // borrowed when data is plain UTF-8
//
// A borrowed Text aliases the decoded slice and is invalid once that slice
// is modified. A borrowed Bytes aliases string memory and must never be
// modified. Clone converts either to an owned value.
//
// # Decoding
//
// Decode is a single forward pass over the input. The only state carried
// between sequences is a pending high surrogate awaiting its low half.
// Decoding stops at the first invalid sequence with an *errors.Error of
// one of these kinds:
//
//	invalid_leading_byte   80-BF or F0-FF where a sequence must start
//	truncated_sequence     missing or bad continuation byte
//	illegal_overlong       C0 not followed by 80, C1, or E0 80-9F
//	unpaired_surrogate     high surrogate without a low half, or a lone low
//
// Error.Offset is the offset of the failing sequence's first byte.
//
// # Framing
//
// AppendPrefixed and CutPrefixed handle the u16 big-endian length prefix
// used by DataOutput.writeUTF and class-file constant pools.
//
// # Thread Safety
//
// All functions are stateless and safe for concurrent use.
package mutf8
