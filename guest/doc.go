// Package guest moves MUTF-8 strings across WebAssembly linear memory.
//
// Guests that keep strings in Modified UTF-8 (JVM-on-WASM runtimes,
// class-file tooling compiled to WASM) pass them to the host as a
// (ptr, len) pair over linear memory, following the Canonical ABI layout
// used for WIT strings. The Decoder lifts such pairs into Go strings and
// the Encoder lowers Go strings into guest-allocated MUTF-8 buffers.
//
// # Supported Types
//
//	WIT type        Go type     Flat values
//	───────────────────────────────────────
//	string          string      ptr, len
//	list<string>    []string    ptr, len (len = element count)
//
// List elements are 8-byte little-endian (ptr, len) records, 4-byte aligned.
//
// # Copy and Zero-Copy Modes
//
//	dec := guest.NewDecoderWithOptions(guest.Options{ZeroCopy: true, ...})
//
// In copy mode (the default) every lifted string lives on the Go heap. In
// zero-copy mode a string that needed no MUTF-8 transformation points
// straight into guest memory and is only valid until that memory is
// written, grown or closed. Strings containing U+0000 or surrogate pairs
// are always copied, since their UTF-8 form differs from the guest bytes.
//
// # wazero
//
// WrapMemory and WrapAllocator adapt a wazero instance's memory and its
// cabi_realloc export:
//
//	mem := guest.WrapMemory(mod.Memory())
//	alloc := guest.WrapAllocator(ctx, mod.ExportedFunction("cabi_realloc"))
//
// # Errors
//
// Decode failures come back as *errors.Error with Phase lift, the
// positional kind from the codec, Offset relative to the start of the
// string and Path naming the list element, for example:
//
//	[lift] unpaired_surrogate at [2] at byte 5: bytes ed a0 81
//
// # Thread Safety
//
// Encoder and Decoder hold only immutable options and may be shared.
// Concurrent use is as safe as the Memory and Allocator passed in.
package guest
