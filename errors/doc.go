// Package errors provides structured error types for the mutf8 module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// Decode kinds are positional: they carry the byte offset of the sequence that
// failed.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLift, errors.KindOverflow).
//		Path("names", "[3]").
//		WitType("string").
//		Detail("string size %d exceeds maximum %d", n, max).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Decode(errors.KindIllegalOverlong, 4, data)
//	err := errors.OutOfBounds(errors.PhaseLift, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind only:
//
//	stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnpairedSurrogate})
package errors
