package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode Phase = "encode" // text to MUTF-8, rejecting ill-formed UTF-8
	PhaseDecode Phase = "decode" // MUTF-8 to text
	PhaseFrame  Phase = "frame"  // length-prefixed framing
	PhaseLift   Phase = "lift"   // guest memory to Go
	PhaseLower  Phase = "lower"  // Go to guest memory
	PhaseConfig Phase = "config" // CLI configuration
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidLeadingByte Kind = "invalid_leading_byte"
	KindTruncatedSequence  Kind = "truncated_sequence"
	KindIllegalOverlong    Kind = "illegal_overlong"
	KindUnpairedSurrogate  Kind = "unpaired_surrogate"

	KindTypeMismatch Kind = "type_mismatch"
	KindInvalidUTF8  Kind = "invalid_utf8"
	KindOverflow     Kind = "overflow"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindAllocation   Kind = "allocation"
	KindInvalidData  Kind = "invalid_data"
	KindUnsupported  Kind = "unsupported"
	KindInvalidInput Kind = "invalid_input"
)

// Positional reports whether errors of this kind carry a byte offset.
func (k Kind) Positional() bool {
	switch k {
	case KindInvalidLeadingByte, KindTruncatedSequence, KindIllegalOverlong, KindUnpairedSurrogate:
		return true
	}
	return false
}

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	WitType string
	Detail  string
	Path    []string
	// Offset is the byte offset of the offending sequence. Only meaningful
	// when Kind.Positional() is true.
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Kind.Positional() {
		b.WriteString(" at byte ")
		b.WriteString(strconv.Itoa(e.Offset))
	}

	if e.GoType != "" || e.WitType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.WitType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", WIT type ")
			b.WriteString(e.WitType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("WIT type ")
			b.WriteString(e.WitType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.WitType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// WitType sets the WIT type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Offset sets the byte offset
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

const previewLen = 8

// Decode creates a positional decode error for the sequence starting at
// offset. Value holds the leading byte, Detail a hex preview of the bytes
// from offset on.
func Decode(kind Kind, offset int, data []byte) *Error {
	e := &Error{
		Phase:  PhaseDecode,
		Kind:   kind,
		Offset: offset,
	}
	if offset >= 0 && offset < len(data) {
		preview := data[offset:]
		if len(preview) > previewLen {
			preview = preview[:previewLen]
		}
		e.Value = data[offset]
		e.Detail = fmt.Sprintf("bytes % x", preview)
	} else {
		e.Detail = "unexpected end of input"
	}
	return e
}

// Rebase returns a copy of err with its offset shifted by delta and the
// given phase and path applied. Non-positional and foreign errors are
// returned unchanged.
func Rebase(err error, delta int, phase Phase, path []string) error {
	e, ok := err.(*Error)
	if !ok || !e.Kind.Positional() {
		return err
	}
	out := *e
	out.Offset += delta
	out.Phase = phase
	if path != nil {
		out.Path = path
	}
	return &out
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, witType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		Path:    path,
		GoType:  goType,
		WitType: witType,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, limit),
		Value:  value,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
