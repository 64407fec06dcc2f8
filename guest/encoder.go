package guest

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/mutf8"
	"github.com/wippyai/mutf8/errors"
)

// Encoder lowers Go strings into guest memory as MUTF-8.
type Encoder struct {
	opts Options
}

func NewEncoder() *Encoder {
	return NewEncoderWithOptions(DefaultOptions())
}

func NewEncoderWithOptions(opts Options) *Encoder {
	return &Encoder{opts: opts}
}

// Options returns the configuration.
func (e *Encoder) Options() Options {
	return e.opts
}

// LowerString allocates guest memory for s, writes its MUTF-8 bytes and
// returns the flattened (ptr, len) pair. Allocations are recorded in
// allocList when it is non-nil.
func (e *Encoder) LowerString(s string, mem Memory, alloc Allocator, allocList *AllocationList) ([]uint64, error) {
	ptr, n, err := e.lowerString(s, mem, alloc, allocList, nil)
	if err != nil {
		return nil, err
	}
	return []uint64{uint64(ptr), uint64(n)}, nil
}

// EncodeStringToMemory lowers s and stores its (ptr, len) pair at addr.
func (e *Encoder) EncodeStringToMemory(addr uint32, s string, mem Memory, alloc Allocator, allocList *AllocationList) error {
	ptr, n, err := e.lowerString(s, mem, alloc, allocList, nil)
	if err != nil {
		return err
	}
	if err := mem.WriteU32(addr, ptr); err != nil {
		return errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write string pointer")
	}
	if err := mem.WriteU32(addr+4, n); err != nil {
		return errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write string length")
	}
	return nil
}

// Lower lowers a string for WIT type string or a []string for
// list<string>, returning the flattened values.
func (e *Encoder) Lower(t wit.Type, v any, mem Memory, alloc Allocator, allocList *AllocationList) ([]uint64, error) {
	return e.lowerValue(t, v, mem, alloc, allocList, nil)
}

func (e *Encoder) lowerValue(t wit.Type, v any, mem Memory, alloc Allocator, allocList *AllocationList, path []string) ([]uint64, error) {
	switch t := t.(type) {
	case wit.String:
		s, ok := v.(string)
		if !ok {
			return nil, errors.TypeMismatch(errors.PhaseLower, path, fmt.Sprintf("%T", v), "string")
		}
		ptr, n, err := e.lowerString(s, mem, alloc, allocList, path)
		if err != nil {
			return nil, err
		}
		return []uint64{uint64(ptr), uint64(n)}, nil
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.List:
			if _, ok := kind.Type.(wit.String); ok {
				list, ok := v.([]string)
				if !ok {
					return nil, errors.TypeMismatch(errors.PhaseLower, path, fmt.Sprintf("%T", v), "list<string>")
				}
				return e.lowerStringList(list, mem, alloc, allocList, path)
			}
		case wit.Type:
			return e.lowerValue(kind, v, mem, alloc, allocList, path)
		}
	}
	return nil, errors.Unsupported(errors.PhaseLower, fmt.Sprintf("WIT type %T", t))
}

func (e *Encoder) lowerStringList(list []string, mem Memory, alloc Allocator, allocList *AllocationList, path []string) ([]uint64, error) {
	if len(list) == 0 {
		return []uint64{0, 0}, nil
	}
	if uint64(len(list)) > uint64(e.opts.MaxListLength) {
		return nil, errors.New(errors.PhaseLower, errors.KindOverflow).
			Path(path...).
			WitType("list<string>").
			Detail("list length %d exceeds maximum %d", len(list), e.opts.MaxListLength).
			Build()
	}
	metaLen64 := uint64(len(list)) * stringRecordSize
	if metaLen64 > math.MaxUint32 {
		return nil, errors.Overflow(errors.PhaseLower, path, metaLen64, "u32 list size")
	}
	metaLen := uint32(metaLen64)

	metaAddr, err := alloc.Alloc(metaLen, 4)
	if err != nil {
		return nil, allocationError(path, metaLen, 4, err)
	}
	if allocList != nil {
		allocList.Add(metaAddr, metaLen, 4)
	}

	metadata := make([]byte, metaLen)
	for i, s := range list {
		elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
		ptr, n, err := e.lowerString(s, mem, alloc, allocList, elemPath)
		if err != nil {
			return nil, err
		}
		rec := metadata[i*stringRecordSize:]
		binary.LittleEndian.PutUint32(rec, ptr)
		binary.LittleEndian.PutUint32(rec[4:], n)
	}

	if err := mem.Write(metaAddr, metadata); err != nil {
		return nil, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write list elements")
	}
	return []uint64{uint64(metaAddr), uint64(len(list))}, nil
}

func (e *Encoder) lowerString(s string, mem Memory, alloc Allocator, allocList *AllocationList, path []string) (uint32, uint32, error) {
	if !utf8.ValidString(s) {
		return 0, 0, errors.InvalidUTF8(errors.PhaseEncode, path, []byte(s))
	}

	if s == "" {
		return 0, 0, nil
	}

	n := mutf8.EncodedLen(s)
	if uint64(n) > uint64(e.opts.MaxStringSize) {
		return 0, 0, errors.New(errors.PhaseLower, errors.KindOverflow).
			Path(path...).
			WitType("string").
			Detail("string size %d exceeds maximum %d", n, e.opts.MaxStringSize).
			Build()
	}
	size := uint32(n)

	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		return 0, 0, allocationError(path, size, 1, err)
	}

	enc := mutf8.Encode(s)
	if allocList != nil {
		allocList.AddString(ptr, size, enc.Owned())
	}
	if err := mem.Write(ptr, enc.Bytes()); err != nil {
		return 0, 0, errors.Wrap(errors.PhaseLower, errors.KindOutOfBounds, err, "write string data")
	}

	if ce := Logger().Check(zap.DebugLevel, "lower string"); ce != nil {
		ce.Write(
			zap.Uint32("ptr", ptr),
			zap.Uint32("len", size),
			zap.Bool("borrowed", enc.Borrowed()),
		)
	}

	return ptr, size, nil
}

func allocationError(path []string, size, align uint32, cause error) *errors.Error {
	err := errors.AllocationFailed(errors.PhaseLower, size, align)
	err.Path = path
	err.Cause = cause
	return err
}
