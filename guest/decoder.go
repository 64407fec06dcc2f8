package guest

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/mutf8"
	"github.com/wippyai/mutf8/errors"
)

// stringRecordSize is the size of a (ptr, len) pair in guest memory.
const stringRecordSize = 8

// Decoder lifts MUTF-8 strings out of guest memory.
type Decoder struct {
	opts Options
}

func NewDecoder() *Decoder {
	return NewDecoderWithOptions(DefaultOptions())
}

func NewDecoderWithOptions(opts Options) *Decoder {
	return &Decoder{opts: opts}
}

// Options returns the configuration.
func (d *Decoder) Options() Options {
	return d.opts
}

// LiftString lifts a string from its flattened (ptr, len) form and returns
// the number of flat values consumed.
func (d *Decoder) LiftString(flat []uint64, mem Memory) (string, int, error) {
	return d.liftString(flat, mem, nil)
}

// DecodeStringFromMemory reads the (ptr, len) pair stored at addr and
// lifts the string it describes.
func (d *Decoder) DecodeStringFromMemory(addr uint32, mem Memory) (string, error) {
	dataAddr, err := mem.ReadU32(addr)
	if err != nil {
		return "", errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read string pointer")
	}
	dataLen, err := mem.ReadU32(addr + 4)
	if err != nil {
		return "", errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read string length")
	}
	return d.readString(dataAddr, dataLen, mem, nil)
}

// Lift lifts a value of WIT type string or list<string>. Strings lift to
// string, lists to []string.
func (d *Decoder) Lift(t wit.Type, flat []uint64, mem Memory) (any, int, error) {
	return d.liftValue(t, flat, mem, nil)
}

func (d *Decoder) liftValue(t wit.Type, flat []uint64, mem Memory, path []string) (any, int, error) {
	switch t := t.(type) {
	case wit.String:
		return d.liftString(flat, mem, path)
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.List:
			if _, ok := kind.Type.(wit.String); ok {
				return d.liftStringList(flat, mem, path)
			}
		case wit.Type:
			return d.liftValue(kind, flat, mem, path)
		}
	}
	return nil, 0, errors.Unsupported(errors.PhaseLift, fmt.Sprintf("WIT type %T", t))
}

func (d *Decoder) liftString(flat []uint64, mem Memory, path []string) (string, int, error) {
	if len(flat) < 2 {
		return "", 0, errors.InvalidData(errors.PhaseLift, path, "insufficient flat values for string")
	}
	s, err := d.readString(uint32(flat[0]), uint32(flat[1]), mem, path)
	if err != nil {
		return "", 0, err
	}
	return s, 2, nil
}

func (d *Decoder) liftStringList(flat []uint64, mem Memory, path []string) ([]string, int, error) {
	if len(flat) < 2 {
		return nil, 0, errors.InvalidData(errors.PhaseLift, path, "insufficient flat values for list")
	}

	dataAddr := uint32(flat[0])
	length := uint32(flat[1])

	if length == 0 {
		return []string{}, 2, nil
	}

	if length > d.opts.MaxListLength {
		return nil, 0, errors.New(errors.PhaseLift, errors.KindOverflow).
			Path(path...).
			WitType("list<string>").
			Detail("list length %d exceeds maximum %d", length, d.opts.MaxListLength).
			Build()
	}

	metaLen64 := uint64(length) * stringRecordSize
	if metaLen64 > math.MaxUint32 {
		return nil, 0, errors.Overflow(errors.PhaseLift, path, metaLen64, "u32 list size")
	}
	metaLen := uint32(metaLen64)
	if err := checkBounds(dataAddr, metaLen, mem, path); err != nil {
		return nil, 0, err
	}
	metadata, err := mem.Read(dataAddr, metaLen)
	if err != nil {
		return nil, 0, errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read list elements")
	}

	result := make([]string, length)
	for i := range result {
		rec := metadata[i*stringRecordSize:]
		strAddr := binary.LittleEndian.Uint32(rec)
		strLen := binary.LittleEndian.Uint32(rec[4:])

		elemPath := append(append([]string{}, path...), "["+strconv.Itoa(i)+"]")
		s, err := d.readString(strAddr, strLen, mem, elemPath)
		if err != nil {
			return nil, 0, err
		}
		result[i] = s
	}

	return result, 2, nil
}

func (d *Decoder) readString(addr, n uint32, mem Memory, path []string) (string, error) {
	if n == 0 {
		return "", nil
	}

	if n > d.opts.MaxStringSize {
		return "", errors.New(errors.PhaseLift, errors.KindOverflow).
			Path(path...).
			WitType("string").
			Detail("string size %d exceeds maximum %d", n, d.opts.MaxStringSize).
			Build()
	}

	if err := checkBounds(addr, n, mem, path); err != nil {
		return "", err
	}

	data, err := mem.Read(addr, n)
	if err != nil {
		return "", errors.Wrap(errors.PhaseLift, errors.KindOutOfBounds, err, "read string data")
	}

	txt, err := mutf8.Decode(data)
	if err != nil {
		return "", errors.Rebase(err, 0, errors.PhaseLift, path)
	}

	if ce := Logger().Check(zap.DebugLevel, "lift string"); ce != nil {
		ce.Write(
			zap.Uint32("ptr", addr),
			zap.Uint32("len", n),
			zap.Bool("borrowed", txt.Borrowed()),
			zap.Bool("zero_copy", d.opts.ZeroCopy),
		)
	}

	if txt.Owned() || d.opts.ZeroCopy {
		return txt.String(), nil
	}
	return strings.Clone(txt.String()), nil
}

// checkBounds rejects ranges past the end of memory up front when the
// memory can report its size.
func checkBounds(addr, n uint32, mem Memory, path []string) error {
	sizer, ok := mem.(mutf8.MemorySizer)
	if !ok {
		return nil
	}
	size := sizer.Size()
	if end := uint64(addr) + uint64(n); end > uint64(size) {
		return errors.OutOfBounds(errors.PhaseLift, path, int(end-1), int(size))
	}
	return nil
}
