package msgpack

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"unicode/utf8"

	"github.com/wippyai/msgpack/internal/binary"
)

// Composite length claims above this are grown on demand instead of
// preallocated, so corrupt headers cannot force huge allocations.
const maxPreallocElems = 1 << 12

// ExtHandler converts an extension value during a single decode.
type ExtHandler func(ext Ext) (any, error)

// DecodeOptions control how encoded values map onto Go values. The
// zero value gives the default behavior described on each field.
type DecodeOptions struct {
	// Tuples decodes arrays into fixed-size [N]any values instead of
	// []any. Tuples are comparable and can be inspected with ==; the
	// elements keep their decoded types, so tuples holding binary data
	// are only comparable after key normalization.
	Tuples bool

	// OrderedMaps decodes maps into *OrderedMap instead of
	// map[any]any, preserving the encoded entry order.
	OrderedMaps bool

	// AllowInvalidUTF8 makes string payloads that are not valid UTF-8
	// decode into []byte instead of failing with ErrInvalidString.
	AllowInvalidUTF8 bool

	// ExtHandlers maps extension type ids to conversion functions.
	// A handler takes precedence over codecs installed with
	// RegisterExt.
	ExtHandlers map[int8]ExtHandler

	// MaxDepth limits how deeply values may nest. Elements of a
	// composite sit one level below it; decoding fails with
	// ErrDepthExceeded once a value lies more than MaxDepth levels
	// below the top. Zero means no limit.
	MaxDepth int
}

// Decoder reads MessagePack values from a byte stream.
type Decoder struct {
	r    *binary.Reader
	opts DecodeOptions

	// rawExt suppresses handler and registry resolution so extension
	// values surface as Ext. Used by the diagnostic renderer.
	rawExt bool
}

// NewDecoder creates a Decoder with default options. The reader is
// consumed byte by byte; readers that do not implement io.ByteReader
// are wrapped in a bufio.Reader.
func NewDecoder(r io.Reader) *Decoder {
	return DecodeOptions{}.NewDecoder(r)
}

// NewDecoder creates a Decoder using the receiver's options.
func (o DecodeOptions) NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: binary.NewReader(br), opts: o}
}

// Unmarshal decodes the first value in data with default options.
// Bytes after the first value are ignored.
func Unmarshal(data []byte) (any, error) {
	return DecodeOptions{}.Unmarshal(data)
}

// Unmarshal decodes the first value in data using the receiver's
// options. Bytes after the first value are ignored; empty input fails
// with ErrInsufficientData.
func (o DecodeOptions) Unmarshal(data []byte) (any, error) {
	d := o.NewDecoder(bytes.NewReader(data))
	v, err := d.Decode()
	if errors.Is(err, io.EOF) {
		return nil, &DecodeError{Offset: 0, Err: ErrInsufficientData}
	}
	return v, err
}

// Decode reads and decodes the next value from the stream. It returns
// io.EOF when the stream ends cleanly at a value boundary; a stream
// ending inside a value fails with ErrInsufficientData.
func (d *Decoder) Decode() (any, error) {
	off := d.r.Position()
	c, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, d.failAt(off, err)
	}
	return d.decodeCode(c, off, 0)
}

// InputOffset returns the number of bytes consumed from the stream.
func (d *Decoder) InputOffset() int {
	return d.r.Position()
}

// failAt wraps err with the offset of the value being decoded. An
// exhausted source surfaces as ErrInsufficientData regardless of which
// read hit the end.
func (d *Decoder) failAt(off int, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrInsufficientData
	}
	return &DecodeError{Offset: off, Err: err}
}

// decodeValue reads the next code byte and decodes the value it
// introduces.
func (d *Decoder) decodeValue(depth int) (any, error) {
	off := d.r.Position()
	c, err := d.r.ReadByte()
	if err != nil {
		return nil, d.failAt(off, err)
	}
	return d.decodeCode(c, off, depth)
}

// decodeCode dispatches on the leading code byte. Every byte value
// maps to exactly one family; the reserved code 0xc1 fails with
// ErrReservedCode, so the trailing panic is unreachable.
func (d *Decoder) decodeCode(c byte, off, depth int) (any, error) {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return nil, d.failAt(off, ErrDepthExceeded)
	}

	switch {
	case c <= CodePosFixIntMax:
		return int64(c), nil
	case c >= CodeNegFixInt:
		return int64(int8(c)), nil
	case isFixMap(c):
		return d.decodeMap(c, off, depth)
	case isFixArray(c):
		return d.decodeArray(c, off, depth)
	case isFixStr(c):
		return d.decodeString(c, off)
	}

	switch c {
	case CodeNil:
		return nil, nil
	case CodeReserved:
		return nil, d.failAt(off, ErrReservedCode)
	case CodeFalse:
		return false, nil
	case CodeTrue:
		return true, nil
	case CodeBin8, CodeBin16, CodeBin32:
		return d.decodeBinary(c, off)
	case CodeExt8, CodeExt16, CodeExt32,
		CodeFixExt1, CodeFixExt2, CodeFixExt4, CodeFixExt8, CodeFixExt16:
		return d.decodeExt(c, off)
	case CodeFloat32, CodeFloat64:
		return d.decodeFloat(c, off)
	case CodeUint8, CodeUint16, CodeUint32, CodeUint64,
		CodeInt8, CodeInt16, CodeInt32, CodeInt64:
		return d.decodeInt(c, off)
	case CodeStr8, CodeStr16, CodeStr32:
		return d.decodeString(c, off)
	case CodeArray16, CodeArray32:
		return d.decodeArray(c, off, depth)
	case CodeMap16, CodeMap32:
		return d.decodeMap(c, off, depth)
	}
	panic("msgpack: unreachable code byte")
}

// decodeInt decodes the eight fixed-width integer formats. Unsigned
// values fitting int64 collapse to int64; only uint64 values above
// math.MaxInt64 stay uint64.
func (d *Decoder) decodeInt(c byte, off int) (any, error) {
	switch c {
	case CodeUint8:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(b), nil
	case CodeUint16:
		v, err := d.r.ReadUint16()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(v), nil
	case CodeUint32:
		v, err := d.r.ReadUint32()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(v), nil
	case CodeUint64:
		v, err := d.r.ReadUint64()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		if v > math.MaxInt64 {
			return v, nil
		}
		return int64(v), nil
	case CodeInt8:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(int8(b)), nil
	case CodeInt16:
		v, err := d.r.ReadUint16()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(int16(v)), nil
	case CodeInt32:
		v, err := d.r.ReadUint32()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(int32(v)), nil
	case CodeInt64:
		v, err := d.r.ReadUint64()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return int64(v), nil
	}
	panic("msgpack: not an integer code")
}

// decodeFloat decodes float32 and float64 values, preserving the
// encoded width.
func (d *Decoder) decodeFloat(c byte, off int) (any, error) {
	switch c {
	case CodeFloat32:
		v, err := d.r.ReadUint32()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return math.Float32frombits(v), nil
	case CodeFloat64:
		v, err := d.r.ReadUint64()
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return math.Float64frombits(v), nil
	}
	panic("msgpack: not a float code")
}

func (d *Decoder) decodeString(c byte, off int) (any, error) {
	n, err := d.strLen(c)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	data, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	if !utf8.Valid(data) {
		if d.opts.AllowInvalidUTF8 {
			return data, nil
		}
		return nil, d.failAt(off, ErrInvalidString)
	}
	return string(data), nil
}

func (d *Decoder) decodeBinary(c byte, off int) (any, error) {
	n, err := d.binLen(c)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	data, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	return data, nil
}

func (d *Decoder) decodeArray(c byte, off, depth int) (any, error) {
	n, err := d.arrayLen(c)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	elems := make([]any, 0, min(n, maxPreallocElems))
	for i := 0; i < n; i++ {
		v, err := d.decodeValue(depth + 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	if d.opts.Tuples {
		return tupleOf(elems), nil
	}
	return elems, nil
}

// decodeMap decodes a map, normalizing each key into a comparable
// form before checking it against the keys seen so far. The duplicate
// check runs before the value is decoded, so a duplicate key is
// reported even when its value is malformed.
func (d *Decoder) decodeMap(c byte, off, depth int) (any, error) {
	n, err := d.mapLen(c)
	if err != nil {
		return nil, d.failAt(off, err)
	}

	var (
		ordered *OrderedMap
		plain   map[any]any
	)
	if d.opts.OrderedMaps {
		ordered = NewOrderedMap()
	} else {
		plain = make(map[any]any, min(n, maxPreallocElems))
	}

	for i := 0; i < n; i++ {
		keyOff := d.r.Position()
		rawKey, err := d.decodeValue(depth + 1)
		if err != nil {
			return nil, err
		}
		key, err := normalizeKey(rawKey)
		if err != nil {
			return nil, d.failAt(keyOff, err)
		}

		if ordered != nil {
			if ordered.Has(key) {
				return nil, d.failAt(keyOff, ErrDuplicateKey)
			}
			value, err := d.decodeValue(depth + 1)
			if err != nil {
				return nil, err
			}
			ordered.Set(key, value)
			continue
		}
		if _, dup := plain[key]; dup {
			return nil, d.failAt(keyOff, ErrDuplicateKey)
		}
		value, err := d.decodeValue(depth + 1)
		if err != nil {
			return nil, err
		}
		plain[key] = value
	}

	if ordered != nil {
		return ordered, nil
	}
	return plain, nil
}

// decodeExt decodes an extension value and resolves it: a matching
// entry in ExtHandlers wins, then a codec registered with RegisterExt,
// and with neither present the raw Ext is returned. A registered codec
// without a Decode function fails with ErrNotImplemented.
func (d *Decoder) decodeExt(c byte, off int) (any, error) {
	n, err := d.extLen(c)
	if err != nil {
		return nil, d.failAt(off, err)
	}
	t, err := d.r.ReadByte()
	if err != nil {
		return nil, d.failAt(off, err)
	}
	data, err := d.r.ReadBytes(n)
	if err != nil {
		return nil, d.failAt(off, err)
	}

	ext := Ext{Type: int8(t), Data: data}
	if d.rawExt {
		return ext, nil
	}
	if handler, ok := d.opts.ExtHandlers[ext.Type]; ok {
		v, err := handler(ext)
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return v, nil
	}
	if codec, ok := lookupExt(ext.Type); ok {
		if codec.Decode == nil {
			return nil, d.failAt(off, ErrNotImplemented)
		}
		v, err := codec.Decode(ext)
		if err != nil {
			return nil, d.failAt(off, err)
		}
		return v, nil
	}
	return ext, nil
}

func (d *Decoder) len8() (int, error) {
	b, err := d.r.ReadByte()
	return int(b), err
}

func (d *Decoder) len16() (int, error) {
	v, err := d.r.ReadUint16()
	return int(v), err
}

func (d *Decoder) len32() (int, error) {
	v, err := d.r.ReadUint32()
	return int(v), err
}

func (d *Decoder) strLen(c byte) (int, error) {
	if isFixStr(c) {
		return int(c & lenFixStr), nil
	}
	switch c {
	case CodeStr8:
		return d.len8()
	case CodeStr16:
		return d.len16()
	case CodeStr32:
		return d.len32()
	}
	panic("msgpack: not a string code")
}

func (d *Decoder) binLen(c byte) (int, error) {
	switch c {
	case CodeBin8:
		return d.len8()
	case CodeBin16:
		return d.len16()
	case CodeBin32:
		return d.len32()
	}
	panic("msgpack: not a binary code")
}

func (d *Decoder) arrayLen(c byte) (int, error) {
	if isFixArray(c) {
		return int(c & lenFixArray), nil
	}
	switch c {
	case CodeArray16:
		return d.len16()
	case CodeArray32:
		return d.len32()
	}
	panic("msgpack: not an array code")
}

func (d *Decoder) mapLen(c byte) (int, error) {
	if isFixMap(c) {
		return int(c & lenFixMap), nil
	}
	switch c {
	case CodeMap16:
		return d.len16()
	case CodeMap32:
		return d.len32()
	}
	panic("msgpack: not a map code")
}

func (d *Decoder) extLen(c byte) (int, error) {
	switch c {
	case CodeFixExt1:
		return 1, nil
	case CodeFixExt2:
		return 2, nil
	case CodeFixExt4:
		return 4, nil
	case CodeFixExt8:
		return 8, nil
	case CodeFixExt16:
		return 16, nil
	case CodeExt8:
		return d.len8()
	case CodeExt16:
		return d.len16()
	case CodeExt32:
		return d.len32()
	}
	panic("msgpack: not an extension code")
}
