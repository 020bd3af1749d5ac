package msgpack

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"

	"github.com/wippyai/msgpack/internal/binary"
)

// EncodeOptions control how Go values are encoded.
type EncodeOptions struct {
	// SortKeys encodes map entries sorted by their encoded key bytes,
	// making the output deterministic across runs. OrderedMap entries
	// always keep their own order.
	SortKeys bool
}

// Encoder writes MessagePack values to a stream.
type Encoder struct {
	out  io.Writer
	opts EncodeOptions
}

// NewEncoder creates an Encoder with default options.
func NewEncoder(w io.Writer) *Encoder {
	return EncodeOptions{}.NewEncoder(w)
}

// NewEncoder creates an Encoder using the receiver's options.
func (o EncodeOptions) NewEncoder(w io.Writer) *Encoder {
	return &Encoder{out: w, opts: o}
}

// Marshal encodes v with default options.
func Marshal(v any) ([]byte, error) {
	return EncodeOptions{}.Marshal(v)
}

// Marshal encodes v using the receiver's options. Every value produced
// by decoding can be encoded back; other Go values are covered per the
// rules on Encoder.Encode.
func (o EncodeOptions) Marshal(v any) ([]byte, error) {
	e := Encoder{opts: o}
	w := binary.NewWriter()
	if err := e.encodeValue(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Encode writes the encoding of v to the stream. Numbers take the
// smallest format that holds the value, strings and composites the
// smallest header for their length. Values of types registered with
// RegisterExt encode through their codec; unhandled types fail with
// ErrUnsupportedType.
func (e *Encoder) Encode(v any) error {
	w := binary.NewWriter()
	if err := e.encodeValue(w, v); err != nil {
		return err
	}
	_, err := e.out.Write(w.Bytes())
	return err
}

func (e *Encoder) encodeValue(w *binary.Writer, v any) error {
	switch x := v.(type) {
	case nil:
		w.Byte(CodeNil)
		return nil
	case bool:
		if x {
			w.Byte(CodeTrue)
		} else {
			w.Byte(CodeFalse)
		}
		return nil
	case int:
		e.encodeInt(w, int64(x))
		return nil
	case int8:
		e.encodeInt(w, int64(x))
		return nil
	case int16:
		e.encodeInt(w, int64(x))
		return nil
	case int32:
		e.encodeInt(w, int64(x))
		return nil
	case int64:
		e.encodeInt(w, x)
		return nil
	case uint:
		e.encodeUint(w, uint64(x))
		return nil
	case uint8:
		e.encodeUint(w, uint64(x))
		return nil
	case uint16:
		e.encodeUint(w, uint64(x))
		return nil
	case uint32:
		e.encodeUint(w, uint64(x))
		return nil
	case uint64:
		e.encodeUint(w, x)
		return nil
	case float32:
		w.Byte(CodeFloat32)
		w.WriteUint32(math.Float32bits(x))
		return nil
	case float64:
		w.Byte(CodeFloat64)
		w.WriteUint64(math.Float64bits(x))
		return nil
	case string:
		e.encodeString(w, x)
		return nil
	case []byte:
		e.encodeBinary(w, x)
		return nil
	case []any:
		return e.encodeArray(w, x)
	case map[any]any:
		return e.encodeMapAny(w, x)
	case map[string]any:
		return e.encodeMapString(w, x)
	case *OrderedMap:
		if x == nil {
			w.Byte(CodeNil)
			return nil
		}
		return e.encodeOrderedMap(w, x)
	case Ext:
		e.encodeExt(w, x)
		return nil
	case ExtKey:
		e.encodeExt(w, x.Ext())
		return nil
	}

	if id, codec, ok := lookupExtByType(reflect.TypeOf(v)); ok {
		if codec.Encode == nil {
			return fmt.Errorf("msgpack: ext type %d: %w", id, ErrNotImplemented)
		}
		ext, err := codec.Encode(v)
		if err != nil {
			return err
		}
		e.encodeExt(w, ext)
		return nil
	}

	return e.encodeReflect(w, v)
}

// encodeReflect covers named basic types and the container kinds the
// direct type switch missed. Normalized byte-array keys encode back as
// binary, tuple keys back as arrays.
func (e *Encoder) encodeReflect(w *binary.Writer, v any) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			w.Byte(CodeTrue)
		} else {
			w.Byte(CodeFalse)
		}
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.encodeInt(w, rv.Int())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		e.encodeUint(w, rv.Uint())
		return nil
	case reflect.Float32:
		w.Byte(CodeFloat32)
		w.WriteUint32(math.Float32bits(float32(rv.Float())))
		return nil
	case reflect.Float64:
		w.Byte(CodeFloat64)
		w.WriteUint64(math.Float64bits(rv.Float()))
		return nil
	case reflect.String:
		e.encodeString(w, rv.String())
		return nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			data := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(data), rv)
			e.encodeBinary(w, data)
			return nil
		}
		e.encodeArrayHeader(w, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeValue(w, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		return e.encodeReflectMap(w, rv)
	case reflect.Pointer:
		if rv.IsNil() {
			w.Byte(CodeNil)
			return nil
		}
		return e.encodeValue(w, rv.Elem().Interface())
	}
	return fmt.Errorf("msgpack: %T: %w", v, ErrUnsupportedType)
}

func (e *Encoder) encodeArray(w *binary.Writer, elems []any) error {
	e.encodeArrayHeader(w, len(elems))
	for _, v := range elems {
		if err := e.encodeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMapAny(w *binary.Writer, m map[any]any) error {
	e.encodeMapHeader(w, len(m))
	if e.opts.SortKeys {
		pairs := make([]rawPair, 0, len(m))
		for k, v := range m {
			p, err := e.rawKey(k, v)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
		return e.writeSorted(w, pairs)
	}
	for k, v := range m {
		if err := e.encodeValue(w, k); err != nil {
			return err
		}
		if err := e.encodeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeMapString(w *binary.Writer, m map[string]any) error {
	e.encodeMapHeader(w, len(m))
	if e.opts.SortKeys {
		pairs := make([]rawPair, 0, len(m))
		for k, v := range m {
			p, err := e.rawKey(k, v)
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
		return e.writeSorted(w, pairs)
	}
	for k, v := range m {
		e.encodeString(w, k)
		if err := e.encodeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeReflectMap(w *binary.Writer, rv reflect.Value) error {
	e.encodeMapHeader(w, rv.Len())
	if e.opts.SortKeys {
		pairs := make([]rawPair, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			p, err := e.rawKey(iter.Key().Interface(), iter.Value().Interface())
			if err != nil {
				return err
			}
			pairs = append(pairs, p)
		}
		return e.writeSorted(w, pairs)
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := e.encodeValue(w, iter.Key().Interface()); err != nil {
			return err
		}
		if err := e.encodeValue(w, iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

// encodeOrderedMap writes entries in the map's own order even when
// SortKeys is set.
func (e *Encoder) encodeOrderedMap(w *binary.Writer, m *OrderedMap) error {
	e.encodeMapHeader(w, m.Len())
	for _, p := range m.Pairs() {
		if err := e.encodeValue(w, p.Key); err != nil {
			return err
		}
		if err := e.encodeValue(w, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// rawPair carries a pre-encoded key alongside its not yet encoded
// value while entries wait to be sorted.
type rawPair struct {
	key []byte
	val any
}

func (e *Encoder) rawKey(k, v any) (rawPair, error) {
	kw := binary.NewWriter()
	if err := e.encodeValue(kw, k); err != nil {
		return rawPair{}, err
	}
	return rawPair{key: kw.Bytes(), val: v}, nil
}

func (e *Encoder) writeSorted(w *binary.Writer, pairs []rawPair) error {
	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i].key, pairs[j].key) < 0
	})
	for _, p := range pairs {
		w.WriteBytes(p.key)
		if err := e.encodeValue(w, p.val); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeInt(w *binary.Writer, v int64) {
	if v >= 0 {
		e.encodeUint(w, uint64(v))
		return
	}
	switch {
	case v >= minNegFixInt:
		w.Byte(byte(v))
	case v >= math.MinInt8:
		w.Byte(CodeInt8)
		w.Byte(byte(v))
	case v >= math.MinInt16:
		w.Byte(CodeInt16)
		w.WriteUint16(uint16(v))
	case v >= math.MinInt32:
		w.Byte(CodeInt32)
		w.WriteUint32(uint32(v))
	default:
		w.Byte(CodeInt64)
		w.WriteUint64(uint64(v))
	}
}

func (e *Encoder) encodeUint(w *binary.Writer, v uint64) {
	switch {
	case v <= uint64(CodePosFixIntMax):
		w.Byte(byte(v))
	case v <= math.MaxUint8:
		w.Byte(CodeUint8)
		w.Byte(byte(v))
	case v <= math.MaxUint16:
		w.Byte(CodeUint16)
		w.WriteUint16(uint16(v))
	case v <= math.MaxUint32:
		w.Byte(CodeUint32)
		w.WriteUint32(uint32(v))
	default:
		w.Byte(CodeUint64)
		w.WriteUint64(v)
	}
}

func (e *Encoder) encodeString(w *binary.Writer, s string) {
	n := len(s)
	switch {
	case n <= maxFixStrLen:
		w.Byte(CodeFixStr | byte(n))
	case n <= math.MaxUint8:
		w.Byte(CodeStr8)
		w.Byte(byte(n))
	case n <= math.MaxUint16:
		w.Byte(CodeStr16)
		w.WriteUint16(uint16(n))
	default:
		w.Byte(CodeStr32)
		w.WriteUint32(uint32(n))
	}
	w.WriteString(s)
}

func (e *Encoder) encodeBinary(w *binary.Writer, data []byte) {
	n := len(data)
	switch {
	case n <= math.MaxUint8:
		w.Byte(CodeBin8)
		w.Byte(byte(n))
	case n <= math.MaxUint16:
		w.Byte(CodeBin16)
		w.WriteUint16(uint16(n))
	default:
		w.Byte(CodeBin32)
		w.WriteUint32(uint32(n))
	}
	w.WriteBytes(data)
}

func (e *Encoder) encodeArrayHeader(w *binary.Writer, n int) {
	switch {
	case n <= maxFixArrayLen:
		w.Byte(CodeFixArray | byte(n))
	case n <= math.MaxUint16:
		w.Byte(CodeArray16)
		w.WriteUint16(uint16(n))
	default:
		w.Byte(CodeArray32)
		w.WriteUint32(uint32(n))
	}
}

func (e *Encoder) encodeMapHeader(w *binary.Writer, n int) {
	switch {
	case n <= maxFixMapLen:
		w.Byte(CodeFixMap | byte(n))
	case n <= math.MaxUint16:
		w.Byte(CodeMap16)
		w.WriteUint16(uint16(n))
	default:
		w.Byte(CodeMap32)
		w.WriteUint32(uint32(n))
	}
}

// encodeExt writes an extension value, using the fixext formats for
// payloads of exactly 1, 2, 4, 8 or 16 bytes.
func (e *Encoder) encodeExt(w *binary.Writer, x Ext) {
	n := len(x.Data)
	switch n {
	case 1:
		w.Byte(CodeFixExt1)
	case 2:
		w.Byte(CodeFixExt2)
	case 4:
		w.Byte(CodeFixExt4)
	case 8:
		w.Byte(CodeFixExt8)
	case 16:
		w.Byte(CodeFixExt16)
	default:
		switch {
		case n <= math.MaxUint8:
			w.Byte(CodeExt8)
			w.Byte(byte(n))
		case n <= math.MaxUint16:
			w.Byte(CodeExt16)
			w.WriteUint16(uint16(n))
		default:
			w.Byte(CodeExt32)
			w.WriteUint32(uint32(n))
		}
	}
	w.Byte(byte(x.Type))
	w.WriteBytes(x.Data)
}
