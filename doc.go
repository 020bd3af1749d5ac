// Package msgpack implements the MessagePack binary serialization
// format.
//
// The decoder covers the full format: every one of the 256 leading
// byte values maps to a family of the current MessagePack spec, and
// malformed input is reported with the byte offset of the failing
// value rather than with a panic or a silent truncation.
//
// # Architecture Overview
//
// The module is organized into a small set of packages:
//
//	msgpack/             Root package with the decoder, encoder and registry
//	├── exttime/         The predefined timestamp extension (type -1)
//	├── internal/binary  Big-endian byte stream reader and writer
//	└── cmd/msgpack      CLI for converting and inspecting encoded data
//
// # Quick Start
//
// Decode a value with default options:
//
//	v, err := msgpack.Unmarshal(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := v.(map[any]any)
//
// Encode it back:
//
//	data, err := msgpack.Marshal(m)
//
// Streams hold values back to back; Decoder walks them one value at a
// time and returns io.EOF at a clean end:
//
//	dec := msgpack.NewDecoder(r)
//	for {
//	    v, err := dec.Decode()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// # Value Model
//
// Decoding produces a fixed set of Go types:
//
//   - nil, bool
//   - int64 for all integers that fit; uint64 above math.MaxInt64
//   - float32 and float64, preserving the encoded width
//   - string, or []byte under AllowInvalidUTF8
//   - []byte for binary payloads
//   - []any for arrays, [N]any under Tuples
//   - map[any]any for maps, *OrderedMap under OrderedMaps
//   - Ext for unresolved extension values
//
// Map keys are normalized into comparable forms: binary keys become
// [N]byte, array keys become [N]any and extension keys become ExtKey.
// Tuple builds the same forms for lookups:
//
//	v, ok := m[msgpack.Tuple(1, "a")]
//
// # Extensions
//
// Extension types resolve in three tiers: a per-decode handler in
// DecodeOptions.ExtHandlers, then a codec installed process-wide with
// RegisterExt, and finally the raw Ext value. The exttime package
// implements the predefined timestamp extension and is not installed
// automatically:
//
//	exttime.Register()
//	data, _ := msgpack.Marshal(time.Now())
//
// # Thread Safety
//
// Decoder and Encoder are not safe for concurrent use; one goroutine
// per instance, or synchronize access. Unmarshal, Marshal, Valid and
// Diagnose are safe to call concurrently. RegisterExt is safe at any
// time, though registration is meant to happen during setup.
package msgpack
