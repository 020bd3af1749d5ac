// Package exttime implements the predefined MessagePack timestamp
// extension (type -1).
//
// Timestamps use one of three layouts chosen by payload length: 4
// bytes for unsigned seconds that fit 32 bits, 8 bytes packing 30-bit
// nanoseconds and 34-bit seconds, and 12 bytes for the full signed
// range. Encoding always picks the smallest layout that holds the
// instant.
//
// The codec is not installed automatically. Call Register to make
// time.Time round-trip through the process-wide registry, or use
// Handler for a single decode:
//
//	exttime.Register()
//	data, _ := msgpack.Marshal(time.Now())
//	v, _ := msgpack.Unmarshal(data) // time.Time
package exttime

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/wippyai/msgpack"
)

// Type is the predefined extension type id for timestamps.
const Type int8 = -1

const maxNanos = 999999999

// Encode packs t into the smallest timestamp layout that represents
// it. Instants before the epoch and seconds beyond 34 bits take the
// 12-byte layout.
func Encode(t time.Time) msgpack.Ext {
	sec := t.Unix()
	nsec := uint64(t.Nanosecond())

	if sec>>34 == 0 {
		v := nsec<<34 | uint64(sec)
		if v&0xffffffff00000000 == 0 {
			var b [4]byte
			binary.BigEndian.PutUint32(b[:], uint32(v))
			return msgpack.Ext{Type: Type, Data: b[:]}
		}
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		return msgpack.Ext{Type: Type, Data: b[:]}
	}

	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(nsec))
	binary.BigEndian.PutUint64(b[4:12], uint64(sec))
	return msgpack.Ext{Type: Type, Data: b[:]}
}

// Decode unpacks a timestamp payload in any of the three layouts. The
// result is in UTC.
func Decode(ext msgpack.Ext) (time.Time, error) {
	if ext.Type != Type {
		return time.Time{}, fmt.Errorf("exttime: ext type %d is not a timestamp", ext.Type)
	}
	switch len(ext.Data) {
	case 4:
		sec := binary.BigEndian.Uint32(ext.Data)
		return time.Unix(int64(sec), 0).UTC(), nil
	case 8:
		v := binary.BigEndian.Uint64(ext.Data)
		nsec := v >> 34
		sec := v & 0x3ffffffff
		if nsec > maxNanos {
			return time.Time{}, fmt.Errorf("exttime: nanoseconds out of range: %d", nsec)
		}
		return time.Unix(int64(sec), int64(nsec)).UTC(), nil
	case 12:
		nsec := binary.BigEndian.Uint32(ext.Data[0:4])
		sec := int64(binary.BigEndian.Uint64(ext.Data[4:12]))
		if nsec > maxNanos {
			return time.Time{}, fmt.Errorf("exttime: nanoseconds out of range: %d", nsec)
		}
		return time.Unix(sec, int64(nsec)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("exttime: timestamp payload must be 4, 8 or 12 bytes, got %d", len(ext.Data))
}

// Codec returns the registry codec for timestamps.
func Codec() msgpack.ExtCodec {
	return msgpack.ExtCodec{
		Prototype: time.Time{},
		Encode: func(v any) (msgpack.Ext, error) {
			t, ok := v.(time.Time)
			if !ok {
				return msgpack.Ext{}, fmt.Errorf("exttime: cannot encode %T as timestamp", v)
			}
			return Encode(t), nil
		},
		Decode: func(ext msgpack.Ext) (any, error) {
			return Decode(ext)
		},
	}
}

// Register installs the timestamp codec in the process-wide registry.
func Register() {
	msgpack.RegisterExt(Type, Codec())
}

// Handler returns a decode handler for DecodeOptions.ExtHandlers.
func Handler() msgpack.ExtHandler {
	return func(ext msgpack.Ext) (any, error) {
		return Decode(ext)
	}
}
