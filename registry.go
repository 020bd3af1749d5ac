package msgpack

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// ExtCodec describes how an extension type id maps onto a Go type.
// Either direction may be nil; an operation that needs the missing
// direction reports ErrNotImplemented.
type ExtCodec struct {
	// Prototype is a zero value of the Go type this codec handles.
	// The encoder matches values against its exact dynamic type.
	Prototype any

	// Encode converts a value of the prototype's type into an
	// extension payload.
	Encode func(v any) (Ext, error)

	// Decode converts an extension payload into a Go value.
	Decode func(ext Ext) (any, error)
}

var (
	extMu     sync.RWMutex
	extCodecs = make(map[int8]ExtCodec)
	extTypes  = make(map[reflect.Type]int8)
)

// RegisterExt installs codec for the given extension type id
// process-wide. Registering an id again replaces the earlier codec.
// Per-decode handlers in DecodeOptions.ExtHandlers take precedence
// over the registry.
func RegisterExt(id int8, codec ExtCodec) {
	extMu.Lock()
	defer extMu.Unlock()
	if old, ok := extCodecs[id]; ok && old.Prototype != nil {
		delete(extTypes, reflect.TypeOf(old.Prototype))
	}
	extCodecs[id] = codec
	if codec.Prototype != nil {
		extTypes[reflect.TypeOf(codec.Prototype)] = id
	}
	Logger().Debug("registered extension codec",
		zap.Int8("type", id),
		zap.Bool("encode", codec.Encode != nil),
		zap.Bool("decode", codec.Decode != nil))
}

func lookupExt(id int8) (ExtCodec, bool) {
	extMu.RLock()
	defer extMu.RUnlock()
	codec, ok := extCodecs[id]
	return codec, ok
}

func lookupExtByType(t reflect.Type) (int8, ExtCodec, bool) {
	extMu.RLock()
	defer extMu.RUnlock()
	id, ok := extTypes[t]
	if !ok {
		return 0, ExtCodec{}, false
	}
	return id, extCodecs[id], true
}
