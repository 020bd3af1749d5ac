package msgpack

import (
	"math"
	"reflect"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Tuple builds the comparable array form of elems, matching the shape
// decoded array keys take. Use it to look up entries stored under
// array or binary keys:
//
//	v, ok := m[msgpack.Tuple(1, "a")]
//
// Tuple panics if an element has no comparable form, mirroring how a
// map literal with an unhashable key panics at runtime.
func Tuple(elems ...any) any {
	k, err := normalizeKey(elems)
	if err != nil {
		panic("msgpack: " + err.Error())
	}
	return k
}

// normalizeKey converts a decoded value into a form usable as a Go map
// key. Integers collapse to int64 (uint64 above the int64 range),
// slices become fixed-size arrays and extension values become ExtKey.
// Maps and other incomparable values report ErrUnhashableKey.
func normalizeKey(v any) (any, error) {
	switch x := v.(type) {
	case nil, bool, int64, uint64, float32, float64, string, ExtKey:
		return v, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return uint64(x), nil
		}
		return int64(x), nil
	case []byte:
		return byteArrayOf(x), nil
	case Ext:
		return x.Key(), nil
	case []any:
		return normalizeElems(x)
	case map[any]any, map[string]any, *OrderedMap:
		return nil, ErrUnhashableKey
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem() == anyType {
			elems := make([]any, rv.Len())
			for i := range elems {
				elems[i] = rv.Index(i).Interface()
			}
			return normalizeElems(elems)
		}
		if rv.Type().Comparable() {
			return v, nil
		}
		return nil, ErrUnhashableKey
	case reflect.Slice:
		elems := make([]any, rv.Len())
		for i := range elems {
			elems[i] = rv.Index(i).Interface()
		}
		return normalizeElems(elems)
	case reflect.Map, reflect.Func:
		return nil, ErrUnhashableKey
	}
	if rv.Type().Comparable() {
		return v, nil
	}
	return nil, ErrUnhashableKey
}

func normalizeElems(elems []any) (any, error) {
	out := make([]any, len(elems))
	for i, e := range elems {
		k, err := normalizeKey(e)
		if err != nil {
			return nil, err
		}
		out[i] = k
	}
	return tupleOf(out), nil
}

// tupleOf packs elems into a [len(elems)]any value. Arrays of the same
// length share a type, so two equal tuples compare equal with ==.
func tupleOf(elems []any) any {
	arr := reflect.New(reflect.ArrayOf(len(elems), anyType)).Elem()
	for i, e := range elems {
		if e != nil {
			arr.Index(i).Set(reflect.ValueOf(e))
		}
	}
	return arr.Interface()
}

// byteArrayOf packs b into a [len(b)]byte value.
func byteArrayOf(b []byte) any {
	arr := reflect.New(reflect.ArrayOf(len(b), reflect.TypeOf(byte(0)))).Elem()
	reflect.Copy(arr, reflect.ValueOf(b))
	return arr.Interface()
}
