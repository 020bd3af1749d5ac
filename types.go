package msgpack

import "reflect"

// Ext is an extension value: an application-defined type tag and its
// raw payload. Decoding produces Ext when no handler or registered
// codec claims the type; encoding writes it back unchanged.
type Ext struct {
	Type int8
	Data []byte
}

// Key returns the comparable form of e used when an extension value
// appears as a map key.
func (e Ext) Key() ExtKey {
	return ExtKey{Type: e.Type, Data: string(e.Data)}
}

// ExtKey is the comparable form of an extension value. Decoded maps
// store extension keys as ExtKey so that lookups work with ==.
type ExtKey struct {
	Type int8
	Data string
}

// Ext returns the extension value this key was built from.
func (k ExtKey) Ext() Ext {
	return Ext{Type: k.Type, Data: []byte(k.Data)}
}

// Pair is a single entry of an OrderedMap.
type Pair struct {
	Key   any
	Value any
}

// OrderedMap is a map that preserves key insertion order. Decoding
// with DecodeOptions.OrderedMaps produces OrderedMap values whose
// entry order matches the encoded order.
type OrderedMap struct {
	idx   map[any]int
	pairs []Pair
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{idx: make(map[any]int)}
}

// Len returns the number of entries.
func (m *OrderedMap) Len() int {
	return len(m.pairs)
}

// Get returns the value stored under key.
func (m *OrderedMap) Get(key any) (any, bool) {
	i, ok := m.idx[key]
	if !ok {
		return nil, false
	}
	return m.pairs[i].Value, true
}

// Has reports whether key is present.
func (m *OrderedMap) Has(key any) bool {
	_, ok := m.idx[key]
	return ok
}

// Set stores value under key. A new key is appended at the end; an
// existing key keeps its position.
func (m *OrderedMap) Set(key, value any) {
	if i, ok := m.idx[key]; ok {
		m.pairs[i].Value = value
		return
	}
	m.idx[key] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []any {
	keys := make([]any, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns the entries in insertion order. The slice is shared
// with the map and must not be modified.
func (m *OrderedMap) Pairs() []Pair {
	return m.pairs
}

// Equal reports whether m and o hold equal entries in the same order.
func (m *OrderedMap) Equal(o *OrderedMap) bool {
	if m == nil || o == nil {
		return m == o
	}
	if len(m.pairs) != len(o.pairs) {
		return false
	}
	for i, p := range m.pairs {
		q := o.pairs[i]
		if !reflect.DeepEqual(p.Key, q.Key) || !reflect.DeepEqual(p.Value, q.Value) {
			return false
		}
	}
	return true
}
