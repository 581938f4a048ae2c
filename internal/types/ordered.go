package types

import (
	"bytes"
	"encoding/json"

	"github.com/elliotchance/orderedmap/v2"
)

// Ordered is a string-keyed map that remembers insertion order and
// serializes to a JSON object with keys in that order.
type Ordered[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

// NewOrdered creates an empty Ordered map.
func NewOrdered[V any]() *Ordered[V] {
	return &Ordered[V]{m: orderedmap.NewOrderedMap[string, V]()}
}

// Set inserts or replaces a value. Replacing keeps the original position.
func (o *Ordered[V]) Set(key string, value V) {
	if o.m == nil {
		o.m = orderedmap.NewOrderedMap[string, V]()
	}
	o.m.Set(key, value)
}

// Get returns the value stored under key.
func (o *Ordered[V]) Get(key string) (V, bool) {
	if o == nil || o.m == nil {
		var zero V
		return zero, false
	}
	return o.m.Get(key)
}

// Len returns the number of entries.
func (o *Ordered[V]) Len() int {
	if o == nil || o.m == nil {
		return 0
	}
	return o.m.Len()
}

// Keys returns the keys in insertion order.
func (o *Ordered[V]) Keys() []string {
	if o == nil || o.m == nil {
		return nil
	}
	return o.m.Keys()
}

// Each calls fn for every entry in insertion order.
func (o *Ordered[V]) Each(fn func(key string, value V)) {
	if o == nil || o.m == nil {
		return
	}
	for el := o.m.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}

// MarshalJSON implements json.Marshaler.
func (o *Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	o.Each(func(key string, value V) {
		if err != nil {
			return
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(key); err != nil {
			return
		}
		if vb, err = json.Marshal(value); err != nil {
			return
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
