// Package docval is the shared tagged document value used by the report
// builder and unification stages: objects, arrays, strings, numbers, bools
// and null, with object key order preserved from first Set to final encode.
// Serialization happens only at the persistence boundary.
package docval

import (
	"encoding/json"
	"strconv"
)

// Kind tags a Value variant
type Kind uint8

// Value variants
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

type arrayNode struct{ items []Value }

type objectNode struct {
	keys []string
	m    map[string]Value
}

// Value is one node of a document tree. The zero Value is JSON null.
// Containers share their backing node across copies, so Set and Append
// mutate the tree whether or not the returned Value is kept.
type Value struct {
	kind Kind
	b    bool
	num  string // validated JSON number literal
	str  string
	arr  *arrayNode
	obj  *objectNode
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// Null returns the null value
func Null() Value { return Value{} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns a number value from an integer
func Int(n int64) Value { return Value{kind: KindNumber, num: strconv.FormatInt(n, 10)} }

// Float returns a number value with the shortest round-trip literal
func Float(f float64) Value {
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Money returns a number value fixed to two decimals, e.g. 300.00
func Money(f float64) Value {
	return Value{kind: KindNumber, num: strconv.FormatFloat(f, 'f', 2, 64)}
}

// NumberLit wraps an already-valid JSON number literal (used by Parse)
func NumberLit(lit string) Value { return Value{kind: KindNumber, num: lit} }

// StrOrNull maps a nullable column into a string or null value
func StrOrNull(p *string) Value {
	if p == nil {
		return Null()
	}
	return String(*p)
}

// IntOrNull maps a nullable column into a number or null value
func IntOrNull(p *int64) Value {
	if p == nil {
		return Null()
	}
	return Int(*p)
}

// FloatOrNull maps a nullable column into a number or null value
func FloatOrNull(p *float64) Value {
	if p == nil {
		return Null()
	}
	return Float(*p)
}

// Array returns an array value seeded with vs
func Array(vs ...Value) Value {
	return Value{kind: KindArray, arr: &arrayNode{items: vs}}
}

// EmptyArray returns an empty array (encodes as [])
func EmptyArray() Value {
	return Value{kind: KindArray, arr: &arrayNode{}}
}

// Append adds item to an array and returns the array for chaining;
// panics on non-array
func (v Value) Append(item Value) Value {
	if v.kind != KindArray {
		panic("docval: Append on non-array")
	}
	v.arr.items = append(v.arr.items, item)
	return v
}

// Items returns the backing slice of an array value (nil otherwise)
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr.items
}

// Object returns a new empty object value
func Object() Value {
	return Value{kind: KindObject, obj: &objectNode{m: map[string]Value{}}}
}

// Set stores key on an object, preserving first-set order, and returns the
// object for chaining; panics on non-object
func (v Value) Set(key string, item Value) Value {
	if v.kind != KindObject {
		panic("docval: Set on non-object")
	}
	if _, ok := v.obj.m[key]; !ok {
		v.obj.keys = append(v.obj.keys, key)
	}
	v.obj.m[key] = item
	return v
}

// Get returns the value stored at key on an object
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	item, ok := v.obj.m[key]
	return item, ok
}

// Keys returns an object's keys in insertion order (nil otherwise)
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return v.obj.keys
}

// Len returns the number of entries of an array or object, else 0
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr.items)
	case KindObject:
		return len(v.obj.keys)
	default:
		return 0
	}
}

// Str returns the string payload of a string value
func (v Value) Str() string { return v.str }

// NumLit returns the number literal of a number value
func (v Value) NumLit() string { return v.num }

// EncodeJSON renders the value as compact JSON text
func (v Value) EncodeJSON() string {
	return string(v.AppendJSON(make([]byte, 0, 256)))
}

// AppendJSON appends the compact JSON encoding of v to dst
func (v Value) AppendJSON(dst []byte) []byte {
	switch v.kind {
	case KindNull:
		return append(dst, "null"...)
	case KindBool:
		if v.b {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case KindNumber:
		return append(dst, v.num...)
	case KindString:
		return appendJSONString(dst, v.str)
	case KindArray:
		dst = append(dst, '[')
		for i, item := range v.arr.items {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = item.AppendJSON(dst)
		}
		return append(dst, ']')
	case KindObject:
		dst = append(dst, '{')
		for i, k := range v.obj.keys {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSONString(dst, k)
			dst = append(dst, ':')
			dst = v.obj.m[k].AppendJSON(dst)
		}
		return append(dst, '}')
	}
	return dst
}

func appendJSONString(dst []byte, s string) []byte {
	// json.Marshal of a string cannot fail and handles all escaping
	b, _ := json.Marshal(s)
	return append(dst, b...)
}
