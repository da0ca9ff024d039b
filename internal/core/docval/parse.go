package docval

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes JSON text into a Value, preserving object key order.
// This is what lets the unification stage re-emit stored module payloads
// byte-for-byte in their original shape.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseNext(dec)
	if err != nil {
		return Value{}, err
	}
	if dec.More() {
		return Value{}, fmt.Errorf("docval: trailing data after document")
	}
	return v, nil
}

func parseNext(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return NumberLit(string(t)), nil
	case json.Delim:
		switch t {
		case '{':
			obj := Object()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("docval: object key is %T", keyTok)
				}
				item, err := parseNext(dec)
				if err != nil {
					return Value{}, err
				}
				obj = obj.Set(key, item)
			}
			if _, err := dec.Token(); err != nil { // closing }
				return Value{}, err
			}
			return obj, nil
		case '[':
			arr := EmptyArray()
			for dec.More() {
				item, err := parseNext(dec)
				if err != nil {
					return Value{}, err
				}
				arr = arr.Append(item)
			}
			if _, err := dec.Token(); err != nil { // closing ]
				return Value{}, err
			}
			return arr, nil
		}
	}
	return Value{}, fmt.Errorf("docval: unexpected token %v", tok)
}
