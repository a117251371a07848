package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded JSON value. Object members keep document order.
type Value struct {
	kind    Kind
	text    string // string contents or number literal
	boolean bool
	items   []Value
	members *orderedmap.OrderedMap[string, Value]
}

func StringValue(s string) Value { return Value{kind: String, text: s} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Is(k Kind) bool { return v.kind == k }

// Str returns the contents when v is a JSON string.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.text, true
}

// Items returns array elements; nil for non-arrays.
func (v Value) Items() []Value {
	if v.kind != Array {
		return nil
	}
	return v.items
}

// Get looks up an object member.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object || v.members == nil {
		return Value{}, false
	}
	return v.members.Get(key)
}

// Keys returns object member names in document order.
func (v Value) Keys() []string {
	if v.kind != Object || v.members == nil {
		return nil
	}
	keys := make([]string, 0, v.members.Len())
	for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns object member values in document order.
func (v Value) Values() []Value {
	if v.kind != Object || v.members == nil {
		return nil
	}
	vals := make([]Value, 0, v.members.Len())
	for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
		vals = append(vals, pair.Value)
	}
	return vals
}

// Len is the element count for arrays and the member count for objects.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		if v.members == nil {
			return 0
		}
		return v.members.Len()
	default:
		return 0
	}
}

// Compact re-encodes v as compact JSON without HTML escaping.
func (v Value) Compact() string {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	v.writeJSON(&buf)
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) {
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		if v.boolean {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Number:
		buf.WriteString(v.text)
	case String:
		writeString(buf, v.text)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			item.writeJSON(buf)
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		if v.members != nil {
			first := true
			for pair := v.members.Oldest(); pair != nil; pair = pair.Next() {
				if !first {
					buf.WriteByte(',')
				}
				first = false
				writeString(buf, pair.Key)
				buf.WriteByte(':')
				pair.Value.writeJSON(buf)
			}
		}
		buf.WriteByte('}')
	}
}

func writeString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
}

// ParseJSON decodes exactly one JSON value from data. Trailing content is an error.
func ParseJSON(data string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, fmt.Errorf("unexpected end of JSON input")
		}
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return Value{}, err
		}
		return Value{}, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Array, items: items}, nil
		case '{':
			members := orderedmap.New[string, Value]()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key is %T, not string", keyTok)
				}
				member, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				members.Set(key, member)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Object, members: members}, nil
		default:
			return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case string:
		return Value{kind: String, text: t}, nil
	case json.Number:
		return Value{kind: Number, text: t.String()}, nil
	case bool:
		return Value{kind: Bool, boolean: t}, nil
	case nil:
		return Value{kind: Null}, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %T", tok)
	}
}
