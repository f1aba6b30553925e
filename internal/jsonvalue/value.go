// Package jsonvalue is an ordered, tagged-union model of a JSON document.
//
// Unlike decoding into map[string]interface{}, object members keep the
// order they had in the source text, and numbers keep their source literal,
// so values can be passed through to clients unmodified.
package jsonvalue

import (
	"bytes"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a node of a JSON tree. A nil *Value means "missing" and is
// accepted by every read method.
type Value struct {
	kind    Kind
	text    string // string contents, or the number literal
	boolean bool
	items   []*Value
	members []Member
}

func NewNull() *Value { return &Value{kind: KindNull} }

func NewBool(b bool) *Value { return &Value{kind: KindBool, boolean: b} }

// NewNumber wraps a number literal such as "3.5" or "-1e3". The literal is
// not validated here; Parse only produces valid ones.
func NewNumber(literal string) *Value { return &Value{kind: KindNumber, text: literal} }

func NewString(s string) *Value { return &Value{kind: KindString, text: s} }

func NewArray(items ...*Value) *Value { return &Value{kind: KindArray, items: items} }

func NewObject(members ...Member) *Value { return &Value{kind: KindObject, members: members} }

// Kind reports the variant held by v. A nil Value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull reports whether v is missing or a JSON null.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// Items returns the elements of an array, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Members returns the members of an object in source order, or nil for any
// other kind.
func (v *Value) Members() []Member {
	if v.Kind() != KindObject {
		return nil
	}
	return v.members
}

// Get returns the value stored under key, or nil if v is not an object or
// has no such key.
func (v *Value) Get(key string) *Value {
	for _, m := range v.Members() {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Has reports whether v is an object with an own key named key.
func (v *Value) Has(key string) bool {
	for _, m := range v.Members() {
		if m.Key == key {
			return true
		}
	}
	return false
}

// Path walks nested objects by key. Any missing step yields nil.
func (v *Value) Path(keys ...string) *Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Bool returns the boolean held by v, false for any other kind.
func (v *Value) Bool() bool {
	return v.Kind() == KindBool && v.boolean
}

// Text renders v as plain text: strings without quotes, numbers as their
// literal, booleans as true/false, null or missing as "". Arrays and
// objects render as compact JSON.
func (v *Value) Text() string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindString, KindNumber:
		return v.text
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// MarshalJSON encodes v compactly, keeping member order and number literals.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf, jsontext.AllowInvalidUTF8(true), jsontext.AllowDuplicateNames(true))
	if err := v.encode(enc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (v *Value) encode(enc *jsontext.Encoder) error {
	switch v.Kind() {
	case KindNull:
		return enc.WriteToken(jsontext.Null)
	case KindBool:
		return enc.WriteToken(jsontext.Bool(v.boolean))
	case KindNumber:
		return enc.WriteValue(jsontext.Value(v.text))
	case KindString:
		return enc.WriteToken(jsontext.String(v.text))
	case KindArray:
		if err := enc.WriteToken(jsontext.ArrayStart); err != nil {
			return err
		}
		for _, it := range v.items {
			if err := it.encode(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.ArrayEnd)
	default:
		if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
			return err
		}
		for _, m := range v.members {
			if err := enc.WriteToken(jsontext.String(m.Key)); err != nil {
				return err
			}
			if err := m.Value.encode(enc); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.ObjectEnd)
	}
}

// String implements fmt.Stringer for debugging output.
func (v *Value) String() string {
	if v == nil {
		return "<missing>"
	}
	b, err := v.MarshalJSON()
	if err != nil {
		return "<invalid: " + strings.TrimSpace(err.Error()) + ">"
	}
	return string(b)
}
