package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-json-experiment/json/jsontext"
)

// MaxDepth bounds nesting accepted by Parse.
const MaxDepth = 1000

var (
	ErrTooDeep       = errors.New("jsonvalue: nesting exceeds maximum depth")
	ErrTrailingData  = errors.New("jsonvalue: unexpected data after top-level value")
	errUnexpectedEnd = errors.New("jsonvalue: unexpected end of input")
)

// Parse decodes exactly one JSON value from data. Duplicate object keys are
// accepted; the last value wins and keeps the position of the first key.
func Parse(data []byte) (*Value, error) {
	return parse(bytes.NewReader(data))
}

// ParseString is Parse for string input.
func ParseString(s string) (*Value, error) {
	return parse(strings.NewReader(s))
}

func parse(r io.Reader) (*Value, error) {
	dec := jsontext.NewDecoder(r,
		jsontext.AllowDuplicateNames(true),
		jsontext.AllowInvalidUTF8(true),
	)
	tok, err := dec.ReadToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errUnexpectedEnd
		}
		return nil, err
	}
	v, err := readValue(dec, tok, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			return nil, ErrTrailingData
		}
		return nil, err
	}
	return v, nil
}

func readValue(dec *jsontext.Decoder, tok jsontext.Token, depth int) (*Value, error) {
	switch tok.Kind() {
	case 'n':
		return NewNull(), nil
	case 't', 'f':
		return NewBool(tok.Bool()), nil
	case '0':
		return NewNumber(tok.String()), nil
	case '"':
		return NewString(tok.String()), nil
	case '[':
		if depth >= MaxDepth {
			return nil, ErrTooDeep
		}
		return readArray(dec, depth+1)
	case '{':
		if depth >= MaxDepth {
			return nil, ErrTooDeep
		}
		return readObject(dec, depth+1)
	default:
		return nil, fmt.Errorf("jsonvalue: unexpected token %v", tok.Kind())
	}
}

func readArray(dec *jsontext.Decoder, depth int) (*Value, error) {
	arr := &Value{kind: KindArray}
	for {
		tok, err := next(dec)
		if err != nil {
			return nil, err
		}
		if tok.Kind() == ']' {
			return arr, nil
		}
		item, err := readValue(dec, tok, depth)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, item)
	}
}

func readObject(dec *jsontext.Decoder, depth int) (*Value, error) {
	obj := &Value{kind: KindObject}
	var index map[string]int
	for {
		tok, err := next(dec)
		if err != nil {
			return nil, err
		}
		if tok.Kind() == '}' {
			return obj, nil
		}
		key := tok.String()

		tok, err = next(dec)
		if err != nil {
			return nil, err
		}
		val, err := readValue(dec, tok, depth)
		if err != nil {
			return nil, err
		}

		if index == nil {
			index = make(map[string]int)
		}
		if i, dup := index[key]; dup {
			obj.members[i].Value = val
			continue
		}
		index[key] = len(obj.members)
		obj.members = append(obj.members, Member{Key: key, Value: val})
	}
}

func next(dec *jsontext.Decoder) (jsontext.Token, error) {
	tok, err := dec.ReadToken()
	if errors.Is(err, io.EOF) {
		return tok, errUnexpectedEnd
	}
	return tok, err
}
