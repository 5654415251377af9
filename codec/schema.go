// Package codec encodes and decodes fixed-order binary layouts used by
// program instructions and account records.
//
// A Schema is an ordered list of fields. There is no self-describing metadata
// on the wire: field order is the contract, strings carry a 4-byte
// little-endian length prefix, and public keys are 32 raw bytes.
package codec

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultBufferSize is the scratch buffer size used when callers do not
// provide one.
const DefaultBufferSize = 1000

// Kind is the wire type of a single field.
type Kind uint8

const (
	U8 Kind = iota
	Bool
	String
	PublicKey
)

const stringLengthSize = 4

func (k Kind) String() string {
	switch k {
	case U8:
		return "u8"
	case Bool:
		return "bool"
	case String:
		return "string"
	case PublicKey:
		return "publicKey"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// minSize is the smallest number of bytes a field of this kind occupies.
func (k Kind) minSize() int {
	switch k {
	case U8, Bool:
		return 1
	case String:
		return stringLengthSize
	case PublicKey:
		return solana.PublicKeyLength
	default:
		return 0
	}
}

// Field is a named, typed slot in a Schema.
type Field struct {
	Name string
	Kind Kind
}

func U8Field(name string) Field        { return Field{Name: name, Kind: U8} }
func BoolField(name string) Field      { return Field{Name: name, Kind: Bool} }
func StringField(name string) Field    { return Field{Name: name, Kind: String} }
func PublicKeyField(name string) Field { return Field{Name: name, Kind: PublicKey} }

// Schema is an ordered field layout. Reordering fields changes the wire format.
type Schema struct {
	Name   string
	Fields []Field
}

// NewSchema returns a schema with the fields in the given order.
func NewSchema(name string, fields ...Field) Schema {
	return Schema{Name: name, Fields: fields}
}

// MinSize is the number of bytes the schema needs when every string is empty.
func (s Schema) MinSize() int {
	var n int
	for _, f := range s.Fields {
		n += f.Kind.minSize()
	}
	return n
}

// Size returns the number of bytes Encode writes for r.
func (s Schema) Size(r Record) (int, error) {
	var n int
	for _, f := range s.Fields {
		v, ok := r[f.Name]
		if !ok {
			return 0, &EncodingError{Schema: s.Name, Field: f.Name, Err: ErrMissingField}
		}
		switch f.Kind {
		case String:
			str, ok := v.(string)
			if !ok {
				return 0, mismatch(s, f, v)
			}
			n += stringLengthSize + len(str)
		default:
			n += f.Kind.minSize()
		}
	}
	return n, nil
}

// Record is a structured value keyed by field name.
type Record map[string]interface{}

// Uint8 returns the named field as a uint8.
func (r Record) Uint8(name string) (uint8, error) {
	v, ok := r[name].(uint8)
	if !ok {
		return 0, fmt.Errorf("field %q is not a u8", name)
	}
	return v, nil
}

// Bool returns the named field as a bool.
func (r Record) Bool(name string) (bool, error) {
	v, ok := r[name].(bool)
	if !ok {
		return false, fmt.Errorf("field %q is not a bool", name)
	}
	return v, nil
}

// String returns the named field as a string.
func (r Record) String(name string) (string, error) {
	v, ok := r[name].(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", name)
	}
	return v, nil
}

// PublicKey returns the named field as a public key.
func (r Record) PublicKey(name string) (solana.PublicKey, error) {
	v, ok := r[name].(solana.PublicKey)
	if !ok {
		return solana.PublicKey{}, fmt.Errorf("field %q is not a public key", name)
	}
	return v, nil
}
