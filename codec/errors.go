package codec

import (
	"errors"
	"fmt"
)

var (
	ErrMissingField   = errors.New("missing field")
	ErrTypeMismatch   = errors.New("value type does not match field kind")
	ErrBufferTooSmall = errors.New("buffer smaller than encoded span")

	ErrTruncated      = errors.New("buffer truncated")
	ErrStringOverflow = errors.New("declared string length exceeds remaining buffer")
	ErrInvalidBool    = errors.New("invalid bool byte")
	ErrUnknownVariant = errors.New("unknown instruction variant")
)

// EncodingError reports a value that could not be written under a schema.
type EncodingError struct {
	Schema string
	Field  string
	Err    error
}

func (e *EncodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("encode %s: %v", e.Schema, e.Err)
	}
	return fmt.Sprintf("encode %s.%s: %v", e.Schema, e.Field, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// DecodingError reports a buffer that does not satisfy a schema.
type DecodingError struct {
	Schema string
	Field  string
	Offset int
	Err    error
}

func (e *DecodingError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s at offset %d: %v", e.Schema, e.Offset, e.Err)
	}
	return fmt.Sprintf("decode %s.%s at offset %d: %v", e.Schema, e.Field, e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func mismatch(s Schema, f Field, v interface{}) error {
	return &EncodingError{
		Schema: s.Name,
		Field:  f.Name,
		Err:    fmt.Errorf("%w: want %s, got %T", ErrTypeMismatch, f.Kind, v),
	}
}
