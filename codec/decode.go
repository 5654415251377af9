package codec

import (
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Decode reads a record from the start of data. Bytes after the schema's span
// are ignored.
func Decode(s Schema, data []byte) (Record, error) {
	r, _, err := read(s, data)
	return r, err
}

// Span returns how many leading bytes of buf the schema consumes. For a buffer
// produced by Encode it equals the length of the returned slice.
func Span(s Schema, buf []byte) (int, error) {
	_, n, err := read(s, buf)
	return n, err
}

func read(s Schema, data []byte) (Record, int, error) {
	if need := s.MinSize(); len(data) < need {
		return nil, 0, &DecodingError{
			Schema: s.Name,
			Offset: len(data),
			Err:    fmt.Errorf("%w: have %d bytes, need at least %d", ErrTruncated, len(data), need),
		}
	}

	dec := bin.NewBorshDecoder(data)
	r := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		offset := int(dec.Position())
		v, err := readField(dec, f)
		if err != nil {
			return nil, 0, &DecodingError{Schema: s.Name, Field: f.Name, Offset: offset, Err: err}
		}
		r[f.Name] = v
	}
	return r, int(dec.Position()), nil
}

func readField(dec *bin.Decoder, f Field) (interface{}, error) {
	if dec.Remaining() < f.Kind.minSize() {
		return nil, ErrTruncated
	}

	switch f.Kind {
	case U8:
		v, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		return v, nil
	case Bool:
		v, err := dec.ReadUint8()
		if err != nil {
			return nil, err
		}
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		default:
			return nil, fmt.Errorf("%w: %d", ErrInvalidBool, v)
		}
	case String:
		n, err := dec.ReadUint32(binary.LittleEndian)
		if err != nil {
			return nil, err
		}
		if uint64(n) > uint64(dec.Remaining()) {
			return nil, fmt.Errorf("%w: declared %d, remaining %d", ErrStringOverflow, n, dec.Remaining())
		}
		b, err := dec.ReadNBytes(int(n))
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case PublicKey:
		b, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, err
		}
		return solana.PublicKeyFromBytes(b), nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", f.Kind)
	}
}

// Variant is the leading discriminator byte of an instruction payload.
type Variant uint8

// Variants maps each known discriminator to the schema of its payload. Every
// schema is expected to start with the u8 discriminator itself.
type Variants map[Variant]Schema

// DecodeVariant dispatches on the first byte of data. A discriminator missing
// from vs is an error; it is never decoded under another variant's schema.
func DecodeVariant(vs Variants, data []byte) (Variant, Record, error) {
	if len(data) == 0 {
		return 0, nil, &DecodingError{Schema: "instruction", Field: "variant", Err: ErrTruncated}
	}

	v := Variant(data[0])
	s, ok := vs[v]
	if !ok {
		return v, nil, &DecodingError{
			Schema: "instruction",
			Field:  "variant",
			Err:    fmt.Errorf("%w: %d", ErrUnknownVariant, v),
		}
	}

	r, err := Decode(s, data)
	if err != nil {
		return v, nil, err
	}
	return v, r, nil
}
