package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Encode writes r into buf in schema order and returns the written prefix of
// buf. The unused tail of buf is left untouched and is not part of the result.
func Encode(s Schema, r Record, buf []byte) ([]byte, error) {
	size, err := s.Size(r)
	if err != nil {
		return nil, err
	}
	if len(buf) < size {
		return nil, &EncodingError{
			Schema: s.Name,
			Err:    fmt.Errorf("%w: have %d, need %d", ErrBufferTooSmall, len(buf), size),
		}
	}

	out := bytes.NewBuffer(make([]byte, 0, size))
	enc := bin.NewBorshEncoder(out)
	for _, f := range s.Fields {
		if err := writeField(enc, s, f, r[f.Name]); err != nil {
			return nil, err
		}
	}

	n := copy(buf, out.Bytes())
	return buf[:n], nil
}

// Marshal encodes r into a freshly allocated buffer of exactly the encoded size.
func Marshal(s Schema, r Record) ([]byte, error) {
	size, err := s.Size(r)
	if err != nil {
		return nil, err
	}
	return Encode(s, r, make([]byte, size))
}

func writeField(enc *bin.Encoder, s Schema, f Field, v interface{}) error {
	var err error
	switch f.Kind {
	case U8:
		u, ok := v.(uint8)
		if !ok {
			return mismatch(s, f, v)
		}
		err = enc.WriteUint8(u)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(s, f, v)
		}
		var raw uint8
		if b {
			raw = 1
		}
		err = enc.WriteUint8(raw)
	case String:
		str, ok := v.(string)
		if !ok {
			return mismatch(s, f, v)
		}
		if err = enc.WriteUint32(uint32(len(str)), binary.LittleEndian); err == nil {
			err = enc.WriteBytes([]byte(str), false)
		}
	case PublicKey:
		var key solana.PublicKey
		switch k := v.(type) {
		case solana.PublicKey:
			key = k
		case [32]byte:
			key = solana.PublicKeyFromBytes(k[:])
		default:
			return mismatch(s, f, v)
		}
		err = enc.WriteBytes(key[:], false)
	default:
		return &EncodingError{Schema: s.Name, Field: f.Name, Err: fmt.Errorf("unsupported kind %s", f.Kind)}
	}
	if err != nil {
		return &EncodingError{Schema: s.Name, Field: f.Name, Err: err}
	}
	return nil
}
