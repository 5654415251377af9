package codec

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewSchema = NewSchema("review_instruction",
	U8Field("variant"),
	StringField("title"),
	U8Field("rating"),
	StringField("description"),
)

var commentSchema = NewSchema("comment_instruction",
	U8Field("variant"),
	PublicKeyField("review"),
	StringField("comment"),
)

var metadataSchema = NewSchema("account_metadata",
	StringField("discriminator"),
	BoolField("is_initialized"),
	U8Field("counter"),
)

func TestEncode_ReviewPayload(t *testing.T) {
	buf := make([]byte, DefaultBufferSize)
	rec := Record{
		"variant":     uint8(0),
		"title":       "title",
		"rating":      uint8(3),
		"description": "description",
	}

	data, err := Encode(reviewSchema, rec, buf)
	require.NoError(t, err)
	require.Len(t, data, 1+4+5+1+4+11)

	expected := []byte{0, 5, 0, 0, 0}
	expected = append(expected, "title"...)
	expected = append(expected, 3, 11, 0, 0, 0)
	expected = append(expected, "description"...)
	assert.Equal(t, expected, data)

	span, err := Span(reviewSchema, buf)
	require.NoError(t, err)
	assert.Equal(t, 26, span)

	decoded, err := Decode(reviewSchema, data)
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestRoundTrip(t *testing.T) {
	key := solana.NewWallet().PublicKey()

	cases := []struct {
		schema Schema
		rec    Record
	}{
		{reviewSchema, Record{"variant": uint8(0), "title": "", "rating": uint8(0), "description": ""}},
		{reviewSchema, Record{"variant": uint8(0), "title": "Nosferatu ☉", "rating": uint8(255), "description": "silent"}},
		{commentSchema, Record{"variant": uint8(2), "review": key, "comment": "first!"}},
		{metadataSchema, Record{"discriminator": "counter", "is_initialized": true, "counter": uint8(7)}},
		{metadataSchema, Record{"discriminator": "", "is_initialized": false, "counter": uint8(0)}},
	}

	for _, tc := range cases {
		data, err := Marshal(tc.schema, tc.rec)
		require.NoError(t, err)

		size, err := tc.schema.Size(tc.rec)
		require.NoError(t, err)
		assert.Len(t, data, size)

		span, err := Span(tc.schema, data)
		require.NoError(t, err)
		assert.Equal(t, len(data), span)

		decoded, err := Decode(tc.schema, data)
		require.NoError(t, err)
		assert.Equal(t, tc.rec, decoded)
	}
}

func TestEncode_PublicKeyArray(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	var raw [32]byte
	copy(raw[:], key[:])

	data, err := Marshal(commentSchema, Record{"variant": uint8(2), "review": raw, "comment": "x"})
	require.NoError(t, err)

	decoded, err := Decode(commentSchema, data)
	require.NoError(t, err)
	assert.Equal(t, key, decoded["review"])
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode(reviewSchema, Record{"variant": "zero", "title": "t", "rating": uint8(1), "description": "d"}, make([]byte, 100))
	var encErr *EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "variant", encErr.Field)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = Encode(reviewSchema, Record{"variant": uint8(0), "title": "t", "rating": 3, "description": "d"}, make([]byte, 100))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = Encode(reviewSchema, Record{"variant": uint8(0), "title": "t", "description": "d"}, make([]byte, 100))
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "rating", encErr.Field)
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = Encode(reviewSchema, Record{"variant": uint8(0), "title": "title", "rating": uint8(3), "description": "description"}, make([]byte, 25))
	require.True(t, errors.As(err, &encErr))
	assert.True(t, errors.Is(err, ErrBufferTooSmall))
}

func TestEncode_LeavesTailUntouched(t *testing.T) {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = 0xAA
	}

	data, err := Encode(metadataSchema, Record{"discriminator": "ab", "is_initialized": true, "counter": uint8(1)}, buf)
	require.NoError(t, err)
	assert.Len(t, data, 8)
	for _, b := range buf[len(data):] {
		assert.Equal(t, byte(0xAA), b)
	}
}

func TestDecode_IgnoresTrailingBytes(t *testing.T) {
	data, err := Marshal(metadataSchema, Record{"discriminator": "counter", "is_initialized": true, "counter": uint8(2)})
	require.NoError(t, err)

	padded := append(append([]byte{}, data...), make([]byte, 500)...)
	decoded, err := Decode(metadataSchema, padded)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), decoded["counter"])

	span, err := Span(metadataSchema, padded)
	require.NoError(t, err)
	assert.Equal(t, len(data), span)

	// Garbage past the span must not matter either.
	garbage := append(append([]byte{}, data...), 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	_, err = Decode(metadataSchema, garbage)
	assert.NoError(t, err)
}

func TestDecode_Errors(t *testing.T) {
	var decErr *DecodingError

	_, err := Decode(metadataSchema, []byte{0, 0, 0})
	require.True(t, errors.As(err, &decErr))
	assert.True(t, errors.Is(err, ErrTruncated))

	// Declared length of 10 with only 2 bytes behind it.
	_, err = Decode(metadataSchema, []byte{10, 0, 0, 0, 'a', 'b'})
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "discriminator", decErr.Field)
	assert.Equal(t, 0, decErr.Offset)
	assert.True(t, errors.Is(err, ErrStringOverflow))

	// Enough for the minimum size but the string eats the tail.
	_, err = Decode(metadataSchema, []byte{2, 0, 0, 0, 'a', 'b'})
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, "is_initialized", decErr.Field)
	assert.Equal(t, 6, decErr.Offset)
	assert.True(t, errors.Is(err, ErrTruncated))

	_, err = Decode(metadataSchema, []byte{0, 0, 0, 0, 2, 1})
	require.True(t, errors.As(err, &decErr))
	assert.True(t, errors.Is(err, ErrInvalidBool))

	_, err = Span(commentSchema, make([]byte, 10))
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestDecodeVariant(t *testing.T) {
	variants := Variants{
		0: reviewSchema,
		2: commentSchema,
	}

	key := solana.NewWallet().PublicKey()
	data, err := Marshal(commentSchema, Record{"variant": uint8(2), "review": key, "comment": "hello"})
	require.NoError(t, err)

	v, rec, err := DecodeVariant(variants, data)
	require.NoError(t, err)
	assert.Equal(t, Variant(2), v)
	assert.Equal(t, "hello", rec["comment"])

	data, err = Marshal(reviewSchema, Record{"variant": uint8(0), "title": "t", "rating": uint8(5), "description": "d"})
	require.NoError(t, err)
	v, rec, err = DecodeVariant(variants, data)
	require.NoError(t, err)
	assert.Equal(t, Variant(0), v)
	assert.Equal(t, uint8(5), rec["rating"])

	for _, unknown := range []byte{1, 3, 255} {
		bad := append([]byte{unknown}, data[1:]...)
		v, rec, err = DecodeVariant(variants, bad)
		assert.Equal(t, Variant(unknown), v)
		assert.Nil(t, rec)
		assert.True(t, errors.Is(err, ErrUnknownVariant))
	}

	_, _, err = DecodeVariant(variants, nil)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestRecordAccessors(t *testing.T) {
	key := solana.NewWallet().PublicKey()
	rec := Record{"u": uint8(1), "b": true, "s": "x", "k": key}

	u, err := rec.Uint8("u")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), u)

	b, err := rec.Bool("b")
	require.NoError(t, err)
	assert.True(t, b)

	s, err := rec.String("s")
	require.NoError(t, err)
	assert.Equal(t, "x", s)

	k, err := rec.PublicKey("k")
	require.NoError(t, err)
	assert.Equal(t, key, k)

	_, err = rec.Uint8("s")
	assert.Error(t, err)
	_, err = rec.String("missing")
	assert.Error(t, err)
}

func TestMinSize(t *testing.T) {
	assert.Equal(t, 1+4+1+4, reviewSchema.MinSize())
	assert.Equal(t, 1+32+4, commentSchema.MinSize())
	assert.Equal(t, 4+1+1, metadataSchema.MinSize())
}
