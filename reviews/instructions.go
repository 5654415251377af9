package reviews

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"reviews-cli/codec"
)

var (
	ErrRatingRequired    = errors.New("rating is required")
	ErrRatingUnsupported = errors.New("program has no rating field")
)

// CreateRecord is the payload of a create-record instruction. Title holds the
// intro name and Body the intro message for the student intro program.
type CreateRecord struct {
	Title  string
	Rating *uint8
	Body   string
}

// Rating returns a pointer to r, for building CreateRecord literals.
func Rating(r uint8) *uint8 {
	return &r
}

// CreateComment is the payload of a create-comment instruction.
type CreateComment struct {
	Review solana.PublicKey
	Text   string
}

func (p Program) recordPayload(in CreateRecord) (codec.Record, error) {
	rec := codec.Record{
		"variant":      uint8(VariantCreateRecord),
		p.Fields.Title: in.Title,
		p.Fields.Body:  in.Body,
	}
	switch {
	case p.Fields.HasRating() && in.Rating == nil:
		return nil, ErrRatingRequired
	case !p.Fields.HasRating() && in.Rating != nil:
		return nil, ErrRatingUnsupported
	case p.Fields.HasRating():
		rec[p.Fields.Rating] = *in.Rating
	}
	return rec, nil
}

// EncodeCreateRecord returns the instruction data for in.
func (p Program) EncodeCreateRecord(in CreateRecord) ([]byte, error) {
	rec, err := p.recordPayload(in)
	if err != nil {
		return nil, err
	}
	return encode(p.RecordSchema(), rec)
}

// EncodeCreateComment returns the instruction data for in.
func EncodeCreateComment(in CreateComment) ([]byte, error) {
	return encode(CommentInstruction, codec.Record{
		"variant": uint8(VariantCreateComment),
		"review":  in.Review,
		"comment": in.Text,
	})
}

func encode(s codec.Schema, rec codec.Record) ([]byte, error) {
	buf := make([]byte, codec.DefaultBufferSize)
	data, err := codec.Encode(s, rec, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.Name, err)
	}
	return data, nil
}

// CreateRecordInstruction builds the instruction creating a record owned by
// payer. The counter account is included only for programs with comments.
func (p Program) CreateRecordInstruction(payer solana.PublicKey, in CreateRecord) (*solana.GenericInstruction, error) {
	data, err := p.EncodeCreateRecord(in)
	if err != nil {
		return nil, err
	}

	record, err := p.RecordAddress(payer, in.Title)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: false},
		{PublicKey: record.Key, IsSigner: false, IsWritable: true},
	}
	if p.Comments {
		counter, err := p.CounterAddress(record.Key)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, &solana.AccountMeta{PublicKey: counter.Key, IsSigner: false, IsWritable: true})
	}
	accounts = append(accounts, &solana.AccountMeta{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false})

	return solana.NewInstruction(p.ID, accounts, data), nil
}

// CommentInstructionAt builds the instruction writing comment index of record.
// Callers normally use Client.CreateCommentInstruction, which reads index from
// the counter account.
func (p Program) CommentInstructionAt(payer, record solana.PublicKey, index uint8, text string) (*solana.GenericInstruction, error) {
	data, err := EncodeCreateComment(CreateComment{Review: record, Text: text})
	if err != nil {
		return nil, err
	}

	counter, err := p.CounterAddress(record)
	if err != nil {
		return nil, err
	}
	comment, err := p.CommentAddress(record, index)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: false},
		{PublicKey: record, IsSigner: false, IsWritable: true},
		{PublicKey: counter.Key, IsSigner: false, IsWritable: true},
		{PublicKey: comment.Key, IsSigner: false, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
	}
	return solana.NewInstruction(p.ID, accounts, data), nil
}
