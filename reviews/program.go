// Package reviews integrates the movie review and student intro programs:
// instruction builders, account readers and transaction submission on top of
// the codec and pda packages.
package reviews

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"reviews-cli/codec"
	"reviews-cli/pda"
)

// DefaultReviewProgramID is the movie review program deployed on devnet.
var DefaultReviewProgramID = solana.MustPublicKeyFromBase58("3BVP5o96mnSkyAedCue9bbcSJmDbCeEw4TBhWg11orLJ")

// Instruction variants understood by both programs. Variant 1 is taken by the
// programs for an operation this client does not issue; it is deliberately
// absent here and decodes as an unknown variant.
const (
	VariantCreateRecord  codec.Variant = 0
	VariantCreateComment codec.Variant = 2
)

// Account discriminators written by the programs.
const (
	ReviewDiscriminator  = "review"
	IntroDiscriminator   = "intro"
	CounterDiscriminator = "counter"
	CommentDiscriminator = "comment"
)

const counterSeed = "comment"

// RecordFields names the fields of a create-record payload. An empty Rating
// means the program has no rating field.
type RecordFields struct {
	Title  string
	Rating string
	Body   string
}

var (
	MovieReviewFields  = RecordFields{Title: "title", Rating: "rating", Body: "description"}
	StudentIntroFields = RecordFields{Title: "name", Body: "message"}
)

// HasRating reports whether the payload carries a u8 rating.
func (f RecordFields) HasRating() bool {
	return f.Rating != ""
}

// Schema returns the create-record instruction layout for these fields.
func (f RecordFields) Schema(name string) codec.Schema {
	fields := []codec.Field{
		codec.U8Field("variant"),
		codec.StringField(f.Title),
	}
	if f.HasRating() {
		fields = append(fields, codec.U8Field(f.Rating))
	}
	fields = append(fields, codec.StringField(f.Body))
	return codec.NewSchema(name, fields...)
}

var (
	ReviewInstruction = MovieReviewFields.Schema("review_instruction")
	IntroInstruction  = StudentIntroFields.Schema("intro_instruction")

	CommentInstruction = codec.NewSchema("comment_instruction",
		codec.U8Field("variant"),
		codec.PublicKeyField("review"),
		codec.StringField("comment"),
	)

	AccountMetadataLayout = codec.NewSchema("account_metadata",
		codec.StringField("discriminator"),
		codec.BoolField("is_initialized"),
		codec.U8Field("counter"),
	)

	CommentAccountLayout = codec.NewSchema("comment_account",
		codec.StringField("discriminator"),
		codec.BoolField("is_initialized"),
		codec.PublicKeyField("review"),
		codec.StringField("comment"),
	)

	ReviewAccountLayout = codec.NewSchema("review_account",
		codec.StringField("discriminator"),
		codec.BoolField("is_initialized"),
		codec.PublicKeyField("reviewer"),
		codec.U8Field("rating"),
		codec.StringField("title"),
		codec.StringField("description"),
	)

	IntroAccountLayout = codec.NewSchema("intro_account",
		codec.StringField("discriminator"),
		codec.BoolField("is_initialized"),
		codec.PublicKeyField("student"),
		codec.StringField("name"),
		codec.StringField("message"),
	)
)

// Program describes one deployed program and how its accounts are addressed.
type Program struct {
	Name   string
	ID     solana.PublicKey
	Fields RecordFields

	// SeedTitle seeds the record address with the title as well as the payer.
	SeedTitle bool
	// Comments enables the comment counter and comment accounts.
	Comments bool

	// Account describes the record account, and Discriminator is the value
	// its first field holds.
	Account       codec.Schema
	AccountOwner  string
	Discriminator string
}

// MovieReview returns the movie review program deployed at id.
func MovieReview(id solana.PublicKey) Program {
	return Program{
		Name:          "movie-review",
		ID:            id,
		Fields:        MovieReviewFields,
		SeedTitle:     true,
		Comments:      true,
		Account:       ReviewAccountLayout,
		AccountOwner:  "reviewer",
		Discriminator: ReviewDiscriminator,
	}
}

// StudentIntro returns the student intro program deployed at id.
func StudentIntro(id solana.PublicKey) Program {
	return Program{
		Name:          "student-intro",
		ID:            id,
		Fields:        StudentIntroFields,
		Account:       IntroAccountLayout,
		AccountOwner:  "student",
		Discriminator: IntroDiscriminator,
	}
}

// RecordSchema is the create-record instruction layout of the program.
func (p Program) RecordSchema() codec.Schema {
	if p.Fields == StudentIntroFields {
		return IntroInstruction
	}
	if p.Fields == MovieReviewFields {
		return ReviewInstruction
	}
	return p.Fields.Schema(p.Name + "_instruction")
}

// Variants returns the instruction variants the program accepts.
func (p Program) Variants() codec.Variants {
	vs := codec.Variants{VariantCreateRecord: p.RecordSchema()}
	if p.Comments {
		vs[VariantCreateComment] = CommentInstruction
	}
	return vs
}

func (p Program) deriver() *pda.Deriver {
	return pda.NewDeriver(p.ID)
}

// RecordAddress derives the record account for a payer and title. The title is
// ignored by programs that key records by payer alone.
func (p Program) RecordAddress(payer solana.PublicKey, title string) (pda.Address, error) {
	seeds := [][]byte{payer[:]}
	if p.SeedTitle {
		seeds = append(seeds, []byte(title))
	}
	addr, err := p.deriver().Find(seeds...)
	if err != nil {
		return pda.Address{}, fmt.Errorf("failed to derive record address: %w", err)
	}
	return addr, nil
}

// CounterAddress derives the comment counter account of a record.
func (p Program) CounterAddress(record solana.PublicKey) (pda.Address, error) {
	if !p.Comments {
		return pda.Address{}, fmt.Errorf("program %s has no comments", p.Name)
	}
	addr, err := p.deriver().Find(record[:], []byte(counterSeed))
	if err != nil {
		return pda.Address{}, fmt.Errorf("failed to derive comment counter address: %w", err)
	}
	return addr, nil
}

// CommentAddress derives the comment account at index of a record.
func (p Program) CommentAddress(record solana.PublicKey, index uint8) (pda.Address, error) {
	if !p.Comments {
		return pda.Address{}, fmt.Errorf("program %s has no comments", p.Name)
	}
	addr, err := p.deriver().Find(record[:], []byte{index})
	if err != nil {
		return pda.Address{}, fmt.Errorf("failed to derive comment %d address: %w", index, err)
	}
	return addr, nil
}

// CommentAddresses derives the addresses of the first count comments of a
// record, in index order.
func (p Program) CommentAddresses(record solana.PublicKey, count uint8) ([]solana.PublicKey, error) {
	addrs := make([]solana.PublicKey, 0, count)
	for i := 0; i < int(count); i++ {
		addr, err := p.CommentAddress(record, uint8(i))
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr.Key)
	}
	return addrs, nil
}
