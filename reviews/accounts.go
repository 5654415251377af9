package reviews

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"reviews-cli/codec"
)

// CommentCounter is the metadata account tracking how many comments a record
// has. Comment slots [0, Count) exist on the ledger.
type CommentCounter struct {
	Address       solana.PublicKey
	Discriminator string
	Initialized   bool
	Count         uint8
}

// Comment is a single comment account.
type Comment struct {
	Address       solana.PublicKey
	Index         uint8
	Discriminator string
	Initialized   bool
	Review        solana.PublicKey
	Text          string
}

// Record is a review or intro account. Rating is nil for programs without one.
type Record struct {
	Address       solana.PublicKey
	Discriminator string
	Initialized   bool
	Owner         solana.PublicKey
	Title         string
	Rating        *uint8
	Body          string
}

// ParseCommentCounter decodes a comment counter account.
func ParseCommentCounter(address solana.PublicKey, data []byte) (*CommentCounter, error) {
	rec, err := codec.Decode(AccountMetadataLayout, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode comment counter %s: %w", address, err)
	}

	c := &CommentCounter{Address: address}
	if c.Discriminator, err = rec.String("discriminator"); err != nil {
		return nil, err
	}
	if c.Initialized, err = rec.Bool("is_initialized"); err != nil {
		return nil, err
	}
	if c.Count, err = rec.Uint8("counter"); err != nil {
		return nil, err
	}
	if err := checkHeader(address, c.Discriminator, CounterDiscriminator, c.Initialized); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseComment decodes a comment account stored at index.
func ParseComment(address solana.PublicKey, index uint8, data []byte) (*Comment, error) {
	rec, err := codec.Decode(CommentAccountLayout, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode comment %s: %w", address, err)
	}

	c := &Comment{Address: address, Index: index}
	if c.Discriminator, err = rec.String("discriminator"); err != nil {
		return nil, err
	}
	if c.Initialized, err = rec.Bool("is_initialized"); err != nil {
		return nil, err
	}
	if c.Review, err = rec.PublicKey("review"); err != nil {
		return nil, err
	}
	if c.Text, err = rec.String("comment"); err != nil {
		return nil, err
	}
	if err := checkHeader(address, c.Discriminator, CommentDiscriminator, c.Initialized); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseRecord decodes a record account of the program.
func (p Program) ParseRecord(address solana.PublicKey, data []byte) (*Record, error) {
	rec, err := codec.Decode(p.Account, data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s record %s: %w", p.Name, address, err)
	}

	r := &Record{Address: address}
	if r.Discriminator, err = rec.String("discriminator"); err != nil {
		return nil, err
	}
	if r.Initialized, err = rec.Bool("is_initialized"); err != nil {
		return nil, err
	}
	if r.Owner, err = rec.PublicKey(p.AccountOwner); err != nil {
		return nil, err
	}
	if r.Title, err = rec.String(p.Fields.Title); err != nil {
		return nil, err
	}
	if r.Body, err = rec.String(p.Fields.Body); err != nil {
		return nil, err
	}
	if p.Fields.HasRating() {
		rating, err := rec.Uint8(p.Fields.Rating)
		if err != nil {
			return nil, err
		}
		r.Rating = &rating
	}
	if err := checkHeader(address, r.Discriminator, p.Discriminator, r.Initialized); err != nil {
		return nil, err
	}
	return r, nil
}

func checkHeader(address solana.PublicKey, got, want string, initialized bool) error {
	if got != want {
		return fmt.Errorf("%w: %s holds %q, want %q", ErrUnexpectedAccount, address, got, want)
	}
	if !initialized {
		return fmt.Errorf("%w: %s", ErrUninitialized, address)
	}
	return nil
}

// discriminatorPrefix is the encoded leading field of accounts carrying
// discriminator, used to filter program accounts by type.
func discriminatorPrefix(discriminator string) ([]byte, error) {
	return codec.Marshal(codec.NewSchema("discriminator", codec.StringField("discriminator")), codec.Record{
		"discriminator": discriminator,
	})
}
