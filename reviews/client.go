package reviews

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

// Client reads and writes the accounts of one program through a ledger.
type Client struct {
	program Program
	ledger  Ledger
	log     *zap.Logger
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for program backed by ledger.
func NewClient(program Program, ledger Ledger, opts ...Option) *Client {
	c := &Client{
		program: program,
		ledger:  ledger,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With(zap.String("program", program.Name), zap.Stringer("program_id", program.ID))
	return c
}

func (c *Client) Program() Program {
	return c.program
}

// FetchCommentCounter reads the comment counter of record.
func (c *Client) FetchCommentCounter(ctx context.Context, record solana.PublicKey) (*CommentCounter, error) {
	addr, err := c.program.CounterAddress(record)
	if err != nil {
		return nil, err
	}

	data, err := c.ledger.GetAccountInfo(ctx, addr.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment counter: %w", err)
	}
	if data == nil {
		return nil, &AccountNotFoundError{Address: addr.Key, Kind: "comment counter"}
	}

	counter, err := ParseCommentCounter(addr.Key, data)
	if err != nil {
		return nil, err
	}
	c.log.Debug("read comment counter", zap.Stringer("record", record), zap.Uint8("count", counter.Count))
	return counter, nil
}

// CommentAddresses derives the addresses of the first count comments of record.
func (c *Client) CommentAddresses(record solana.PublicKey, count uint8) ([]solana.PublicKey, error) {
	return c.program.CommentAddresses(record, count)
}

// FetchComments reads every comment of record. The counter is read first and
// all comment slots below it are fetched in one batch; a missing slot is an
// AccountNotFoundError.
func (c *Client) FetchComments(ctx context.Context, record solana.PublicKey) ([]*Comment, error) {
	counter, err := c.FetchCommentCounter(ctx, record)
	if err != nil {
		return nil, err
	}
	if counter.Count == 0 {
		return []*Comment{}, nil
	}

	addrs, err := c.CommentAddresses(record, counter.Count)
	if err != nil {
		return nil, err
	}

	datas, err := c.ledger.GetMultipleAccountsInfo(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("failed to get comment accounts: %w", err)
	}
	if len(datas) != len(addrs) {
		return nil, fmt.Errorf("requested %d comment accounts, ledger returned %d", len(addrs), len(datas))
	}

	comments := make([]*Comment, 0, len(addrs))
	for i, data := range datas {
		if data == nil {
			return nil, &AccountNotFoundError{Address: addrs[i], Kind: fmt.Sprintf("comment %d", i)}
		}
		comment, err := ParseComment(addrs[i], uint8(i), data)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, nil
}

// CreateCommentInstruction builds a comment on record at the next free slot,
// as given by the record's comment counter.
func (c *Client) CreateCommentInstruction(ctx context.Context, payer, record solana.PublicKey, text string) (*solana.GenericInstruction, error) {
	counter, err := c.FetchCommentCounter(ctx, record)
	if err != nil {
		return nil, err
	}
	return c.program.CommentInstructionAt(payer, record, counter.Count, text)
}

// FetchRecord reads a single record account.
func (c *Client) FetchRecord(ctx context.Context, address solana.PublicKey) (*Record, error) {
	data, err := c.ledger.GetAccountInfo(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", c.program.Name, err)
	}
	if data == nil {
		return nil, &AccountNotFoundError{Address: address, Kind: c.program.Name + " record"}
	}
	return c.program.ParseRecord(address, data)
}

// FetchReviews lists every record account of the program. Accounts that fail
// to decode are logged and skipped.
func (c *Client) FetchReviews(ctx context.Context) ([]*Record, error) {
	scanner, ok := c.ledger.(ProgramAccountsLedger)
	if !ok {
		return nil, fmt.Errorf("%w: program accounts", ErrUnsupportedLedger)
	}

	prefix, err := discriminatorPrefix(c.program.Discriminator)
	if err != nil {
		return nil, err
	}

	accounts, err := scanner.GetProgramAccounts(ctx, c.program.ID, prefix)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, 0, len(accounts))
	for _, acc := range accounts {
		rec, err := c.program.ParseRecord(acc.Address, acc.Data)
		if err != nil {
			c.log.Warn("failed to parse record account", zap.Stringer("address", acc.Address), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
