package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"reviews-cli/codec"
)

// DefaultHistoryLimit is the signature page size used when no limit is given.
// It is the largest page the RPC accepts.
const DefaultHistoryLimit = 1000

const historyConcurrency = 10

// HistoryEntry is one transaction touching the queried address.
type HistoryEntry struct {
	Signature solana.Signature
	BlockTime time.Time
	Failed    bool

	// Instructions holds the instructions addressed to the program, in
	// transaction order.
	Instructions []DecodedInstruction

	// Err is set when the transaction itself could not be fetched.
	Err error
}

// DecodedInstruction is a program instruction found in a transaction.
type DecodedInstruction struct {
	Index    int
	Variant  codec.Variant
	Fields   codec.Record
	Accounts []solana.PublicKey

	// Err is set when the instruction data did not decode under any known
	// variant.
	Err error
}

// History returns the most recent transactions touching address, newest first,
// with this program's instructions decoded. Transactions are fetched
// concurrently; order follows the ledger's signature order.
func (c *Client) History(ctx context.Context, address solana.PublicKey, limit int) ([]HistoryEntry, error) {
	hl, ok := c.ledger.(HistoryLedger)
	if !ok {
		return nil, fmt.Errorf("%w: transaction history", ErrUnsupportedLedger)
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	sigs, err := hl.GetSignatures(ctx, address, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntry, len(sigs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyConcurrency)
	for i, sig := range sigs {
		i, sig := i, sig
		g.Go(func() error {
			entries[i] = c.historyEntry(gctx, hl, sig)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) historyEntry(ctx context.Context, hl HistoryLedger, sig solana.Signature) HistoryEntry {
	entry := HistoryEntry{Signature: sig}

	rec, err := hl.GetTransaction(ctx, sig)
	if err != nil {
		c.log.Warn("failed to fetch transaction", zap.Stringer("signature", sig), zap.Error(err))
		entry.Err = err
		return entry
	}

	entry.BlockTime = rec.BlockTime
	entry.Failed = rec.Failed
	if rec.Transaction != nil {
		entry.Instructions = c.DecodeTransaction(rec.Transaction)
	}
	return entry
}

// DecodeTransaction decodes the instructions of tx that target the program.
// Instructions for other programs are skipped.
func (c *Client) DecodeTransaction(tx *solana.Transaction) []DecodedInstruction {
	keys := tx.Message.AccountKeys
	variants := c.program.Variants()

	var out []DecodedInstruction
	for idx, instr := range tx.Message.Instructions {
		programIdx := int(instr.ProgramIDIndex)
		if programIdx >= len(keys) || !keys[programIdx].Equals(c.program.ID) {
			continue
		}

		decoded := DecodedInstruction{Index: idx}
		for _, a := range instr.Accounts {
			if int(a) < len(keys) {
				decoded.Accounts = append(decoded.Accounts, keys[a])
			}
		}
		decoded.Variant, decoded.Fields, decoded.Err = codec.DecodeVariant(variants, instr.Data)
		out = append(out, decoded)
	}
	return out
}
