package reviews

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"reviews-cli/codec"
)

type fakeLedger struct {
	sync.Mutex

	accounts map[solana.PublicKey][]byte
	reads    []solana.PublicKey
	batches  [][]solana.PublicKey

	programAccounts []ProgramAccount
	prefixes        [][]byte

	signatures   []solana.Signature
	transactions map[solana.Signature]*TransactionRecord
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		accounts:     make(map[solana.PublicKey][]byte),
		transactions: make(map[solana.Signature]*TransactionRecord),
	}
}

func (l *fakeLedger) GetAccountInfo(_ context.Context, address solana.PublicKey) ([]byte, error) {
	l.Lock()
	defer l.Unlock()
	l.reads = append(l.reads, address)
	return l.accounts[address], nil
}

func (l *fakeLedger) GetMultipleAccountsInfo(_ context.Context, addresses []solana.PublicKey) ([][]byte, error) {
	l.Lock()
	defer l.Unlock()
	l.batches = append(l.batches, append([]solana.PublicKey{}, addresses...))
	out := make([][]byte, len(addresses))
	for i, a := range addresses {
		out[i] = l.accounts[a]
	}
	return out, nil
}

func (l *fakeLedger) GetProgramAccounts(_ context.Context, _ solana.PublicKey, prefix []byte) ([]ProgramAccount, error) {
	l.Lock()
	defer l.Unlock()
	l.prefixes = append(l.prefixes, prefix)
	return l.programAccounts, nil
}

func (l *fakeLedger) GetSignatures(_ context.Context, _ solana.PublicKey, limit int) ([]solana.Signature, error) {
	if limit < len(l.signatures) {
		return l.signatures[:limit], nil
	}
	return l.signatures, nil
}

func (l *fakeLedger) GetTransaction(_ context.Context, sig solana.Signature) (*TransactionRecord, error) {
	l.Lock()
	defer l.Unlock()
	rec, ok := l.transactions[sig]
	if !ok {
		return nil, errors.New("transaction not found")
	}
	return rec, nil
}

// readOnlyLedger hides the optional interfaces of fakeLedger.
type readOnlyLedger struct {
	Ledger
}

func counterData(t *testing.T, count uint8) []byte {
	data, err := codec.Marshal(AccountMetadataLayout, codec.Record{
		"discriminator":  CounterDiscriminator,
		"is_initialized": true,
		"counter":        count,
	})
	require.NoError(t, err)
	return data
}

func commentData(t *testing.T, review solana.PublicKey, text string) []byte {
	data, err := codec.Marshal(CommentAccountLayout, codec.Record{
		"discriminator":  CommentDiscriminator,
		"is_initialized": true,
		"review":         review,
		"comment":        text,
	})
	require.NoError(t, err)
	return data
}

func reviewData(t *testing.T, reviewer solana.PublicKey, title string, rating uint8, description string) []byte {
	data, err := codec.Marshal(ReviewAccountLayout, codec.Record{
		"discriminator":  ReviewDiscriminator,
		"is_initialized": true,
		"reviewer":       reviewer,
		"rating":         rating,
		"title":          title,
		"description":    description,
	})
	require.NoError(t, err)
	return data
}
