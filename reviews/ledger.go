package reviews

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Signer supplies the fee payer and signs transaction messages. It is
// satisfied by solana.PrivateKey.
type Signer interface {
	PublicKey() solana.PublicKey
	Sign(message []byte) (solana.Signature, error)
}

// Ledger reads raw account data. A nil slice with a nil error means the
// account does not exist; an existing account with no data is an empty,
// non-nil slice.
type Ledger interface {
	GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error)
	// GetMultipleAccountsInfo returns one entry per address, in order.
	GetMultipleAccountsInfo(ctx context.Context, addresses []solana.PublicKey) ([][]byte, error)
}

// ProgramAccount is an account owned by a program.
type ProgramAccount struct {
	Address solana.PublicKey
	Data    []byte
}

// ProgramAccountsLedger lists accounts owned by a program whose data starts
// with prefix.
type ProgramAccountsLedger interface {
	GetProgramAccounts(ctx context.Context, program solana.PublicKey, prefix []byte) ([]ProgramAccount, error)
}

// TransactionRecord is a confirmed transaction as seen by the ledger.
type TransactionRecord struct {
	Signature   solana.Signature
	BlockTime   time.Time
	Failed      bool
	Transaction *solana.Transaction
}

// HistoryLedger reads the transactions touching an address, newest first.
type HistoryLedger interface {
	GetSignatures(ctx context.Context, address solana.PublicKey, limit int) ([]solana.Signature, error)
	GetTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error)
}

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	Confirmed bool
	// Err is the program error when the transaction landed but failed.
	Err error
}

// Sender submits signed transactions.
type Sender interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus returns a zero status for signatures the ledger has not
	// seen yet.
	SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureStatus, error)
}
