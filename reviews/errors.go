package reviews

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrUnexpectedAccount = errors.New("unexpected account discriminator")
	ErrUninitialized     = errors.New("account is not initialized")
	ErrUnsupportedLedger = errors.New("ledger does not support this query")
	ErrTransactionFailed = errors.New("transaction failed")
)

// AccountNotFoundError is returned when the ledger reports no account at an
// address the programs should have written.
type AccountNotFoundError struct {
	Address solana.PublicKey
	// Kind names what the account was expected to hold, such as "comment 3".
	Kind string
}

func (e *AccountNotFoundError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("account %s not found", e.Address)
	}
	return fmt.Sprintf("%s account %s not found", e.Kind, e.Address)
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}
