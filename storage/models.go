package storage

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// Wallet is a named signing key kept in the wallet store.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	CreatedAt  time.Time
}

// PublicKey returns the address of the wallet.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.PrivateKey.PublicKey()
}

// walletRecord is the on-disk form of a Wallet.
type walletRecord struct {
	Name       string    `json:"name"`
	PrivateKey string    `json:"private_key"` // base58
	CreatedAt  time.Time `json:"created_at"`
}

type walletFile struct {
	Wallets []walletRecord `json:"wallets"`
}
