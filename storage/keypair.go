package storage

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ErrNoKeypair is returned by KeypairFromEnv when the variable is unset.
var ErrNoKeypair = errors.New("no keypair configured")

// DefaultKeypairPath is where solana-keygen writes its default keypair.
func DefaultKeypairPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "solana", "id.json"), nil
}

// LoadKeypairFile reads a keypair written by solana-keygen: a JSON array of the
// 64 secret key bytes.
func LoadKeypairFile(path string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair %s: %w", path, err)
	}
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("keypair %s: %w", path, err)
	}
	return key, nil
}

// SaveKeypairFile writes key in the solana-keygen format, creating parent
// directories as needed.
func SaveKeypairFile(path string, key solana.PrivateKey) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create keypair directory: %w", err)
	}

	// Numbers, not the base64 string json gives []byte.
	values := make([]int, len(key))
	for i, b := range key {
		values[i] = int(b)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	return writeFileAtomic(path, data)
}

// LoadOrCreateKeypair loads the keypair at path, generating and saving a new
// one when the file does not exist.
func LoadOrCreateKeypair(path string) (key solana.PrivateKey, created bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		key = solana.NewWallet().PrivateKey
		if err := SaveKeypairFile(path, key); err != nil {
			return nil, false, fmt.Errorf("failed to save new keypair: %w", err)
		}
		return key, true, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to check for keypair file: %w", err)
	}

	key, err = LoadKeypairFile(path)
	return key, false, err
}

// KeypairFromEnv reads a secret key from the environment variable name. Both
// the JSON byte array form and base58 are accepted.
func KeypairFromEnv(name string) (solana.PrivateKey, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrNoKeypair, name)
	}
	key, err := ParseKeypair(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return key, nil
}

// ParseKeypair decodes a secret key given as a JSON byte array or base58.
func ParseKeypair(raw string) (solana.PrivateKey, error) {
	var key solana.PrivateKey
	if strings.HasPrefix(raw, "[") {
		var values []byte
		if err := json.Unmarshal([]byte(raw), &values); err != nil {
			return nil, fmt.Errorf("failed to parse keypair array: %w", err)
		}
		key = solana.PrivateKey(values)
	} else {
		var err error
		if key, err = solana.PrivateKeyFromBase58(raw); err != nil {
			return nil, fmt.Errorf("failed to parse base58 keypair: %w", err)
		}
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// validateKey checks the length and that the public half matches the secret.
func validateKey(key solana.PrivateKey) error {
	if len(key) != solana.PrivateKeyLength {
		return fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(key))
	}
	derived := ed25519.NewKeyFromSeed(key[:ed25519.SeedSize])
	if !bytes.Equal(derived[ed25519.SeedSize:], key[ed25519.SeedSize:]) {
		return errors.New("invalid private key: public half does not match the seed")
	}
	return nil
}
