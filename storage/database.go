// Package storage keeps signing keys on disk: named wallet profiles in a JSON
// store and single keypairs in the solana-keygen file format.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
)

const (
	walletFileName = "wallets.json"
	configDirName  = "reviews-cli"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
)

// JSONDB is a wallet store backed by a single JSON file.
type JSONDB struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Connect opens the store at path, creating its directory if needed. An empty
// path selects DefaultPath.
func Connect(path string) (*JSONDB, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("could not create wallet directory: %w", err)
	}
	return &JSONDB{path: path, now: time.Now}, nil
}

// DefaultPath returns the store location under the user's config directory,
// e.g. /home/user/.config/reviews-cli/wallets.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, walletFileName), nil
}

func (db *JSONDB) Path() string {
	return db.path
}

// GetWallet returns the wallet stored under name.
func (db *JSONDB) GetWallet(name string) (*Wallet, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := db.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range f.Wallets {
		if rec.Name != name {
			continue
		}
		key, err := solana.PrivateKeyFromBase58(rec.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("could not decode private key of wallet %q: %w", name, err)
		}
		if err := validateKey(key); err != nil {
			return nil, fmt.Errorf("wallet %q: %w", name, err)
		}
		return &Wallet{Name: rec.Name, PrivateKey: key, CreatedAt: rec.CreatedAt}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
}

// GetAllWalletNames returns the stored wallet names in sorted order.
func (db *JSONDB) GetAllWalletNames() ([]string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := db.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Wallets))
	for _, rec := range f.Wallets {
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names, nil
}

// SaveWallet stores key under name. Existing names are never overwritten.
func (db *JSONDB) SaveWallet(name string, key solana.PrivateKey) (*Wallet, error) {
	if name == "" {
		return nil, errors.New("wallet name is empty")
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := db.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range f.Wallets {
		if rec.Name == name {
			return nil, fmt.Errorf("%w: %q", ErrWalletExists, name)
		}
	}

	w := &Wallet{Name: name, PrivateKey: key, CreatedAt: db.now().UTC()}
	f.Wallets = append(f.Wallets, walletRecord{
		Name:       w.Name,
		PrivateKey: key.String(),
		CreatedAt:  w.CreatedAt,
	})
	if err := db.store(f); err != nil {
		return nil, err
	}
	return w, nil
}

// DeleteWallet removes the wallet stored under name.
func (db *JSONDB) DeleteWallet(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := db.load()
	if err != nil {
		return err
	}
	for i, rec := range f.Wallets {
		if rec.Name == name {
			f.Wallets = append(f.Wallets[:i], f.Wallets[i+1:]...)
			return db.store(f)
		}
	}
	return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
}

// Close exists for symmetry with Connect. The file is not held open.
func (db *JSONDB) Close() error {
	return nil
}

func (db *JSONDB) load() (*walletFile, error) {
	data, err := os.ReadFile(db.path)
	if errors.Is(err, os.ErrNotExist) {
		return &walletFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read wallet file: %w", err)
	}
	if len(data) == 0 {
		return &walletFile{}, nil
	}

	var f walletFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("could not parse wallet file: %w", err)
	}
	return &f, nil
}

func (db *JSONDB) store(f *walletFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal wallet data: %w", err)
	}
	return writeFileAtomic(db.path, data)
}

// writeFileAtomic replaces path with data so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("could not write temp file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("could not set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not replace %s: %w", path, err)
	}
	return nil
}
