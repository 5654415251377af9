// Package pda derives program addresses: 32-byte keys computed from seeds and a
// program id that are guaranteed not to lie on the ed25519 curve, so no private
// key can sign for them.
package pda

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"math"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	marker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds  = errors.New("too many seeds")
	ErrMaxSeedLength = errors.New("max seed length exceeded")
	ErrOnCurve       = errors.New("address lies on the ed25519 curve")
	ErrNoViableBump  = errors.New("no bump seed yields an off-curve address")
)

// DerivationError reports a failed derivation for a program.
type DerivationError struct {
	Program solana.PublicKey
	Err     error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("derive address for program %s: %v", e.Program, e.Err)
}

func (e *DerivationError) Unwrap() error { return e.Err }

// Address is a derived address together with the bump seed that pushed it off
// the curve.
type Address struct {
	Key  solana.PublicKey
	Bump uint8
}

// Deriver derives addresses scoped to a single program.
type Deriver struct {
	program solana.PublicKey
	newHash func() hash.Hash
}

// NewDeriver returns a Deriver for program.
func NewDeriver(program solana.PublicKey) *Deriver {
	return &Deriver{
		program: program,
		newHash: sha256.New,
	}
}

// Program returns the program id addresses are derived for.
func (d *Deriver) Program() solana.PublicKey {
	return d.program
}

// Create hashes the seeds with the program id and returns the candidate
// address, or ErrOnCurve if the candidate is a valid curve point.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func (d *Deriver) Create(seeds ...[]byte) (solana.PublicKey, error) {
	if err := checkSeeds(seeds); err != nil {
		return solana.PublicKey{}, &DerivationError{Program: d.program, Err: err}
	}

	candidate := d.hash(seeds)
	if IsOnCurve(candidate[:]) {
		return solana.PublicKey{}, &DerivationError{Program: d.program, Err: ErrOnCurve}
	}
	return candidate, nil
}

// Find searches bump seeds from 255 downward and returns the first off-curve
// address. The search stops before bump 0, matching the ledger's own
// find_program_address.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func (d *Deriver) Find(seeds ...[]byte) (Address, error) {
	// One slot is reserved for the bump.
	if len(seeds) >= MaxSeeds {
		return Address{}, &DerivationError{Program: d.program, Err: ErrTooManySeeds}
	}
	if err := checkSeeds(seeds); err != nil {
		return Address{}, &DerivationError{Program: d.program, Err: err}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{math.MaxUint8}
	withBump[len(seeds)] = bump

	for i := 0; i < math.MaxUint8; i++ {
		candidate := d.hash(withBump)
		if !IsOnCurve(candidate[:]) {
			return Address{Key: candidate, Bump: bump[0]}, nil
		}
		bump[0]--
	}

	return Address{}, &DerivationError{Program: d.program, Err: ErrNoViableBump}
}

// MustFind is Find for seeds that are known to be valid, such as fixed
// literals. It panics on failure.
func (d *Deriver) MustFind(seeds ...[]byte) Address {
	addr, err := d.Find(seeds...)
	if err != nil {
		panic(err)
	}
	return addr
}

func (d *Deriver) hash(seeds [][]byte) solana.PublicKey {
	h := d.newHash()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(d.program[:])
	h.Write([]byte(marker))

	var out solana.PublicKey
	copy(out[:], h.Sum(nil))
	return out
}

func checkSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return ErrTooManySeeds
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return fmt.Errorf("%w: seed %d is %d bytes", ErrMaxSeedLength, i, len(s))
		}
	}
	return nil
}

// IsOnCurve reports whether key decodes to a point on the ed25519 curve, that
// is, whether it could be the public half of a signing key.
func IsOnCurve(key []byte) bool {
	if len(key) != solana.PublicKeyLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(key)
	return err == nil
}
