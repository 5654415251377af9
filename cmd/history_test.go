package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviews-cli/reviews"
	"reviews-cli/storage"
)

func TestHistoryTarget(t *testing.T) {
	program := reviews.DefaultReviewProgramID
	key := solana.NewWallet().PrivateKey
	other := solana.NewWallet().PublicKey()

	withKey := func() (solana.PrivateKey, error) { return key, nil }
	noKey := func() (solana.PrivateKey, error) {
		return nil, fmt.Errorf("%w: PRIVATE_KEY is not set", storage.ErrNoKeypair)
	}
	badKey := func() (solana.PrivateKey, error) { return nil, errors.New("invalid keypair file") }

	got, err := historyTarget(other.String(), program, badKey)
	require.NoError(t, err)
	assert.Equal(t, other, got)

	got, err = historyTarget("", program, withKey)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), got)

	got, err = historyTarget("", program, noKey)
	require.NoError(t, err)
	assert.Equal(t, program, got)

	_, err = historyTarget("", program, badKey)
	assert.EqualError(t, err, "invalid keypair file")

	_, err = historyTarget("not-an-address", program, withKey)
	assert.Error(t, err)
}
