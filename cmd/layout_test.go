package cmd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviews-cli/reviews"
)

func writeLayout(t *testing.T) string {
	raw, err := json.Marshal(reviews.CommentInstruction.Document())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "comment.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestHandleDecodeLayout_Data(t *testing.T) {
	data, err := reviews.EncodeCreateComment(reviews.CreateComment{
		Review: solana.NewWallet().PublicKey(),
		Text:   "great movie",
	})
	require.NoError(t, err)

	err = handleDecodeLayout(context.Background(), writeLayout(t), base64.StdEncoding.EncodeToString(data), "")
	assert.NoError(t, err)
}

func TestHandleDecodeLayout_Errors(t *testing.T) {
	path := writeLayout(t)

	assert.Error(t, handleDecodeLayout(context.Background(), path, "", ""))
	assert.Error(t, handleDecodeLayout(context.Background(), path, "AA==", "11111111111111111111111111111111"))
	assert.Error(t, handleDecodeLayout(context.Background(), path, "not base64!", ""))
	// Truncated payload.
	assert.Error(t, handleDecodeLayout(context.Background(), path, "Ag==", ""))
	assert.Error(t, handleDecodeLayout(context.Background(), filepath.Join(t.TempDir(), "missing.json"), "AA==", ""))
}
