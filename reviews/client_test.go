package reviews

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviews-cli/codec"
	"reviews-cli/pda"
)

func setupComments(t *testing.T, texts ...string) (*Client, *fakeLedger, solana.PublicKey) {
	program := MovieReview(DefaultReviewProgramID)
	ledger := newFakeLedger()
	record := solana.NewWallet().PublicKey()

	counter, err := program.CounterAddress(record)
	require.NoError(t, err)
	ledger.accounts[counter.Key] = counterData(t, uint8(len(texts)))

	for i, text := range texts {
		addr, err := program.CommentAddress(record, uint8(i))
		require.NoError(t, err)
		ledger.accounts[addr.Key] = commentData(t, record, text)
	}

	return NewClient(program, ledger), ledger, record
}

func TestFetchComments(t *testing.T) {
	client, ledger, record := setupComments(t, "first", "second")

	comments, err := client.FetchComments(context.Background(), record)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text)
	assert.Equal(t, "second", comments[1].Text)
	assert.Equal(t, uint8(1), comments[1].Index)
	assert.Equal(t, record, comments[0].Review)

	// The counter is read before the single batched comment fetch, which asks
	// for exactly the seeds [record, 0x00] and [record, 0x01].
	d := pda.NewDeriver(DefaultReviewProgramID)
	require.Len(t, ledger.reads, 1)
	assert.Equal(t, d.MustFind(record[:], []byte("comment")).Key, ledger.reads[0])
	require.Len(t, ledger.batches, 1)
	assert.Equal(t, []solana.PublicKey{
		d.MustFind(record[:], []byte{0x00}).Key,
		d.MustFind(record[:], []byte{0x01}).Key,
	}, ledger.batches[0])
}

func TestFetchComments_Empty(t *testing.T) {
	client, ledger, record := setupComments(t)

	comments, err := client.FetchComments(context.Background(), record)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Empty(t, ledger.batches)
}

func TestFetchComments_MissingComment(t *testing.T) {
	client, ledger, record := setupComments(t, "first", "second")

	missing, err := client.Program().CommentAddress(record, 1)
	require.NoError(t, err)
	delete(ledger.accounts, missing.Key)

	comments, err := client.FetchComments(context.Background(), record)
	assert.Nil(t, comments)

	var notFound *AccountNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, missing.Key, notFound.Address)
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestFetchCommentCounter_Missing(t *testing.T) {
	client := NewClient(MovieReview(DefaultReviewProgramID), newFakeLedger())

	_, err := client.FetchCommentCounter(context.Background(), solana.NewWallet().PublicKey())
	var notFound *AccountNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "comment counter", notFound.Kind)
}

func TestFetchCommentCounter_WrongAccount(t *testing.T) {
	client, ledger, record := setupComments(t)

	counter, err := client.Program().CounterAddress(record)
	require.NoError(t, err)
	ledger.accounts[counter.Key] = commentData(t, record, "not a counter")

	_, err = client.FetchCommentCounter(context.Background(), record)
	assert.Error(t, err)

	ledger.accounts[counter.Key] = []byte{1, 2}
	_, err = client.FetchCommentCounter(context.Background(), record)
	var decErr *codec.DecodingError
	assert.True(t, errors.As(err, &decErr))
}

func TestCommentAddresses(t *testing.T) {
	client, _, record := setupComments(t)
	d := pda.NewDeriver(DefaultReviewProgramID)

	addrs, err := client.CommentAddresses(record, 3)
	require.NoError(t, err)
	require.Len(t, addrs, 3)
	for i, a := range addrs {
		assert.Equal(t, d.MustFind(record[:], []byte{byte(i)}).Key, a)
	}

	addrs, err = client.CommentAddresses(record, 0)
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestCreateCommentInstruction(t *testing.T) {
	client, _, record := setupComments(t, "a", "b", "c")
	payer := solana.NewWallet().PublicKey()

	ix, err := client.CreateCommentInstruction(context.Background(), payer, record, "d")
	require.NoError(t, err)

	next, err := client.Program().CommentAddress(record, 3)
	require.NoError(t, err)
	assert.Equal(t, next.Key, ix.Accounts()[3].PublicKey)

	data, err := ix.Data()
	require.NoError(t, err)
	decoded, err := codec.Decode(CommentInstruction, data)
	require.NoError(t, err)
	assert.Equal(t, "d", decoded["comment"])
	assert.Equal(t, record, decoded["review"])

	_, err = client.CreateCommentInstruction(context.Background(), payer, solana.NewWallet().PublicKey(), "x")
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestFetchReviews(t *testing.T) {
	program := MovieReview(DefaultReviewProgramID)
	ledger := newFakeLedger()
	reviewer := solana.NewWallet().PublicKey()
	good := solana.NewWallet().PublicKey()

	ledger.programAccounts = []ProgramAccount{
		{Address: good, Data: reviewData(t, reviewer, "Alien", 5, "in space")},
		{Address: solana.NewWallet().PublicKey(), Data: []byte{6, 0, 0, 0, 'r', 'e', 'v', 'i', 'e', 'w'}},
	}

	records, err := NewClient(program, ledger).FetchReviews(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, good, records[0].Address)
	assert.Equal(t, reviewer, records[0].Owner)
	assert.Equal(t, "Alien", records[0].Title)
	assert.Equal(t, "in space", records[0].Body)
	require.NotNil(t, records[0].Rating)
	assert.Equal(t, uint8(5), *records[0].Rating)

	require.Len(t, ledger.prefixes, 1)
	assert.Equal(t, []byte{6, 0, 0, 0, 'r', 'e', 'v', 'i', 'e', 'w'}, ledger.prefixes[0])
}

func TestFetchRecord(t *testing.T) {
	program := MovieReview(DefaultReviewProgramID)
	ledger := newFakeLedger()
	addr := solana.NewWallet().PublicKey()
	reviewer := solana.NewWallet().PublicKey()
	ledger.accounts[addr] = reviewData(t, reviewer, "Heat", 4, "")

	client := NewClient(program, ledger)
	rec, err := client.FetchRecord(context.Background(), addr)
	require.NoError(t, err)
	assert.Equal(t, "Heat", rec.Title)

	_, err = client.FetchRecord(context.Background(), solana.NewWallet().PublicKey())
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}

func TestParseRecord_StudentIntro(t *testing.T) {
	program := StudentIntro(DefaultReviewProgramID)
	student := solana.NewWallet().PublicKey()
	addr := solana.NewWallet().PublicKey()

	data, err := codec.Marshal(IntroAccountLayout, codec.Record{
		"discriminator":  IntroDiscriminator,
		"is_initialized": true,
		"student":        student,
		"name":           "Ada",
		"message":        "hi",
	})
	require.NoError(t, err)

	rec, err := program.ParseRecord(addr, data)
	require.NoError(t, err)
	assert.Equal(t, student, rec.Owner)
	assert.Equal(t, "Ada", rec.Title)
	assert.Equal(t, "hi", rec.Body)
	assert.Nil(t, rec.Rating)
}

func TestParse_Uninitialized(t *testing.T) {
	data, err := codec.Marshal(AccountMetadataLayout, codec.Record{
		"discriminator":  CounterDiscriminator,
		"is_initialized": false,
		"counter":        uint8(0),
	})
	require.NoError(t, err)

	_, err = ParseCommentCounter(solana.PublicKey{}, data)
	assert.True(t, errors.Is(err, ErrUninitialized))
}

func TestUnsupportedLedger(t *testing.T) {
	client := NewClient(MovieReview(DefaultReviewProgramID), readOnlyLedger{newFakeLedger()})

	_, err := client.FetchReviews(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedLedger))

	_, err = client.History(context.Background(), solana.NewWallet().PublicKey(), 10)
	assert.True(t, errors.Is(err, ErrUnsupportedLedger))
}
