package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RPCLedger serves every ledger interface of this package from a JSON-RPC
// endpoint.
type RPCLedger struct {
	client     *rpc.Client
	commitment rpc.CommitmentType
	limiter    *rate.Limiter
	log        *zap.Logger
}

var (
	_ Ledger                = (*RPCLedger)(nil)
	_ ProgramAccountsLedger = (*RPCLedger)(nil)
	_ HistoryLedger         = (*RPCLedger)(nil)
	_ Sender                = (*RPCLedger)(nil)
)

type RPCOption func(*RPCLedger)

// WithCommitment sets the commitment used for reads. Defaults to confirmed.
func WithCommitment(c rpc.CommitmentType) RPCOption {
	return func(l *RPCLedger) { l.commitment = c }
}

// WithRateLimit caps outgoing requests per second. Public endpoints throttle
// bursts such as history scans.
func WithRateLimit(perSecond float64) RPCOption {
	return func(l *RPCLedger) {
		if perSecond > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

func WithRPCLogger(log *zap.Logger) RPCOption {
	return func(l *RPCLedger) { l.log = log }
}

// NewRPCLedger connects to endpoint.
func NewRPCLedger(endpoint string, opts ...RPCOption) *RPCLedger {
	return NewRPCLedgerFromClient(rpc.New(endpoint), opts...)
}

func NewRPCLedgerFromClient(client *rpc.Client, opts ...RPCOption) *RPCLedger {
	l := &RPCLedger{
		client:     client,
		commitment: rpc.CommitmentConfirmed,
		log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func (l *RPCLedger) wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}

func accountData(acc *rpc.Account) []byte {
	if acc == nil {
		return nil
	}
	var data []byte
	if acc.Data != nil {
		data = acc.Data.GetBinary()
	}
	if data == nil {
		data = []byte{}
	}
	return data
}

func (l *RPCLedger) GetAccountInfo(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := l.client.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: l.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account info for %s: %w", address, err)
	}
	if resp == nil || resp.Value == nil {
		return nil, nil
	}
	return accountData(resp.Value), nil
}

// Balance returns the lamports held by address. Unfunded accounts report zero.
func (l *RPCLedger) Balance(ctx context.Context, address solana.PublicKey) (uint64, error) {
	if err := l.wait(ctx); err != nil {
		return 0, err
	}
	resp, err := l.client.GetBalance(ctx, address, l.commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", address, err)
	}
	return resp.Value, nil
}

// MaxMultipleAccounts is the most keys getMultipleAccounts accepts per call.
const MaxMultipleAccounts = 100

// GetMultipleAccountsInfo reads addresses in order, splitting the read into
// calls of at most MaxMultipleAccounts keys.
func (l *RPCLedger) GetMultipleAccountsInfo(ctx context.Context, addresses []solana.PublicKey) ([][]byte, error) {
	if len(addresses) == 0 {
		return nil, nil
	}

	out := make([][]byte, 0, len(addresses))
	for start := 0; start < len(addresses); start += MaxMultipleAccounts {
		end := start + MaxMultipleAccounts
		if end > len(addresses) {
			end = len(addresses)
		}
		chunk, err := l.getMultipleAccounts(ctx, addresses[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	return out, nil
}

func (l *RPCLedger) getMultipleAccounts(ctx context.Context, addresses []solana.PublicKey) ([][]byte, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}

	resp, err := l.client.GetMultipleAccountsWithOpts(ctx, addresses, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: l.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get multiple accounts: %w", err)
	}
	if len(resp.Value) != len(addresses) {
		return nil, fmt.Errorf("requested %d accounts, ledger returned %d", len(addresses), len(resp.Value))
	}

	out := make([][]byte, len(resp.Value))
	for i, acc := range resp.Value {
		out[i] = accountData(acc)
	}
	return out, nil
}

func (l *RPCLedger) GetProgramAccounts(ctx context.Context, program solana.PublicKey, prefix []byte) ([]ProgramAccount, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}

	opts := &rpc.GetProgramAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: l.commitment,
	}
	if len(prefix) > 0 {
		opts.Filters = []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  prefix,
				},
			},
		}
	}

	resp, err := l.client.GetProgramAccountsWithOpts(ctx, program, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	accounts := make([]ProgramAccount, 0, len(resp))
	for _, item := range resp {
		accounts = append(accounts, ProgramAccount{
			Address: item.Pubkey,
			Data:    accountData(item.Account),
		})
	}
	return accounts, nil
}

func (l *RPCLedger) GetSignatures(ctx context.Context, address solana.PublicKey, limit int) ([]solana.Signature, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}

	opts := &rpc.GetSignaturesForAddressOpts{Commitment: l.commitment}
	if limit > 0 {
		opts.Limit = &limit
	}
	resp, err := l.client.GetSignaturesForAddressWithOpts(ctx, address, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transaction signatures: %w", err)
	}

	sigs := make([]solana.Signature, 0, len(resp))
	for _, s := range resp {
		sigs = append(sigs, s.Signature)
	}
	return sigs, nil
}

func (l *RPCLedger) GetTransaction(ctx context.Context, sig solana.Signature) (*TransactionRecord, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}

	version := uint64(0)
	resp, err := l.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     l.commitment,
		MaxSupportedTransactionVersion: &version,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", sig, err)
	}
	if resp == nil || resp.Transaction == nil {
		return nil, fmt.Errorf("transaction %s not found", sig)
	}

	tx, err := resp.Transaction.GetTransaction()
	if err != nil {
		return nil, fmt.Errorf("failed to decode transaction %s: %w", sig, err)
	}

	rec := &TransactionRecord{
		Signature:   sig,
		Transaction: tx,
	}
	if resp.BlockTime != nil {
		rec.BlockTime = resp.BlockTime.Time()
	}
	if resp.Meta != nil && resp.Meta.Err != nil {
		rec.Failed = true
	}
	return rec, nil
}

func (l *RPCLedger) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	if err := l.wait(ctx); err != nil {
		return solana.Hash{}, err
	}

	resp, err := l.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return resp.Value.Blockhash, nil
}

func (l *RPCLedger) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if err := l.wait(ctx); err != nil {
		return solana.Signature{}, err
	}

	start := time.Now()
	sig, err := l.client.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	l.log.Debug("transaction sent", zap.Stringer("signature", sig), zap.Duration("elapsed", time.Since(start)))
	return sig, nil
}

func (l *RPCLedger) SignatureStatus(ctx context.Context, sig solana.Signature) (SignatureStatus, error) {
	if err := l.wait(ctx); err != nil {
		return SignatureStatus{}, err
	}

	resp, err := l.client.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		return SignatureStatus{}, fmt.Errorf("failed to get signature status: %w", err)
	}
	if len(resp.Value) == 0 || resp.Value[0] == nil {
		return SignatureStatus{}, nil
	}

	st := resp.Value[0]
	if st.Err != nil {
		return SignatureStatus{Confirmed: true, Err: fmt.Errorf("%w: %v", ErrTransactionFailed, st.Err)}, nil
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return SignatureStatus{Confirmed: true}, nil
	default:
		return SignatureStatus{}, nil
	}
}
