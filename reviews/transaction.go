package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
)

var errNotConfirmed = errors.New("transaction not yet confirmed")

// Submitter compiles, signs and sends transactions, then waits for
// confirmation.
type Submitter struct {
	sender  Sender
	signer  Signer
	backoff func() backoff.BackOff
	log     *zap.Logger
}

type SubmitOption func(*Submitter)

// WithConfirmBackOff sets the polling schedule used while waiting for
// confirmation. The context deadline still bounds the total wait.
func WithConfirmBackOff(newBackOff func() backoff.BackOff) SubmitOption {
	return func(s *Submitter) { s.backoff = newBackOff }
}

func WithSubmitLogger(log *zap.Logger) SubmitOption {
	return func(s *Submitter) { s.log = log }
}

func NewSubmitter(sender Sender, signer Signer, opts ...SubmitOption) *Submitter {
	s := &Submitter{
		sender: sender,
		signer: signer,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 4 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Build compiles instructions into a transaction paid for and signed by the
// submitter's signer.
func (s *Submitter) Build(ctx context.Context, instructions ...solana.Instruction) (*solana.Transaction, error) {
	if len(instructions) == 0 {
		return nil, errors.New("no instructions to submit")
	}

	blockhash, err := s.sender.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(s.signer.PublicKey()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction message: %w", err)
	}
	sig, err := s.signer.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signatures = append(tx.Signatures, sig)
	return tx, nil
}

// Submit sends the instructions in one transaction and blocks until it is
// confirmed, fails on the ledger, or ctx is done.
func (s *Submitter) Submit(ctx context.Context, instructions ...solana.Instruction) (solana.Signature, error) {
	tx, err := s.Build(ctx, instructions...)
	if err != nil {
		return solana.Signature{}, err
	}

	sig, err := s.sender.SendTransaction(ctx, tx)
	if err != nil {
		return solana.Signature{}, err
	}
	log := s.log.With(zap.Stringer("signature", sig))
	log.Info("transaction submitted")

	if err := s.confirm(ctx, sig); err != nil {
		return sig, err
	}
	log.Info("transaction confirmed")
	return sig, nil
}

func (s *Submitter) confirm(ctx context.Context, sig solana.Signature) error {
	check := func() error {
		st, err := s.sender.SignatureStatus(ctx, sig)
		if err != nil {
			return err
		}
		if st.Err != nil {
			return backoff.Permanent(st.Err)
		}
		if !st.Confirmed {
			return errNotConfirmed
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		s.log.Debug("waiting for confirmation", zap.Stringer("signature", sig), zap.Error(err), zap.Duration("next", next))
	}

	if err := backoff.RetryNotify(check, backoff.WithContext(s.backoff(), ctx), notify); err != nil {
		return fmt.Errorf("failed to confirm transaction %s: %w", sig, err)
	}
	return nil
}
