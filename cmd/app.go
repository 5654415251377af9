package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"reviews-cli/reviews"
	"reviews-cli/storage"
)

const privateKeyEnv = "PRIVATE_KEY"

// app carries what every command needs once configuration is loaded.
type app struct {
	cfg    *Config
	log    *zap.Logger
	ledger *reviews.RPCLedger
}

func newApp(cfg *Config, log *zap.Logger) *app {
	return &app{
		cfg: cfg,
		log: log,
		ledger: reviews.NewRPCLedger(cfg.RPCEndpoint,
			reviews.WithRateLimit(cfg.RateLimit),
			reviews.WithRPCLogger(log.Named("rpc")),
		),
	}
}

func (a *app) reviewClient() *reviews.Client {
	return reviews.NewClient(reviews.MovieReview(a.cfg.ReviewProgram), a.ledger, reviews.WithLogger(a.log))
}

func (a *app) introClient() (*reviews.Client, error) {
	if !a.cfg.HasIntro {
		return nil, errors.New("no student intro program configured: set INTRO_PROGRAM_ID or --intro-program")
	}
	return reviews.NewClient(reviews.StudentIntro(a.cfg.IntroProgram), a.ledger, reviews.WithLogger(a.log)), nil
}

func (a *app) submitter(signer reviews.Signer) *reviews.Submitter {
	return reviews.NewSubmitter(a.ledger, signer, reviews.WithSubmitLogger(a.log))
}

// readContext bounds a ledger read by the configured timeout.
func (a *app) readContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.cfg.Timeout)
}

// submitContext bounds a submission including its confirmation wait.
func (a *app) submitContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, a.cfg.Timeout+a.cfg.ConfirmTimeout)
}

func (a *app) walletStore() (*storage.JSONDB, error) {
	db, err := storage.Connect(a.cfg.WalletStore)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to wallet storage: %w", err)
	}
	return db, nil
}

// signer resolves the signing key: an explicit keypair file, then a wallet
// profile, then PRIVATE_KEY, then the solana-keygen default keypair.
func (a *app) signer() (solana.PrivateKey, error) {
	if a.cfg.KeypairPath != "" {
		return storage.LoadKeypairFile(a.cfg.KeypairPath)
	}

	if a.cfg.Profile != "" {
		db, err := a.walletStore()
		if err != nil {
			return nil, err
		}
		defer db.Close()
		w, err := db.GetWallet(a.cfg.Profile)
		if err != nil {
			return nil, err
		}
		return w.PrivateKey, nil
	}

	key, err := storage.KeypairFromEnv(privateKeyEnv)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, storage.ErrNoKeypair) {
		return nil, err
	}

	path, err := storage.DefaultKeypairPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: pass --keypair or --profile, set %s, or run `wallet new`", storage.ErrNoKeypair, privateKeyEnv)
	}
	return storage.LoadKeypairFile(path)
}

func explorerURL(sig solana.Signature) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=devnet", sig)
}
