package cmd

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	devnetRpcEndpoint = "https://api.devnet.solana.com"
	heliusDevnetURL   = "https://devnet.helius-rpc.com/?api-key=%s"
)

// Config keys. Each is settable by flag, by the upper-case environment
// variable of the same name, or from a config file.
const (
	keyRPC          = "rpc_url"
	keyHeliusKey    = "helius_api_key"
	keyReviewID     = "review_program_id"
	keyIntroID      = "intro_program_id"
	keyKeypair      = "keypair"
	keyProfile      = "profile"
	keyWalletStore  = "wallet_store"
	keyLogLevel     = "log_level"
	keyLogFormat    = "log_format"
	keyLogFile      = "log_file"
	keyTimeout      = "timeout"
	keyRateLimit    = "rate_limit"
	keyConfirmLimit = "confirm_timeout"
)

// Config is the resolved CLI configuration.
type Config struct {
	RPCEndpoint    string
	ReviewProgram  solana.PublicKey
	IntroProgram   solana.PublicKey
	HasIntro       bool
	KeypairPath    string
	Profile        string
	WalletStore    string
	Log            LogOption
	Timeout        time.Duration
	ConfirmTimeout time.Duration
	RateLimit      float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyReviewID, "3BVP5o96mnSkyAedCue9bbcSJmDbCeEw4TBhWg11orLJ")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "console")
	v.SetDefault(keyTimeout, 30*time.Second)
	v.SetDefault(keyConfirmLimit, 90*time.Second)
	v.SetDefault(keyRateLimit, 0)
}

// bindFlags registers the persistent flags on root and binds them into v.
func bindFlags(root *cobra.Command, v *viper.Viper) {
	f := root.PersistentFlags()
	f.String("config", "", "config file (yaml, json or toml)")
	f.String("rpc", "", "RPC endpoint (default devnet, or Helius when HELIUS_API_KEY is set)")
	f.String("program", "", "movie review program id")
	f.String("intro-program", "", "student intro program id")
	f.String("keypair", "", "path to a solana-keygen keypair file")
	f.String("profile", "", "wallet profile name in the wallet store")
	f.String("wallet-store", "", "path to the wallet store file")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-format", "", "log format: console or json")
	f.String("log-file", "", "also write logs to this file, rotated")
	f.Duration("timeout", 0, "timeout for ledger reads")
	f.Float64("rate-limit", 0, "maximum RPC requests per second, 0 for no limit")

	for key, flag := range map[string]string{
		keyRPC:         "rpc",
		keyReviewID:    "program",
		keyIntroID:     "intro-program",
		keyKeypair:     "keypair",
		keyProfile:     "profile",
		keyWalletStore: "wallet-store",
		keyLogLevel:    "log-level",
		keyLogFormat:   "log-format",
		keyLogFile:     "log-file",
		keyTimeout:     "timeout",
		keyRateLimit:   "rate-limit",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
}

// loadConfig reads .env, the optional config file and the environment.
func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		RPCEndpoint: GetRpcEndpoint(v),
		KeypairPath: v.GetString(keyKeypair),
		Profile:     v.GetString(keyProfile),
		WalletStore: v.GetString(keyWalletStore),
		Log: LogOption{
			Level:  v.GetString(keyLogLevel),
			Format: v.GetString(keyLogFormat),
			File:   v.GetString(keyLogFile),
		},
		Timeout:        v.GetDuration(keyTimeout),
		ConfirmTimeout: v.GetDuration(keyConfirmLimit),
		RateLimit:      v.GetFloat64(keyRateLimit),
	}

	var err error
	if cfg.ReviewProgram, err = solana.PublicKeyFromBase58(v.GetString(keyReviewID)); err != nil {
		return nil, fmt.Errorf("invalid review program id: %w", err)
	}
	if id := v.GetString(keyIntroID); id != "" {
		if cfg.IntroProgram, err = solana.PublicKeyFromBase58(id); err != nil {
			return nil, fmt.Errorf("invalid intro program id: %w", err)
		}
		cfg.HasIntro = true
	}
	return cfg, nil
}

// GetRpcEndpoint returns the configured RPC endpoint. An explicit endpoint
// wins, then a Helius key, then the public devnet endpoint.
func GetRpcEndpoint(v *viper.Viper) string {
	if endpoint := v.GetString(keyRPC); endpoint != "" {
		return endpoint
	}
	if heliusApiKey := v.GetString(keyHeliusKey); heliusApiKey != "" {
		return fmt.Sprintf(heliusDevnetURL, heliusApiKey)
	}
	return devnetRpcEndpoint
}

func zapConfig(cfg *Config) []zap.Field {
	return []zap.Field{
		zap.String("rpc", redactEndpoint(cfg.RPCEndpoint)),
		zap.Stringer("review_program", cfg.ReviewProgram),
		zap.Bool("intro_configured", cfg.HasIntro),
		zap.Duration("timeout", cfg.Timeout),
		zap.Float64("rate_limit", cfg.RateLimit),
	}
}

// redactEndpoint hides query parameters, which carry provider API keys.
func redactEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.RawQuery == "" {
		return endpoint
	}
	u.RawQuery = "redacted"
	return u.String()
}
