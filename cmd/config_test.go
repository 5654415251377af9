package cmd

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRpcEndpoint(t *testing.T) {
	v := viper.New()
	assert.Equal(t, devnetRpcEndpoint, GetRpcEndpoint(v))

	v.Set(keyHeliusKey, "abc")
	assert.Equal(t, "https://devnet.helius-rpc.com/?api-key=abc", GetRpcEndpoint(v))

	v.Set(keyRPC, "http://localhost:8899")
	assert.Equal(t, "http://localhost:8899", GetRpcEndpoint(v))
}

func TestLoadConfig_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, "3BVP5o96mnSkyAedCue9bbcSJmDbCeEw4TBhWg11orLJ", cfg.ReviewProgram.String())
	assert.False(t, cfg.HasIntro)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RPC_URL", "http://localhost:8899")
	t.Setenv("INTRO_PROGRAM_ID", "HdE95RSVsdb315jfJtaykXhXY478h53X6okDupVfY9yf")
	t.Setenv("TIMEOUT", "5s")

	v := viper.New()
	setDefaults(v)

	cfg, err := loadConfig(v, "")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8899", cfg.RPCEndpoint)
	assert.True(t, cfg.HasIntro)
	assert.Equal(t, "HdE95RSVsdb315jfJtaykXhXY478h53X6okDupVfY9yf", cfg.IntroProgram.String())
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestLoadConfig_InvalidProgram(t *testing.T) {
	t.Setenv("REVIEW_PROGRAM_ID", "not-base58!")

	v := viper.New()
	setDefaults(v)

	_, err := loadConfig(v, "")
	assert.ErrorContains(t, err, "invalid review program id")
}

func TestRedactEndpoint(t *testing.T) {
	assert.Equal(t, "https://devnet.helius-rpc.com/?redacted", redactEndpoint("https://devnet.helius-rpc.com/?api-key=secret"))
	assert.Equal(t, devnetRpcEndpoint, redactEndpoint(devnetRpcEndpoint))
}

func TestParseRating(t *testing.T) {
	r, err := parseRating("5")
	require.NoError(t, err)
	assert.Equal(t, uint8(5), r)

	for _, bad := range []string{"0", "6", "x", "-1", "300"} {
		_, err := parseRating(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogOption{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = NewLogger(LogOption{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(LogOption{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", stars(3))
	assert.Equal(t, "★★★★★", stars(5))
}
