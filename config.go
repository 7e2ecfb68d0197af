package tonkit

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openton/tonkit/internal/infra/redis"
	"github.com/openton/tonkit/internal/infra/tonapi"
)

// Config configures a Kit instance.
type Config struct {
	// Network selects mainnet or testnet. BaseURL overrides the derived
	// provider endpoint when set.
	Network tonapi.Network
	BaseURL string

	// APIKey authenticates against the provider. Optional but strongly
	// rate-limited without one.
	APIKey string

	// Address is the tracked account, in any supported format. Optional
	// when SecretKey is set: the wallet address is then derived from the
	// key.
	Address string

	// SecretKey is the wallet's ed25519 key, either a 32-byte seed or a
	// 64-byte private key. Nil makes the kit watch-only.
	SecretKey []byte

	// PostgresURL selects the durable store. Empty falls back to the
	// in-memory store, which loses history on restart.
	PostgresURL string

	// Redis optionally enables the jetton metadata cache.
	Redis *redis.Config

	// APITimeout bounds individual provider requests.
	APITimeout time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Address == "" && len(c.SecretKey) == 0 {
		return errors.New("either address or secret key is required")
	}
	if len(c.SecretKey) != 0 &&
		len(c.SecretKey) != ed25519.SeedSize &&
		len(c.SecretKey) != ed25519.PrivateKeySize {
		return fmt.Errorf("secret key must be %d or %d bytes, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(c.SecretKey))
	}
	return nil
}

func (c *Config) privateKey() ed25519.PrivateKey {
	switch len(c.SecretKey) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(c.SecretKey)
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(c.SecretKey)
	default:
		return nil
	}
}

func (c *Config) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return c.Network.BaseURL()
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
