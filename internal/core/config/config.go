// Package config holds the CLI's YAML configuration. The library itself is
// configured with an explicit struct; this package only serves the command
// line wrapper.
package config

import (
	redisclient "github.com/openton/tonkit/internal/infra/redis"
	"github.com/openton/tonkit/internal/infra/storage/postgres"
	"github.com/openton/tonkit/internal/infra/tonapi"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Network  string              `yaml:"network"` // mainnet, testnet
	Address  string              `yaml:"address"`
	API      tonapi.Config       `yaml:"api"`
	Database postgres.Config     `yaml:"database"`
	Redis    *redisclient.Config `yaml:"redis"`
	Metrics  MetricsConfig       `yaml:"metrics"`
	Logging  LoggingConfig       `yaml:"logging"`

	// SecretKey is the hex-encoded wallet key. Usually supplied through an
	// environment variable expansion in the YAML. Empty means watch-only.
	SecretKey string `yaml:"secret_key"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}
