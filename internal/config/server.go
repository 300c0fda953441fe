package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

var ErrMissingDSN = errors.New("POSTGRES_DSN is required when STORE_DRIVER=postgres")

type ServerConfig struct {
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	PostgresDSN string `env:"POSTGRES_DSN"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	// VerifySignatures makes the hub refuse actions whose signature does not
	// match the sender's seat token. Off by default: clients verify.
	VerifySignatures bool          `env:"VERIFY_SIGNATURES" envDefault:"false"`
	WSPingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	WSRatePerSec     float64       `env:"WS_RATE_PER_SEC" envDefault:"10"`
	WSRateBurst      int           `env:"WS_RATE_BURST" envDefault:"20"`
	WSSendQueue      int           `env:"WS_SEND_QUEUE" envDefault:"64"`

	SeedAccountName  string `env:"SEED_ACCOUNT_NAME"`
	SeedAccountToken string `env:"SEED_ACCOUNT_TOKEN"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c ServerConfig) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return ErrMissingDSN
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.WSPingInterval <= 0 {
		return fmt.Errorf("WS_PING_INTERVAL must be positive, got %s", c.WSPingInterval)
	}
	if c.WSSendQueue <= 0 {
		return fmt.Errorf("WS_SEND_QUEUE must be positive, got %d", c.WSSendQueue)
	}
	return nil
}
