package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadServerDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/gipf?sslmode=disable")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != StoreDriverPostgres {
		t.Fatalf("StoreDriver = %q, want postgres", cfg.StoreDriver)
	}
	if cfg.VerifySignatures {
		t.Fatal("VerifySignatures should default to false")
	}
	if cfg.WSPingInterval != 30*time.Second || cfg.WSRatePerSec != 10 || cfg.WSRateBurst != 20 || cfg.WSSendQueue != 64 {
		t.Fatalf("unexpected ws defaults: %+v", cfg)
	}
}

func TestLoadServerRequiresPostgresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if !errors.Is(err, ErrMissingDSN) {
		t.Fatalf("LoadServer() error = %v, want ErrMissingDSN", err)
	}
}

func TestLoadServerMemoryDriverNeedsNoDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.StoreDriver != StoreDriverMemory {
		t.Fatalf("StoreDriver = %q", cfg.StoreDriver)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/gipf?sslmode=disable")
	t.Setenv("VERIFY_SIGNATURES", "true")
	t.Setenv("WS_PING_INTERVAL", "5s")
	t.Setenv("WS_RATE_PER_SEC", "2.5")
	t.Setenv("SEED_ACCOUNT_NAME", "alice")
	t.Setenv("SEED_ACCOUNT_TOKEN", "acct-alice")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if !cfg.VerifySignatures || cfg.WSPingInterval != 5*time.Second || cfg.WSRatePerSec != 2.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SeedAccountName != "alice" || cfg.SeedAccountToken != "acct-alice" {
		t.Fatalf("unexpected seed account: %+v", cfg)
	}
}

func TestLoadServerRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown driver", key: "STORE_DRIVER", value: "sqlite"},
		{name: "zero ping", key: "WS_PING_INTERVAL", value: "0s"},
		{name: "zero queue", key: "WS_SEND_QUEUE", value: "0"},
		{name: "bad duration", key: "WS_PING_INTERVAL", value: "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/gipf?sslmode=disable")
			t.Setenv(tt.key, tt.value)
			if _, err := LoadServer(); err == nil {
				t.Fatalf("LoadServer() with %s=%s expected error", tt.key, tt.value)
			}
		})
	}
}
