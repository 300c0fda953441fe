package config

import "github.com/caarlos0/env/v11"

type AuditConfig struct {
	WSURL  string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	GameID int64  `env:"AUDIT_GAME_ID,required"`
	Token  string `env:"AUDIT_TOKEN" envDefault:""`
	// Follow keeps checking live actions until the game ends.
	Follow bool `env:"AUDIT_FOLLOW" envDefault:"false"`
	// Reject sends RejectAction when verification fails.
	Reject bool `env:"AUDIT_REJECT" envDefault:"false"`
}

func LoadAudit() (AuditConfig, error) {
	var cfg AuditConfig
	err := env.Parse(&cfg)
	return cfg, err
}
