// Command ledger-audit joins a game over the websocket, replays its ledger
// through the rules engine and checks every signature the token can check.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gipf-arena/internal/config"
	"gipf-arena/internal/logging"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := initLogging(); err != nil {
		log.Fatal().Err(err).Msg("load log config failed")
	}
	cfg, err := config.LoadAudit()
	if err != nil {
		log.Fatal().Err(err).Msg("load audit config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := audit(ctx, cfg)
	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Int64("game_id", cfg.GameID).
		Str("role", report.Role).
		Int("checked", report.Checked).
		Bool("finished", report.Finished).
		Str("result", report.Result).
		Bool("rejected", report.Rejected).
		Msg("audit_done")
	if err != nil {
		os.Exit(1)
	}
}

// initLogging falls back to info level on stdout when the log config is
// bad, so the failure itself still gets logged.
func initLogging() error {
	cfg, err := config.LoadLog()
	if err != nil {
		logging.Init(config.LogConfig{Level: "info"})
		return err
	}
	logging.Init(cfg)
	return nil
}
