package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gipf-arena/internal/app/games"
	"gipf-arena/internal/config"
	"gipf-arena/internal/game"
	"gipf-arena/internal/hub"
	"gipf-arena/internal/verify"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var errJoinRefused = errors.New("join_refused")

type Report struct {
	Role     string
	Checked  int
	Finished bool
	Result   string
	Rejected bool
}

type auditor struct {
	cfg    config.AuditConfig
	conn   *websocket.Conn
	v      *verify.Verifier
	report Report
}

func audit(ctx context.Context, cfg config.AuditConfig) (Report, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.WSURL, nil)
	if err != nil {
		return Report{}, fmt.Errorf("dial %s: %w", cfg.WSURL, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	a := &auditor{cfg: cfg, conn: conn}
	if err := a.send(hub.TypeJoin, ""); err != nil {
		return a.report, err
	}
	err = a.loop()
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return a.report, err
}

func (a *auditor) send(typ, payload string) error {
	return a.conn.WriteJSON(hub.Envelope{GameID: a.cfg.GameID, Token: a.cfg.Token, Type: typ, Payload: payload})
}

func (a *auditor) loop() error {
	for {
		var env hub.Envelope
		if err := a.conn.ReadJSON(&env); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		switch env.Type {
		case hub.TypeUpgradeToken:
			if err := a.joined(env.Payload); err != nil {
				return a.fail(err)
			}
			if !a.cfg.Follow {
				return nil
			}
		case hub.TypeAction:
			if a.v == nil {
				continue
			}
			var p hub.ActionPayload
			if err := json.Unmarshal([]byte(env.Payload), &p); err != nil {
				return fmt.Errorf("decode action: %w", err)
			}
			if err := a.observe(verify.Entry{Seq: p.SequenceNumber, Payload: p.ActionPayload, Signature: p.Signature}); err != nil {
				return a.fail(err)
			}
		case hub.TypeGameOver:
			a.report.Finished = true
			a.report.Result = env.Payload
			return nil
		case hub.TypeError:
			if a.v == nil {
				return fmt.Errorf("%w: %s", errJoinRefused, env.Payload)
			}
			log.Warn().Str("message", env.Payload).Msg("audit_server_error")
		}
	}
}

func (a *auditor) joined(payload string) error {
	var resp games.JoinGameResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return fmt.Errorf("decode join response: %w", err)
	}
	a.report.Role = resp.Role
	a.report.Finished = resp.Finished
	a.report.Result = resp.Result

	ruleset, err := game.ParseRuleset(resp.GameType)
	if err != nil {
		return err
	}
	v, err := verify.New(ruleset, colorOf(resp.Role), resp.GameToken)
	if err != nil {
		return err
	}
	a.v = v
	log.Info().Int64("game_id", a.cfg.GameID).Str("role", resp.Role).Int("actions", len(resp.Actions)).Msg("audit_joined")
	for _, av := range resp.Actions {
		if err := a.observe(verify.Entry{Seq: av.SequenceNumber, Payload: av.Payload, Signature: av.Signature}); err != nil {
			return err
		}
	}
	return nil
}

func (a *auditor) observe(e verify.Entry) error {
	if err := a.v.Observe(e); err != nil {
		return err
	}
	a.report.Checked++
	return nil
}

// fail answers a verification failure with RejectAction when configured to
// and allowed to.
func (a *auditor) fail(err error) error {
	canReject := a.v != nil && a.v.Color != game.NoColor
	if a.cfg.Reject && canReject && !a.report.Finished {
		if sendErr := a.send(hub.TypeRejectAction, err.Error()); sendErr != nil {
			log.Error().Err(sendErr).Msg("audit_reject_send_failed")
		} else {
			a.report.Rejected = true
		}
	}
	return err
}

func colorOf(role string) game.Color {
	switch role {
	case "white":
		return game.White
	case "black":
		return game.Black
	default:
		return game.NoColor
	}
}
