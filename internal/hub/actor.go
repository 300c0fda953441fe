package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gipf-arena/internal/app/games"
	"gipf-arena/internal/auth"
	"gipf-arena/internal/ledger"

	"github.com/rs/zerolog/log"
)

type request struct {
	conn   *Conn
	env    Envelope
	leave  bool
	stop   bool
	joined chan<- bool
}

// actor owns the connections of one game. Only run touches members.
type actor struct {
	id      int64
	hub     *Hub
	inbox   chan request
	refs    int // guarded by hub.mu
	members map[*Conn]auth.Grant
}

func newActor(h *Hub, gameID int64) *actor {
	return &actor{
		id:      gameID,
		hub:     h,
		inbox:   make(chan request, 64),
		members: map[*Conn]auth.Grant{},
	}
}

// submit may only be called while holding a reference, or by the release
// that dropped the last one.
func (a *actor) submit(req request) {
	a.inbox <- req
}

func (a *actor) run() {
	log.Debug().Int64("game_id", a.id).Msg("game_actor_started")
	for req := range a.inbox {
		if req.stop {
			if a.hub.retire(a) {
				break
			}
			// rejoined since, or more work queued behind the stop
			continue
		}
		a.handle(req)
	}
	log.Debug().Int64("game_id", a.id).Msg("game_actor_stopped")
}

func (a *actor) handle(req request) {
	if req.leave {
		delete(a.members, req.conn)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if req.env.Type == TypeJoin {
		req.joined <- a.join(ctx, req.conn, req.env)
		return
	}
	grant, ok := a.members[req.conn]
	if !ok {
		// pruned or never joined
		req.conn.sendError(a.id, "join a game first")
		return
	}
	switch req.env.Type {
	case TypeAction:
		a.action(ctx, req.conn, grant, req.env)
	case TypeGameOver:
		a.finish(ctx, req.conn, grant, req.env.Payload, false)
	case TypeRejectAction:
		a.finish(ctx, req.conn, grant, req.env.Payload, true)
	case TypeSendFullGame:
		a.fullGame(ctx, req.conn)
	}
}

func (a *actor) join(ctx context.Context, c *Conn, env Envelope) bool {
	resp, grant, err := a.hub.games.Join(ctx, a.id, env.Token)
	if err != nil {
		a.reply(c, errorText(err))
		log.Info().Err(err).Str("conn_id", c.id).Int64("game_id", a.id).Msg("ws_join_rejected")
		return false
	}
	body, err := json.Marshal(resp)
	if err != nil {
		a.reply(c, "internal error")
		return false
	}
	a.members[c] = grant
	a.deliver(c, Envelope{GameID: a.id, Type: TypeUpgradeToken, Payload: string(body)})
	if resp.Finished {
		a.deliver(c, Envelope{GameID: a.id, Type: TypeGameOver, Payload: resp.Result})
	}
	log.Info().
		Str("conn_id", c.id).
		Int64("game_id", a.id).
		Str("role", string(grant.Role)).
		Int("actions", len(resp.Actions)).
		Int("connections", len(a.members)).
		Msg("ws_joined")
	return true
}

func (a *actor) action(ctx context.Context, c *Conn, grant auth.Grant, env Envelope) {
	if !grant.Role.CanAct() {
		a.reply(c, errorText(games.ErrForbidden))
		return
	}
	var p ActionPayload
	if err := json.Unmarshal([]byte(env.Payload), &p); err != nil {
		a.reply(c, "malformed action payload")
		return
	}
	if a.hub.cfg.VerifySignatures && !ledger.Verify(p.SequenceNumber, p.ActionPayload, grant.GameToken, p.Signature) {
		a.reply(c, fmt.Sprintf("action %d: signature does not match the %s token", p.SequenceNumber, grant.Role))
		return
	}
	if _, err := a.hub.games.Append(ctx, a.id, grant.Role, p.view(), p.Result); err != nil {
		a.reply(c, fmt.Sprintf("action %d rejected: %s", p.SequenceNumber, errorText(err)))
		return
	}
	// the seat token never leaves the sender
	env.Token = ""
	env.GameID = a.id
	a.broadcast(env)
	if p.Result != "" {
		a.broadcast(Envelope{GameID: a.id, Type: TypeGameOver, Payload: p.Result})
	}
}

func (a *actor) finish(ctx context.Context, c *Conn, grant auth.Grant, text string, reject bool) {
	var err error
	var changed bool
	var result string
	if reject {
		g, ch, e := a.hub.games.Reject(ctx, a.id, grant.Role, text)
		result, changed, err = g.Result, ch, e
	} else {
		if !grant.Role.CanAct() {
			a.reply(c, errorText(games.ErrForbidden))
			return
		}
		g, ch, e := a.hub.games.Finish(ctx, a.id, text)
		result, changed, err = g.Result, ch, e
	}
	if err != nil {
		a.reply(c, errorText(err))
		return
	}
	over := Envelope{GameID: a.id, Type: TypeGameOver, Payload: result}
	if !changed {
		// already over; tell the caller how it ended
		a.deliver(c, over)
		return
	}
	log.Info().Int64("game_id", a.id).Str("role", string(grant.Role)).Bool("reject", reject).Msg("ws_game_over")
	a.broadcast(over)
}

func (a *actor) fullGame(ctx context.Context, c *Conn) {
	views, err := a.hub.games.Actions(ctx, a.id)
	if err != nil {
		a.reply(c, errorText(err))
		return
	}
	body, err := json.Marshal(views)
	if err != nil {
		a.reply(c, "internal error")
		return
	}
	a.deliver(c, Envelope{GameID: a.id, Type: TypeFullGame, Payload: string(body)})
}

func (a *actor) reply(c *Conn, text string) {
	a.deliver(c, Envelope{GameID: a.id, Type: TypeError, Payload: text})
}

// deliver queues env for c, pruning c when its queue is full.
func (a *actor) deliver(c *Conn, env Envelope) {
	if c.sendEnvelope(env) {
		return
	}
	delete(a.members, c)
	c.close()
	metricPruned.Add(1)
	log.Warn().Str("conn_id", c.id).Int64("game_id", a.id).Msg("ws_slow_consumer_pruned")
}

func (a *actor) broadcast(env Envelope) {
	for c := range a.members {
		a.deliver(c, env)
		metricBroadcast.Add(1)
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, games.ErrGameNotFound):
		return "game not found"
	case errors.Is(err, games.ErrUnauthorized):
		return "invalid token"
	case errors.Is(err, games.ErrForbidden):
		return "viewers cannot act"
	case errors.Is(err, games.ErrInvalidRequest):
		return "invalid request"
	case errors.Is(err, ledger.ErrGameFinished):
		return "game is finished"
	case errors.Is(err, ledger.ErrSequenceConflict):
		return "sequence number already taken, fetch the game and retry"
	case errors.Is(err, ledger.ErrSequenceGap):
		return "sequence number is ahead of the ledger"
	case errors.Is(err, ledger.ErrSequence):
		return "sequence number must be positive"
	default:
		log.Error().Err(err).Msg("ws_internal_error")
		return "internal error"
	}
}
