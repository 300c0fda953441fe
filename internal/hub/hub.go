// Package hub is the websocket side of the server. Every game with at least
// one open connection has an actor goroutine that owns its connection set and
// serializes joins, appends and broadcasts for that game.
package hub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"gipf-arena/internal/app/games"
	"gipf-arena/internal/store"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 << 10
	opTimeout      = 5 * time.Second
)

type Config struct {
	PingInterval time.Duration
	// RatePerSec <= 0 disables the inbound limiter.
	RatePerSec       float64
	RateBurst        int
	SendQueue        int
	VerifySignatures bool
}

func (c Config) withDefaults() Config {
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.SendQueue <= 0 {
		c.SendQueue = 64
	}
	if c.RateBurst <= 0 {
		c.RateBurst = 1
	}
	return c
}

type Hub struct {
	games    *games.Service
	cfg      Config
	upgrader websocket.Upgrader

	// mu guards the registry and the connection set. Neither is touched
	// while broadcasting.
	mu     sync.Mutex
	actors map[int64]*actor
	conns  map[*Conn]struct{}
}

func New(svc *games.Service, cfg Config) *Hub {
	return &Hub{
		games:    svc,
		cfg:      cfg.withDefaults(),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		actors:   map[int64]*actor{},
		conns:    map[*Conn]struct{}{},
	}
}

// Conn is one websocket. The read loop owns actor; everyone else only
// enqueues frames.
type Conn struct {
	id      string
	ws      *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	actor   *actor

	closeOnce sync.Once
	done      chan struct{}
}

func (c *Conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// enqueue never blocks; false means the queue is full.
func (c *Conn) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Conn) sendEnvelope(env Envelope) bool {
	msg, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("conn_id", c.id).Msg("ws_marshal_failed")
		return true
	}
	return c.enqueue(msg)
}

func (c *Conn) sendError(gameID int64, text string) bool {
	return c.sendEnvelope(Envelope{GameID: gameID, Type: TypeError, Payload: text})
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws_upgrade_failed")
		return
	}
	c := &Conn{
		id:   store.NewID(),
		ws:   ws,
		send: make(chan []byte, h.cfg.SendQueue),
		done: make(chan struct{}),
	}
	if h.cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(h.cfg.RatePerSec), h.cfg.RateBurst)
	}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	metricConnectionsActive.Add(1)
	log.Info().Str("conn_id", c.id).Str("remote", r.RemoteAddr).Msg("ws_connected")

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) pongWait() time.Duration {
	return 2 * h.cfg.PingInterval
}

func (h *Hub) readLoop(c *Conn) {
	defer func() {
		if c.actor != nil {
			c.actor.submit(request{conn: c, leave: true})
			h.release(c.actor)
		}
		h.mu.Lock()
		delete(h.conns, c)
		h.mu.Unlock()
		c.close()
		metricConnectionsActive.Add(-1)
		log.Info().Str("conn_id", c.id).Msg("ws_disconnected")
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(h.pongWait()))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(h.pongWait()))
	})

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("conn_id", c.id).Msg("ws_read_failed")
			}
			return
		}
		metricMessagesIn.Add(1)
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.sendError(0, "malformed envelope")
			continue
		}
		if c.limiter != nil && !c.limiter.Allow() {
			c.sendError(env.GameID, "rate limit exceeded, slow down")
			continue
		}
		h.dispatch(c, env)
	}
}

func (h *Hub) dispatch(c *Conn, env Envelope) {
	switch env.Type {
	case TypeJoin:
		h.join(c, env)
	case TypeAction, TypeRejectAction, TypeGameOver, TypeSendFullGame:
		if c.actor == nil {
			c.sendError(env.GameID, "join a game first")
			return
		}
		if env.GameID != c.actor.id {
			c.sendError(env.GameID, fmt.Sprintf("connection is joined to game %d", c.actor.id))
			return
		}
		c.actor.submit(request{conn: c, env: env})
	default:
		c.sendError(env.GameID, fmt.Sprintf("unknown message type %q", env.Type))
	}
}

// join blocks until the actor has answered, so the read loop knows whether
// the connection holds a reference on it.
func (h *Hub) join(c *Conn, env Envelope) {
	if c.actor != nil {
		c.sendError(env.GameID, fmt.Sprintf("connection already joined game %d", c.actor.id))
		return
	}
	a := h.acquire(env.GameID)
	joined := make(chan bool, 1)
	a.submit(request{conn: c, env: env, joined: joined})
	if !<-joined {
		h.release(a)
		return
	}
	c.actor = a
}

func (h *Hub) writeLoop(c *Conn) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (h *Hub) acquire(gameID int64) *actor {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.actors[gameID]
	if a == nil {
		a = newActor(h, gameID)
		h.actors[gameID] = a
		metricGamesActive.Add(1)
		go a.run()
	}
	a.refs++
	return a
}

// release drops one reference. The last one asks the actor to stop; the
// actor stays registered until it has drained its inbox, so a join racing
// the shutdown lands on the same actor instead of starting a second one.
func (h *Hub) release(a *actor) {
	h.mu.Lock()
	a.refs--
	last := a.refs == 0
	h.mu.Unlock()
	if last {
		a.submit(request{stop: true})
	}
}

// retire unregisters a once nobody holds a reference and nothing is queued.
// Every request of a former holder was queued before its release, so an
// empty inbox under mu means the actor has seen them all.
func (h *Hub) retire(a *actor) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a.refs > 0 || len(a.inbox) > 0 {
		return false
	}
	delete(h.actors, a.id)
	metricGamesActive.Add(-1)
	return true
}

// ActiveGames is the number of running game actors.
func (h *Hub) ActiveGames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.actors)
}

// Close drops every connection. Read loops unwind and stop the actors.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.close()
	}
}
