package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Memory keeps everything in process. It gives the same sequencing
// guarantees as Store by doing every append under one lock.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]Account
	games    map[int64]*Game
	actions  map[int64][]Action
	nextGame int64
}

func NewMemory() *Memory {
	return &Memory{
		accounts: map[string]Account{},
		games:    map[int64]*Game{},
		actions:  map[int64][]Action{},
	}
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close()                     {}

func (m *Memory) CreateAccount(_ context.Context, name, token string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hash := HashToken(token)
	for _, a := range m.accounts {
		if a.Name == name || a.TokenHash == hash {
			return Account{}, fmt.Errorf("account %q: %w", name, ErrDuplicate)
		}
	}
	a := Account{ID: NewID(), Name: name, TokenHash: hash, CreatedAt: time.Now().UTC()}
	m.accounts[a.ID] = a
	return a, nil
}

func (m *Memory) GetAccountByID(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *Memory) GetAccountByName(_ context.Context, name string) (*Account, error) {
	return m.findAccount(func(a Account) bool { return a.Name == name })
}

func (m *Memory) GetAccountByToken(_ context.Context, token string) (*Account, error) {
	hash := HashToken(token)
	return m.findAccount(func(a Account) bool { return a.TokenHash == hash })
}

func (m *Memory) findAccount(match func(Account) bool) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if match(a) {
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) CreateGame(_ context.Context, p NewGame) (Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGame++
	g := &Game{
		ID:             m.nextGame,
		Type:           p.Type,
		WhiteToken:     p.WhiteToken,
		BlackToken:     p.BlackToken,
		ViewerToken:    p.ViewerToken,
		WhiteAccountID: p.WhiteAccountID,
		BlackAccountID: p.BlackAccountID,
		CreatedAt:      time.Now().UTC(),
	}
	for _, seat := range []struct {
		id   string
		name *string
	}{{p.WhiteAccountID, &g.WhiteName}, {p.BlackAccountID, &g.BlackName}} {
		if seat.id == "" {
			continue
		}
		a, ok := m.accounts[seat.id]
		if !ok {
			m.nextGame--
			return Game{}, fmt.Errorf("account %s: %w", seat.id, ErrNotFound)
		}
		*seat.name = a.Name
	}
	m.games[g.ID] = g
	return *g, nil
}

func (m *Memory) GetGame(_ context.Context, id int64) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *g
	return &out, nil
}

func (m *Memory) ListGames(_ context.Context, limit, offset int) ([]Game, error) {
	if limit <= 0 {
		limit = 50
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	slices.Reverse(ids)
	out := []Game{}
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *m.games[ids[i]])
	}
	return out, nil
}

func (m *Memory) FinishGame(_ context.Context, id int64, result string) (Game, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return Game{}, false, ErrNotFound
	}
	if g.Finished {
		return *g, false, nil
	}
	m.finishLocked(g, result)
	return *g, true, nil
}

func (m *Memory) finishLocked(g *Game, result string) {
	now := time.Now().UTC()
	g.Finished = true
	g.Result = result
	g.FinishedAt = &now
}

func (m *Memory) AppendAction(_ context.Context, p AppendParams) (Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[p.GameID]
	if !ok {
		return Action{}, ErrNotFound
	}
	if g.Finished {
		return Action{}, ErrGameFinished
	}
	if err := checkSeq(p.Seq, int64(len(m.actions[p.GameID]))); err != nil {
		return Action{}, err
	}
	a := Action{
		GameID:    p.GameID,
		Seq:       p.Seq,
		Payload:   p.Payload,
		Signature: p.Signature,
		CreatedAt: time.Now().UTC(),
	}
	m.actions[p.GameID] = append(m.actions[p.GameID], a)
	if p.Result != "" {
		m.finishLocked(g, p.Result)
	}
	return a, nil
}

func (m *Memory) ListActions(_ context.Context, gameID int64) ([]Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Action{}, m.actions[gameID]...), nil
}
