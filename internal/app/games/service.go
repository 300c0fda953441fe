package games

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gipf-arena/internal/auth"
	"gipf-arena/internal/ledger"
	"gipf-arena/internal/store"

	"github.com/rs/zerolog/log"
)

const maxListLimit = 100

type Service struct {
	repo   store.Repository
	ledger *ledger.Ledger
	auth   *auth.Authority
}

func NewService(repo store.Repository, l *ledger.Ledger, a *auth.Authority) *Service {
	return &Service{repo: repo, ledger: l, auth: a}
}

// Create mints the three game tokens. A public game gets an empty viewer
// token so anyone may watch without one.
func (s *Service) Create(ctx context.Context, in CreateGameRequest) (*CreateGameResponse, error) {
	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return nil, ErrInvalidRequest
	}
	whiteID, err := s.resolveIdentity(ctx, in.WhiteIdentity)
	if err != nil {
		return nil, err
	}
	blackID, err := s.resolveIdentity(ctx, in.BlackIdentity)
	if err != nil {
		return nil, err
	}

	p := store.NewGame{Type: in.Type, WhiteAccountID: whiteID, BlackAccountID: blackID}
	if p.WhiteToken, err = auth.MintToken(); err != nil {
		return nil, err
	}
	if p.BlackToken, err = auth.MintToken(); err != nil {
		return nil, err
	}
	if !in.Public {
		if p.ViewerToken, err = auth.MintToken(); err != nil {
			return nil, err
		}
	}
	g, err := s.repo.CreateGame(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	log.Info().Int64("game_id", g.ID).Str("type", g.Type).Bool("public", in.Public).Msg("game_created")
	return &CreateGameResponse{
		ID:          g.ID,
		WhiteToken:  g.WhiteToken,
		BlackToken:  g.BlackToken,
		ViewerToken: g.ViewerToken,
	}, nil
}

func (s *Service) resolveIdentity(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	a, err := s.repo.GetAccountByName(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUnknownIdentity, name)
		}
		return "", err
	}
	return a.ID, nil
}

// Join classifies token and returns the seat plus the full ledger. The hub
// calls it from the game's actor so no live action can slip in between.
func (s *Service) Join(ctx context.Context, gameID int64, token string) (*JoinGameResponse, auth.Grant, error) {
	grant, err := s.classify(ctx, gameID, token)
	if err != nil {
		return nil, auth.Grant{}, err
	}
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, auth.Grant{}, mapLedgerErr(err)
	}
	actions, err := s.ledger.Replay(ctx, gameID)
	if err != nil {
		return nil, auth.Grant{}, mapLedgerErr(err)
	}
	return &JoinGameResponse{
		Role:            string(grant.Role),
		GameToken:       grant.GameToken,
		WhitePlayerName: g.WhiteName,
		BlackPlayerName: g.BlackName,
		GameType:        g.Type,
		Finished:        g.Finished,
		Result:          g.Result,
		Actions:         ToViews(actions),
	}, grant, nil
}

// Replay is the read-only ledger view for HTTP clients.
func (s *Service) Replay(ctx context.Context, gameID int64, token string) ([]ActionView, error) {
	if _, err := s.classify(ctx, gameID, token); err != nil {
		return nil, err
	}
	actions, err := s.ledger.Replay(ctx, gameID)
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return ToViews(actions), nil
}

// Append writes the next action of a seated player. A non-empty result
// finishes the game in the same transaction.
func (s *Service) Append(ctx context.Context, gameID int64, role auth.Role, a ActionView, result string) (store.Action, error) {
	if !role.CanAct() {
		return store.Action{}, ErrForbidden
	}
	stored, err := s.ledger.Append(ctx, ledger.AppendRequest{
		GameID:    gameID,
		Sequence:  a.SequenceNumber,
		Payload:   a.Payload,
		Signature: a.Signature,
		Result:    strings.TrimSpace(result),
	})
	if err != nil {
		return store.Action{}, mapLedgerErr(err)
	}
	return stored, nil
}

// Actions is the ordered ledger of a game the caller already joined.
func (s *Service) Actions(ctx context.Context, gameID int64) ([]ActionView, error) {
	actions, err := s.ledger.Replay(ctx, gameID)
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return ToViews(actions), nil
}

func (s *Service) Game(ctx context.Context, gameID int64) (*store.Game, error) {
	g, err := s.repo.GetGame(ctx, gameID)
	if err != nil {
		return nil, mapLedgerErr(err)
	}
	return g, nil
}

// Finish ends the game for good. The result is only written by the first
// call; the returned bool tells whether this call wrote it.
func (s *Service) Finish(ctx context.Context, gameID int64, result string) (store.Game, bool, error) {
	result = strings.TrimSpace(result)
	if result == "" {
		return store.Game{}, false, ErrInvalidRequest
	}
	g, changed, err := s.ledger.Finish(ctx, gameID, result)
	if err != nil {
		return store.Game{}, false, mapLedgerErr(err)
	}
	return g, changed, nil
}

// Reject finishes the game on behalf of a player that refuses to continue.
func (s *Service) Reject(ctx context.Context, gameID int64, role auth.Role, reason string) (store.Game, bool, error) {
	if !role.CanAct() {
		return store.Game{}, false, ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "no reason given"
	}
	return s.Finish(ctx, gameID, RejectionResult(role, reason))
}

func RejectionResult(role auth.Role, reason string) string {
	return fmt.Sprintf("rejected by %s: %s", role, reason)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]GameSummary, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.repo.ListGames(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]GameSummary, 0, len(rows))
	for _, g := range rows {
		out = append(out, GameSummary{
			ID:              g.ID,
			Type:            g.Type,
			WhitePlayerName: g.WhiteName,
			BlackPlayerName: g.BlackName,
			Public:          g.ViewerToken == "",
			Finished:        g.Finished,
			Result:          g.Result,
			CreatedAt:       g.CreatedAt,
			FinishedAt:      g.FinishedAt,
		})
	}
	return out, nil
}

// EnsureAccount creates the account unless one with that name exists.
func (s *Service) EnsureAccount(ctx context.Context, name, token string) error {
	if strings.TrimSpace(name) == "" || token == "" {
		return ErrInvalidRequest
	}
	if _, err := s.repo.GetAccountByName(ctx, name); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_, err := s.repo.CreateAccount(ctx, name, token)
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	return err
}

func (s *Service) classify(ctx context.Context, gameID int64, token string) (auth.Grant, error) {
	grant, err := s.auth.Classify(ctx, gameID, token)
	switch {
	case errors.Is(err, auth.ErrGameNotFound):
		return auth.Grant{}, ErrGameNotFound
	case errors.Is(err, auth.ErrAuth):
		return auth.Grant{}, ErrUnauthorized
	case err != nil:
		return auth.Grant{}, err
	}
	return grant, nil
}

func mapLedgerErr(err error) error {
	if errors.Is(err, ledger.ErrGameNotFound) || errors.Is(err, store.ErrNotFound) {
		return ErrGameNotFound
	}
	return err
}

func ToViews(actions []store.Action) []ActionView {
	out := make([]ActionView, 0, len(actions))
	for _, a := range actions {
		out = append(out, ActionView{SequenceNumber: a.Seq, Payload: a.Payload, Signature: a.Signature})
	}
	return out
}
