// Package auth maps a (game, token) pair to a seat. It never decides whether
// an action may be written; clients enforce that through signatures.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"gipf-arena/internal/store"
)

type Role string

const (
	RoleWhite  Role = "white"
	RoleBlack  Role = "black"
	RoleViewer Role = "viewer"
)

// CanAct reports whether the role may submit actions or end the game.
func (r Role) CanAct() bool { return r == RoleWhite || r == RoleBlack }

type Grant struct {
	Role Role
	// GameToken is the per-game token of the granted seat. Clients that
	// joined with an account token sign with this one.
	GameToken string
	AccountID string
}

type Authority struct {
	repo store.Repository
}

func New(repo store.Repository) *Authority {
	return &Authority{repo: repo}
}

// Classify checks, in order: the white, black and viewer tokens; an account
// token linked to a seat; and the empty token on a public game.
func (a *Authority) Classify(ctx context.Context, gameID int64, token string) (Grant, error) {
	g, err := a.repo.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Grant{}, ErrGameNotFound
		}
		return Grant{}, fmt.Errorf("load game %d: %w", gameID, err)
	}
	return a.classify(ctx, g, token)
}

func (a *Authority) classify(ctx context.Context, g *store.Game, token string) (Grant, error) {
	if token == "" {
		if g.ViewerToken == "" {
			return Grant{Role: RoleViewer}, nil
		}
		return Grant{}, ErrAuth
	}
	switch {
	case tokenEqual(token, g.WhiteToken):
		return Grant{Role: RoleWhite, GameToken: g.WhiteToken, AccountID: g.WhiteAccountID}, nil
	case tokenEqual(token, g.BlackToken):
		return Grant{Role: RoleBlack, GameToken: g.BlackToken, AccountID: g.BlackAccountID}, nil
	case tokenEqual(token, g.ViewerToken):
		return Grant{Role: RoleViewer, GameToken: g.ViewerToken}, nil
	}
	if g.WhiteAccountID == "" && g.BlackAccountID == "" {
		return Grant{}, ErrAuth
	}
	acct, err := a.repo.GetAccountByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Grant{}, ErrAuth
		}
		return Grant{}, fmt.Errorf("resolve account token: %w", err)
	}
	switch acct.ID {
	case g.WhiteAccountID:
		return Grant{Role: RoleWhite, GameToken: g.WhiteToken, AccountID: acct.ID}, nil
	case g.BlackAccountID:
		return Grant{Role: RoleBlack, GameToken: g.BlackToken, AccountID: acct.ID}, nil
	}
	return Grant{}, ErrAuth
}

func tokenEqual(got, want string) bool {
	return want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// MintToken returns 128 random bits, hex encoded.
func MintToken() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
