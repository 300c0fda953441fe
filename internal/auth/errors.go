package auth

import "errors"

var (
	// ErrAuth is fatal to the connection attempt, never to the game.
	ErrAuth         = errors.New("invalid_token")
	ErrGameNotFound = errors.New("game_not_found")
)
