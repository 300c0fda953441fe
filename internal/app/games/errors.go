package games

import "errors"

var (
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrUnknownIdentity = errors.New("unknown_identity")
	ErrGameNotFound    = errors.New("game_not_found")
	ErrUnauthorized    = errors.New("invalid_token")
	ErrForbidden       = errors.New("viewer_cannot_act")
)
