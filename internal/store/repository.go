package store

import "context"

// Repository is implemented by both the Postgres and the memory driver.
type Repository interface {
	Ping(ctx context.Context) error
	Close()

	CreateAccount(ctx context.Context, name, token string) (Account, error)
	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByName(ctx context.Context, name string) (*Account, error)
	GetAccountByToken(ctx context.Context, token string) (*Account, error)

	CreateGame(ctx context.Context, g NewGame) (Game, error)
	GetGame(ctx context.Context, id int64) (*Game, error)
	ListGames(ctx context.Context, limit, offset int) ([]Game, error)
	// FinishGame reports whether this call was the one that finished the game.
	FinishGame(ctx context.Context, id int64, result string) (Game, bool, error)

	AppendAction(ctx context.Context, p AppendParams) (Action, error)
	ListActions(ctx context.Context, gameID int64) ([]Action, error)
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*Memory)(nil)
)
