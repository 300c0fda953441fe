package store

import "time"

type Account struct {
	ID        string
	Name      string
	TokenHash string
	CreatedAt time.Time
}

type Game struct {
	ID          int64
	Type        string
	WhiteToken  string
	BlackToken  string
	ViewerToken string
	// Linked seats; empty for guest seats.
	WhiteAccountID string
	BlackAccountID string
	WhiteName      string
	BlackName      string
	Finished       bool
	Result         string
	CreatedAt      time.Time
	FinishedAt     *time.Time
}

type Action struct {
	GameID    int64
	Seq       int64
	Payload   string
	Signature string
	CreatedAt time.Time
}

type NewGame struct {
	Type           string
	WhiteToken     string
	BlackToken     string
	ViewerToken    string
	WhiteAccountID string
	BlackAccountID string
}

type AppendParams struct {
	GameID    int64
	Seq       int64
	Payload   string
	Signature string
	// Result, when set, finishes the game in the same transaction.
	Result string
}
