package games

import "time"

type CreateGameRequest struct {
	Type          string `json:"type"`
	WhiteIdentity string `json:"whiteIdentity,omitempty"`
	BlackIdentity string `json:"blackIdentity,omitempty"`
	Public        bool   `json:"public"`
}

type CreateGameResponse struct {
	ID          int64  `json:"id"`
	WhiteToken  string `json:"whiteToken"`
	BlackToken  string `json:"blackToken"`
	ViewerToken string `json:"viewerToken"`
}

type ActionView struct {
	SequenceNumber int64  `json:"sequenceNumber"`
	Payload        string `json:"payload"`
	Signature      string `json:"signature"`
}

type JoinGameResponse struct {
	Role            string       `json:"role"`
	GameToken       string       `json:"gameToken"`
	WhitePlayerName string       `json:"whitePlayerName"`
	BlackPlayerName string       `json:"blackPlayerName"`
	GameType        string       `json:"gameType"`
	Finished        bool         `json:"finished"`
	Result          string       `json:"result,omitempty"`
	Actions         []ActionView `json:"actions"`
}

type GameSummary struct {
	ID              int64      `json:"id"`
	Type            string     `json:"type"`
	WhitePlayerName string     `json:"whitePlayerName"`
	BlackPlayerName string     `json:"blackPlayerName"`
	Public          bool       `json:"public"`
	Finished        bool       `json:"finished"`
	Result          string     `json:"result,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
}
