package hub

import "gipf-arena/internal/app/games"

// Envelope types, client to server.
const (
	TypeJoin         = "Join"
	TypeAction       = "Action"
	TypeRejectAction = "RejectAction"
	TypeGameOver     = "GameOver"
	TypeSendFullGame = "SendFullGame"
)

// Envelope types, server to client. Action and GameOver travel both ways.
const (
	TypeUpgradeToken = "UpgradeToken"
	TypeFullGame     = "FullGame"
	TypeError        = "Error"
)

// Envelope is the only frame on the socket. Payload is a string; for Action,
// UpgradeToken and FullGame it holds JSON, for GameOver the result, for
// RejectAction the reason and for Error a message.
type Envelope struct {
	GameID  int64  `json:"gameId"`
	Token   string `json:"token,omitempty"`
	Type    string `json:"type"`
	Payload string `json:"payload"`
}

type ActionPayload struct {
	SequenceNumber int64  `json:"sequenceNumber"`
	ActionPayload  string `json:"actionPayload"`
	Signature      string `json:"signature"`
	// Result ends the game together with this action.
	Result string `json:"result,omitempty"`
}

func (p ActionPayload) view() games.ActionView {
	return games.ActionView{SequenceNumber: p.SequenceNumber, Payload: p.ActionPayload, Signature: p.Signature}
}
