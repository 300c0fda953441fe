// Package verify is the client half of the trust model: it replays the
// ledger through the rules engine and checks the signatures a client can
// check, which are the ones on actions its own color had to make.
package verify

import (
	"errors"
	"fmt"

	"gipf-arena/internal/game"
	"gipf-arena/internal/ledger"
)

var (
	ErrSignatureMismatch = errors.New("signature_mismatch")
	ErrIllegalAction     = errors.New("illegal_action")
	ErrOutOfOrder        = errors.New("out_of_order")
)

type Entry struct {
	Seq       int64
	Payload   string
	Signature string
}

// Verifier follows one game from one seat. Color is NoColor for viewers,
// who can only check legality.
type Verifier struct {
	Color game.Color
	Token string
	State game.State
	next  int64
}

func New(ruleset game.Ruleset, color game.Color, token string) (*Verifier, error) {
	s, err := game.NewGame(ruleset)
	if err != nil {
		return nil, err
	}
	return &Verifier{Color: color, Token: token, State: s, next: 1}, nil
}

// Observe checks and applies the next ledger entry. On error the verifier is
// left unchanged; the caller is expected to answer with RejectAction.
func (v *Verifier) Observe(e Entry) error {
	if e.Seq != v.next {
		return fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, e.Seq, v.next)
	}
	mover := v.State.Turn
	if v.Color != game.NoColor && mover == v.Color && !ledger.Verify(e.Seq, e.Payload, v.Token, e.Signature) {
		return fmt.Errorf("%w: action %d (%s) was not signed by %s", ErrSignatureMismatch, e.Seq, e.Payload, v.Color)
	}
	next, err := game.ApplyPayload(v.State, e.Payload)
	if err != nil {
		return fmt.Errorf("%w: action %d: %v", ErrIllegalAction, e.Seq, err)
	}
	v.State = next
	v.next++
	return nil
}

func (v *Verifier) ObserveAll(entries []Entry) error {
	for _, e := range entries {
		if err := v.Observe(e); err != nil {
			return err
		}
	}
	return nil
}

// NextSequence is the sequence number the next action must carry.
func (v *Verifier) NextSequence() int64 { return v.next }

// MyTurn reports whether the seat is expected to act now.
func (v *Verifier) MyTurn() bool {
	return v.Color != game.NoColor && !v.State.Finished() && v.State.Turn == v.Color
}

// Sign signs payload as the next action of this seat.
func (v *Verifier) Sign(payload string) string {
	return ledger.Sign(v.next, payload, v.Token)
}
