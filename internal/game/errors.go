package game

import (
	"errors"
	"fmt"
)

var (
	ErrBadPayload              = errors.New("bad_payload")
	ErrUnknownRuleset          = errors.New("unknown_ruleset")
	ErrInvalidCoord            = errors.New("invalid_coord")
	ErrWrongPhase              = errors.New("wrong_phase")
	ErrGameFinished            = errors.New("game_finished")
	ErrNotEdge                 = errors.New("not_edge")
	ErrNotAdjacent             = errors.New("not_adjacent")
	ErrLineOccupied            = errors.New("line_occupied")
	ErrReserveEmpty            = errors.New("reserve_empty")
	ErrReinforcementRequired   = errors.New("reinforcement_required")
	ErrReinforcementNotAllowed = errors.New("reinforcement_not_allowed")
	ErrDisambiguationRequired  = errors.New("disambiguation_required")
	ErrAmbiguousSelection      = errors.New("ambiguous_selection")
	ErrNotInRun                = errors.New("not_in_run")
	ErrNotReinforcement        = errors.New("not_reinforcement")
	ErrKeepReformsRun          = errors.New("keep_reforms_run")
	ErrRemovalMismatch         = errors.New("removal_mismatch")
)

// RuleViolation is the failure returned by Apply.
type RuleViolation struct {
	Action string
	Color  Color
	Err    error
}

func (v *RuleViolation) Error() string {
	return fmt.Sprintf("%s by %s: %v", v.Action, v.Color, v.Err)
}

func (v *RuleViolation) Unwrap() error { return v.Err }
