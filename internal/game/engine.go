// Package game is the GIPF rules engine. It is pure: every function takes a
// State by value and returns a new one. Clients run it to derive the board
// from the ledger; the server never does.
package game

import (
	"fmt"
	"slices"
)

// Apply runs one action against s. s itself is never modified.
func Apply(s State, a Action) (State, error) {
	next := s.clone()
	var err error
	switch a := a.(type) {
	case Move:
		err = next.applyMove(a)
	case Select:
		err = next.applySelect(a)
	case Toggle:
		err = next.applyToggle(a)
	case Remove:
		err = next.applyRemove(a)
	default:
		err = ErrBadPayload
	}
	if err != nil {
		return s, &RuleViolation{Action: actionString(a), Color: s.Turn, Err: err}
	}
	return next, nil
}

// ApplyPayload parses and applies a ledger payload.
func ApplyPayload(s State, payload string) (State, error) {
	a, err := ParseAction(payload)
	if err != nil {
		return s, &RuleViolation{Action: payload, Color: s.Turn, Err: err}
	}
	return Apply(s, a)
}

// Replay rebuilds the state from the starting position of ruleset.
func Replay(ruleset Ruleset, payloads []string) (State, error) {
	s, err := NewGame(ruleset)
	if err != nil {
		return State{}, err
	}
	for i, p := range payloads {
		s, err = ApplyPayload(s, p)
		if err != nil {
			return s, fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return s, nil
}

// LegalMoves lists every move the side to move may make, in board order.
func LegalMoves(s State) []Move {
	if s.Phase != PhaseMove {
		return nil
	}
	color := s.Turn
	reserve := s.Reserve[color.idx()]
	var out []Move
	for _, from := range boardPoints {
		if !from.IsEdge() {
			continue
		}
		for _, d := range directions {
			to := from.Add(d)
			if !to.IsInterior() || lineFull(&s.Board, to, d) {
				continue
			}
			if !s.MustUseReinforcement && reserve >= Regular.weight() {
				out = append(out, Move{From: from, To: to})
			}
			if s.reinforcementAllowed(color) && reserve >= Reinforcement.weight() {
				out = append(out, Move{From: from, To: to, Reinforcement: true})
			}
		}
	}
	return out
}

// PendingRemovals returns the open removal decision, or nil outside the
// removal phase.
func PendingRemovals(s State) *Removal {
	if s.Phase != PhaseRemoval || s.Removal == nil {
		return nil
	}
	return s.Removal.clone()
}

func lineFull(b *Board, to, d Coord) bool {
	for c := to; c.IsInterior(); c = c.Add(d) {
		if b.At(c).Empty() {
			return false
		}
	}
	return true
}

func (s *State) applyMove(m Move) error {
	if s.Phase == PhaseFinished {
		return ErrGameFinished
	}
	if s.Phase != PhaseMove {
		return ErrWrongPhase
	}
	if !m.From.IsEdge() {
		return ErrNotEdge
	}
	if !m.To.IsInterior() {
		return ErrInvalidCoord
	}
	d := m.To.Sub(m.From)
	if !isDirection(d) {
		return ErrNotAdjacent
	}
	color := s.Turn
	kind := Regular
	if m.Reinforcement {
		if !s.reinforcementAllowed(color) {
			return ErrReinforcementNotAllowed
		}
		kind = Reinforcement
	} else if s.MustUseReinforcement {
		return ErrReinforcementRequired
	}
	if s.Reserve[color.idx()] < kind.weight() {
		return ErrReserveEmpty
	}

	end := m.To
	for !s.Board.At(end).Empty() {
		end = end.Add(d)
		if !end.IsInterior() {
			return ErrLineOccupied
		}
	}
	for c := end; c != m.To; c = c.Sub(d) {
		s.Board.Set(c, s.Board.At(c.Sub(d)))
	}
	s.Board.Set(m.To, Piece{Color: color, Kind: kind})

	s.Reserve[color.idx()] -= kind.weight()
	s.Moves[color.idx()]++
	if kind == Reinforcement {
		s.fielded[color.idx()] = true
	} else {
		s.openingDone[color.idx()] = true
	}
	s.LastMover = color
	s.MustUseReinforcement = false
	s.settle(color)
	return nil
}

func (s *State) applySelect(sel Select) error {
	r, err := s.pendingRemoval()
	if err != nil {
		return err
	}
	match := -1
	for i, run := range r.Runs {
		if !run.contains(sel.At) {
			continue
		}
		if match >= 0 {
			return ErrAmbiguousSelection
		}
		match = i
	}
	if match < 0 {
		return ErrNotInRun
	}
	r.Selected = match
	r.Kept = nil
	return nil
}

func (s *State) applyToggle(t Toggle) error {
	r, err := s.pendingRemoval()
	if err != nil {
		return err
	}
	if r.Selected < 0 {
		return ErrDisambiguationRequired
	}
	segment := r.Runs[r.Selected].Segment
	if !containsCoord(segment, t.At) {
		return ErrNotInRun
	}
	if s.Board.At(t.At).Kind != Reinforcement {
		return ErrNotReinforcement
	}
	if i := slices.Index(r.Kept, t.At); i >= 0 {
		r.Kept = slices.Delete(r.Kept, i, i+1)
		return nil
	}
	kept := make([]Coord, 0, len(r.Kept)+1)
	for _, c := range segment {
		if c == t.At || containsCoord(r.Kept, c) {
			kept = append(kept, c)
		}
	}
	if keepReformsRun(&s.Board, segment, kept) {
		return ErrKeepReformsRun
	}
	r.Kept = kept
	return nil
}

func (s *State) applyRemove(rm Remove) error {
	r, err := s.pendingRemoval()
	if err != nil {
		return err
	}
	if r.Selected < 0 {
		return ErrDisambiguationRequired
	}
	if !sameSet(rm.At, r.Proposal()) {
		return ErrRemovalMismatch
	}
	remover := r.Color
	for _, c := range rm.At {
		p := s.Board.At(c)
		if p.Color == remover {
			s.Reserve[remover.idx()] += p.Kind.weight()
		} else {
			s.Captured[p.Color.idx()] += p.Kind.weight()
		}
		s.Board.clear(c)
	}
	s.Removal = nil
	s.settle(remover)
	return nil
}

func (s *State) pendingRemoval() (*Removal, error) {
	switch {
	case s.Phase == PhaseFinished:
		return nil, ErrGameFinished
	case s.Phase != PhaseRemoval || s.Removal == nil:
		return nil, ErrWrongPhase
	}
	return s.Removal, nil
}

// settle opens the next removal decision, first for color and then for its
// opponent. With nothing left to remove the turn passes to the opponent of
// the last mover, unless the game just ended.
func (s *State) settle(color Color) {
	for _, c := range []Color{color, color.Opponent()} {
		if runs := findRuns(&s.Board, c); len(runs) > 0 {
			s.Phase = PhaseRemoval
			s.Turn = c
			s.Removal = newRemoval(c, runs, &s.Board)
			return
		}
	}
	s.Removal = nil
	if s.checkReinforcementLoss() {
		return
	}
	s.beginMove(s.LastMover.Opponent())
}

func (s *State) checkReinforcementLoss() bool {
	if !s.Ruleset.hasReinforcement() {
		return false
	}
	lost := func(c Color) bool {
		return s.fielded[c.idx()] && s.Board.count(c, Reinforcement) == 0
	}
	whiteLost, blackLost := lost(White), lost(Black)
	switch {
	case whiteLost && blackLost:
		s.finish(s.LastMover.Opponent())
	case whiteLost:
		s.finish(Black)
	case blackLost:
		s.finish(White)
	default:
		return false
	}
	return true
}

func (s *State) beginMove(c Color) {
	s.Phase = PhaseMove
	s.Turn = c
	s.MustUseReinforcement = s.mustUseReinforcement(c)
	if s.Reserve[c.idx()] == 0 || len(LegalMoves(*s)) == 0 {
		s.finish(c.Opponent())
	}
}

func (s *State) finish(winner Color) {
	s.Phase = PhaseFinished
	s.Winner = winner
	s.Removal = nil
	s.MustUseReinforcement = false
}

func sameSet(a, b []Coord) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[Coord]int, len(a))
	for _, c := range a {
		seen[c]++
	}
	for _, c := range b {
		if seen[c] != 1 {
			return false
		}
		seen[c]--
	}
	return true
}

func actionString(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.String()
}
