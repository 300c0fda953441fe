package game

import (
	"errors"
	"reflect"
	"testing"
)

func emptyState(r Ruleset) State {
	return State{
		Ruleset:   r,
		Phase:     PhaseMove,
		Turn:      White,
		LastMover: Black,
		Reserve:   [2]int{10, 10},
		Moves:     [2]int{1, 1},
	}
}

func place(s *State, color Color, kind Kind, names ...string) {
	for _, n := range names {
		s.Board.Set(MustCoord(n), Piece{Color: color, Kind: kind})
	}
}

func mustApply(t *testing.T, s State, payload string) State {
	t.Helper()
	next, err := ApplyPayload(s, payload)
	if err != nil {
		t.Fatalf("apply %q: %v", payload, err)
	}
	return next
}

func TestMoveAlongClearLineAlwaysSucceeds(t *testing.T) {
	s := emptyState(Basic)
	n := 0
	for _, from := range boardPoints {
		if !from.IsEdge() {
			continue
		}
		for _, d := range directions {
			to := from.Add(d)
			if !to.IsInterior() {
				continue
			}
			next, err := Apply(s, Move{From: from, To: to})
			if err != nil {
				t.Fatalf("move %s-%s: %v", from, to, err)
			}
			if got := next.Board.At(to); got != (Piece{Color: White}) {
				t.Fatalf("move %s-%s left %+v at destination", from, to, got)
			}
			n++
		}
	}
	if n != 42 {
		t.Fatalf("expected 42 entry moves on the empty board, got %d", n)
	}
}

func TestMoveAlongOccupiedLineRejected(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "e2", "e4", "e6", "e8")
	place(&s, Black, Regular, "e3", "e5", "e7")

	for _, payload := range []string{"e1-e2", "e9-e8"} {
		_, err := ApplyPayload(s, payload)
		if !errors.Is(err, ErrLineOccupied) {
			t.Fatalf("%s err = %v, want ErrLineOccupied", payload, err)
		}
	}
	var violation *RuleViolation
	_, err := ApplyPayload(s, "e1-e2")
	if !errors.As(err, &violation) || violation.Color != White {
		t.Fatalf("expected RuleViolation for white, got %v", err)
	}
}

func TestMovePushesLine(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "e2")
	place(&s, Black, Regular, "e3")

	next := mustApply(t, s, "e1-e2")
	want := map[string]Color{"e2": White, "e3": White, "e4": Black}
	for name, color := range want {
		if got := next.Board.At(MustCoord(name)).Color; got != color {
			t.Fatalf("%s = %s, want %s", name, got, color)
		}
	}
	if next.Turn != Black || next.Phase != PhaseMove {
		t.Fatalf("expected black to move, got turn=%s phase=%s", next.Turn, next.Phase)
	}
	if next.Reserve != [2]int{9, 10} {
		t.Fatalf("reserve = %v", next.Reserve)
	}
}

func TestMoveGeometryErrors(t *testing.T) {
	s := emptyState(Basic)
	cases := []struct {
		payload string
		want    error
	}{
		{"b2-c3", ErrNotEdge},
		{"a1-c3", ErrNotAdjacent},
		{"a1-a2", ErrInvalidCoord},
	}
	for _, tc := range cases {
		if _, err := ApplyPayload(s, tc.payload); !errors.Is(err, tc.want) {
			t.Fatalf("%s err = %v, want %v", tc.payload, err, tc.want)
		}
	}
}

func TestSingleRunRemovedWithoutDisambiguation(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "e2", "e3", "e4")

	s = mustApply(t, s, "e1-e2")
	if s.Phase != PhaseRemoval || s.Turn != White {
		t.Fatalf("expected white removal, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	r := PendingRemovals(s)
	if r == nil || r.Ambiguous || r.Selected != 0 || len(r.Runs) != 1 {
		t.Fatalf("expected auto-selected single run, got %+v", r)
	}

	s = mustApply(t, s, "x:e2,e3,e4,e5")
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	if s.Reserve[White.idx()] != 13 {
		t.Fatalf("white reserve = %d, want 13", s.Reserve[White.idx()])
	}
	if len(s.Board.Occupied()) != 0 {
		t.Fatalf("board should be empty")
	}
}

func TestTwoRunsRequireDisambiguation(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "e2", "f2", "g2", "h2", "f3", "g3", "h3")

	s = mustApply(t, s, "e1-e2")
	r := PendingRemovals(s)
	if r == nil || !r.Ambiguous || r.Selected != -1 || len(r.Runs) != 2 {
		t.Fatalf("expected two ambiguous runs, got %+v", r)
	}
	if _, err := ApplyPayload(s, "x:e2,f2,g2,h2"); !errors.Is(err, ErrDisambiguationRequired) {
		t.Fatalf("remove before select err = %v", err)
	}
	if _, err := ApplyPayload(s, "t:e2"); !errors.Is(err, ErrDisambiguationRequired) {
		t.Fatalf("toggle before select err = %v", err)
	}
	if _, err := ApplyPayload(s, "s:b2"); !errors.Is(err, ErrNotInRun) {
		t.Fatalf("select outside runs err = %v", err)
	}

	s = mustApply(t, s, "s:f2")
	s = mustApply(t, s, "x:e2,f2,g2,h2")
	r = PendingRemovals(s)
	if s.Phase != PhaseRemoval || r == nil || r.Ambiguous || len(r.Runs) != 1 {
		t.Fatalf("expected the second run to remain, got phase=%s removal=%+v", s.Phase, r)
	}
	s = mustApply(t, s, "x:e3,f3,g3,h3")
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
}

func TestSelectOnSharedPointIsAmbiguous(t *testing.T) {
	s := emptyState(Basic)
	// column run e2..e5 and row run e2,f2,g2,h2 share e2
	place(&s, White, Regular, "e2", "e3", "e4", "f2", "g2", "h2")

	s = mustApply(t, s, "e1-e2")
	r := PendingRemovals(s)
	if r == nil || len(r.Runs) != 2 {
		t.Fatalf("expected two runs, got %+v", r)
	}
	if _, err := ApplyPayload(s, "s:e2"); !errors.Is(err, ErrAmbiguousSelection) {
		t.Fatalf("select shared point err = %v", err)
	}
	s = mustApply(t, s, "s:e4")
	if got := PendingRemovals(s).Proposal(); len(got) != 4 {
		t.Fatalf("proposal = %v", got)
	}
}

func TestActingColorRemovesFirst(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "f2", "g2", "h2")
	place(&s, Black, Regular, "e2", "f3", "g3", "h3")

	s = mustApply(t, s, "e1-e2")
	if s.Phase != PhaseRemoval || s.Turn != White {
		t.Fatalf("expected white to remove first, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	if _, err := ApplyPayload(s, "e9-e8"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("move during removal err = %v", err)
	}

	s = mustApply(t, s, "x:e2,f2,g2,h2")
	if s.Phase != PhaseRemoval || s.Turn != Black {
		t.Fatalf("expected black removal next, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	s = mustApply(t, s, "x:e3,f3,g3,h3")
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	if s.Reserve != [2]int{13, 14} {
		t.Fatalf("reserve = %v, want [13 14]", s.Reserve)
	}
}

func TestSegmentCapturesOpponentPieces(t *testing.T) {
	s := emptyState(Basic)
	place(&s, White, Regular, "e2", "e3", "e4")
	place(&s, Black, Regular, "e5")

	s = mustApply(t, s, "e1-e2")
	r := PendingRemovals(s)
	if r == nil || !r.Ambiguous || r.Selected != 0 {
		t.Fatalf("expected flagged pre-selected run, got %+v", r)
	}
	if _, err := ApplyPayload(s, "x:e2,e3,e4,e5"); !errors.Is(err, ErrRemovalMismatch) {
		t.Fatalf("partial segment err = %v", err)
	}
	if _, err := ApplyPayload(s, "x:e2,e3,e4,e5,e6,e6"); !errors.Is(err, ErrRemovalMismatch) {
		t.Fatalf("duplicate point err = %v", err)
	}
	s = mustApply(t, s, "x:e6,e5,e4,e3,e2")
	if s.Captured[Black.idx()] != 1 {
		t.Fatalf("captured black = %d, want 1", s.Captured[Black.idx()])
	}
	if s.Reserve[White.idx()] != 13 {
		t.Fatalf("white reserve = %d, want 13", s.Reserve[White.idx()])
	}
}

func TestReinforcementToggle(t *testing.T) {
	s := emptyState(Standard)
	s.fielded = [2]bool{true, false}
	place(&s, White, Regular, "e2")
	place(&s, White, Reinforcement, "e3", "e4")

	s = mustApply(t, s, "e1-e2")
	r := PendingRemovals(s)
	if r == nil || !r.Ambiguous || r.Selected != 0 {
		t.Fatalf("expected ambiguous single run, got %+v", r)
	}
	if _, err := ApplyPayload(s, "t:e2"); !errors.Is(err, ErrNotReinforcement) {
		t.Fatalf("toggle regular piece err = %v", err)
	}
	if _, err := ApplyPayload(s, "t:b2"); !errors.Is(err, ErrNotInRun) {
		t.Fatalf("toggle outside segment err = %v", err)
	}

	s = mustApply(t, s, "t:e4")
	if _, err := ApplyPayload(s, "x:e2,e3,e4,e5"); !errors.Is(err, ErrRemovalMismatch) {
		t.Fatalf("remove kept piece err = %v", err)
	}
	// toggling twice restores the default
	again := mustApply(t, s, "t:e4")
	if got := PendingRemovals(again).Proposal(); len(got) != 4 {
		t.Fatalf("proposal after double toggle = %v", got)
	}

	s = mustApply(t, s, "x:e2,e3,e5")
	if got := s.Board.At(MustCoord("e4")); got != (Piece{Color: White, Kind: Reinforcement}) {
		t.Fatalf("kept piece = %+v", got)
	}
	if s.Reserve[White.idx()] != 13 {
		t.Fatalf("white reserve = %d, want 13", s.Reserve[White.idx()])
	}
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
}

func TestRemoverMayKeepOpponentReinforcement(t *testing.T) {
	s := emptyState(Standard)
	s.fielded = [2]bool{true, true}
	place(&s, White, Reinforcement, "b5")
	place(&s, White, Regular, "e2", "e3", "e4")
	place(&s, Black, Reinforcement, "e5")

	s = mustApply(t, s, "e1-e2")
	s = mustApply(t, s, "t:e6")
	s = mustApply(t, s, "x:e2,e3,e4,e5")
	if got := s.Board.At(MustCoord("e6")); got != (Piece{Color: Black, Kind: Reinforcement}) {
		t.Fatalf("kept piece = %+v", got)
	}
	if s.Captured[Black.idx()] != 0 || s.Reserve[Black.idx()] != 10 {
		t.Fatalf("black captured=%d reserve=%d, want 0 and 10", s.Captured[Black.idx()], s.Reserve[Black.idx()])
	}
	if s.Reserve[White.idx()] != 13 {
		t.Fatalf("white reserve = %d, want 13", s.Reserve[White.idx()])
	}
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
}

func TestFourReinforcementRunCannotBeKeptWhole(t *testing.T) {
	s := emptyState(Tournament)
	s.fielded = [2]bool{true, false}
	place(&s, White, Reinforcement, "e2", "e3", "e4")

	s = mustApply(t, s, "Ge1-e2")
	for _, p := range []string{"t:e2", "t:e3", "t:e4"} {
		s = mustApply(t, s, p)
	}
	if _, err := ApplyPayload(s, "t:e5"); !errors.Is(err, ErrKeepReformsRun) {
		t.Fatalf("keeping the whole run err = %v", err)
	}
	s = mustApply(t, s, "x:e5")
	if s.Phase != PhaseMove || s.Turn != Black {
		t.Fatalf("expected black to move, got phase=%s turn=%s", s.Phase, s.Turn)
	}
	if n := s.Board.count(White, Reinforcement); n != 3 {
		t.Fatalf("white reinforcement on board = %d, want 3", n)
	}
}

func TestReserveExhaustedFinishesGame(t *testing.T) {
	s := emptyState(Basic)
	s.Reserve = [2]int{5, 0}

	s = mustApply(t, s, "a1-b2")
	if !s.Finished() || s.Winner != White {
		t.Fatalf("expected white win, got phase=%s winner=%s", s.Phase, s.Winner)
	}
	if _, err := ApplyPayload(s, "e9-e8"); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("move after finish err = %v", err)
	}
	if LegalMoves(s) != nil {
		t.Fatalf("finished game should have no legal moves")
	}
}

func TestLosingLastReinforcementFinishesGame(t *testing.T) {
	s := emptyState(Standard)
	s.fielded = [2]bool{true, true}
	place(&s, White, Reinforcement, "b5")
	place(&s, White, Regular, "e2", "e3", "e4")
	place(&s, Black, Reinforcement, "e5")

	s = mustApply(t, s, "e1-e2")
	s = mustApply(t, s, "x:e2,e3,e4,e5,e6")
	if !s.Finished() || s.Winner != White {
		t.Fatalf("expected white win, got phase=%s winner=%s", s.Phase, s.Winner)
	}
	if s.Captured[Black.idx()] != 2 {
		t.Fatalf("captured black = %d, want 2", s.Captured[Black.idx()])
	}
}

func TestTournamentOpeningRequiresReinforcement(t *testing.T) {
	s, err := NewGame(Tournament)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if !s.MustUseReinforcement {
		t.Fatalf("expected first tournament move to require a reinforcement piece")
	}
	if _, err := ApplyPayload(s, "a1-b2"); !errors.Is(err, ErrReinforcementRequired) {
		t.Fatalf("regular opening err = %v", err)
	}
	s = mustApply(t, s, "Ga1-b2")
	s = mustApply(t, s, "Gi5-h5")
	// white may keep placing reinforcement pieces until its first regular move
	s = mustApply(t, s, "a5-b5")
	s = mustApply(t, s, "Gi1-h2")
	if _, err := ApplyPayload(s, "Ge1-e2"); !errors.Is(err, ErrReinforcementNotAllowed) {
		t.Fatalf("reinforcement after opening err = %v", err)
	}
	if s.Reserve != [2]int{15, 14} {
		t.Fatalf("reserve = %v, want [15 14]", s.Reserve)
	}
}

func TestBasicGameRejectsReinforcement(t *testing.T) {
	s, err := NewGame(Basic)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if _, err := ApplyPayload(s, "Ga1-b2"); !errors.Is(err, ErrReinforcementNotAllowed) {
		t.Fatalf("reinforcement in basic err = %v", err)
	}
}

func TestNewGameStartingPositions(t *testing.T) {
	cases := []struct {
		ruleset  Ruleset
		reserve  int
		onBoard  int
		kind     Kind
		mustGIPF bool
	}{
		{Basic, 12, 6, Regular, false},
		{Standard, 12, 6, Reinforcement, false},
		{Tournament, 18, 0, Regular, true},
	}
	for _, tc := range cases {
		s, err := NewGame(tc.ruleset)
		if err != nil {
			t.Fatalf("new %s: %v", tc.ruleset, err)
		}
		if s.Reserve != [2]int{tc.reserve, tc.reserve} {
			t.Fatalf("%s reserve = %v", tc.ruleset, s.Reserve)
		}
		occupied := s.Board.Occupied()
		if len(occupied) != tc.onBoard {
			t.Fatalf("%s pieces on board = %d", tc.ruleset, len(occupied))
		}
		for c, p := range occupied {
			if p.Kind != tc.kind {
				t.Fatalf("%s piece at %s has kind %d", tc.ruleset, c, p.Kind)
			}
		}
		if s.Turn != White || s.MustUseReinforcement != tc.mustGIPF {
			t.Fatalf("%s turn=%s must=%v", tc.ruleset, s.Turn, s.MustUseReinforcement)
		}
	}
	if _, err := NewGame("hexagonal"); !errors.Is(err, ErrUnknownRuleset) {
		t.Fatalf("unknown ruleset err = %v", err)
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	s := emptyState(Standard)
	s.fielded = [2]bool{true, false}
	place(&s, White, Regular, "e2")
	place(&s, White, Reinforcement, "e3", "e4")
	s = mustApply(t, s, "e1-e2")

	before := s.clone()
	_ = mustApply(t, s, "t:e4")
	_ = mustApply(t, s, "x:e2,e3,e4,e5")
	if !reflect.DeepEqual(before, s) {
		t.Fatalf("Apply mutated its input")
	}
}

func TestReplayReportsFailingIndex(t *testing.T) {
	_, err := Replay(Basic, []string{"a1-b2", "b2-c3"})
	if !errors.Is(err, ErrNotEdge) {
		t.Fatalf("replay err = %v, want ErrNotEdge", err)
	}
	if err.Error()[:8] != "action 2" {
		t.Fatalf("replay err = %q, want index prefix", err.Error())
	}
}
