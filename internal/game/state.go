package game

import "fmt"

// Ruleset is the game type tag stored on the game row. Only the engine
// interprets it.
type Ruleset string

const (
	Basic      Ruleset = "basic"
	Standard   Ruleset = "standard"
	Tournament Ruleset = "tournament"
)

func ParseRuleset(s string) (Ruleset, error) {
	switch r := Ruleset(s); r {
	case Basic, Standard, Tournament:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRuleset, s)
	}
}

func (r Ruleset) hasReinforcement() bool { return r == Standard || r == Tournament }

func (r Ruleset) piecesPerColor() int {
	if r == Basic {
		return 15
	}
	return 18
}

var (
	whiteCorners = []string{"b5", "e2", "h5"}
	blackCorners = []string{"b2", "e8", "h2"}
)

type Phase int8

const (
	PhaseMove Phase = iota
	PhaseRemoval
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseMove:
		return "waiting_for_move"
	case PhaseRemoval:
		return "waiting_for_removal"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is the full derived game state. Apply treats it as a value.
type State struct {
	Ruleset  Ruleset
	Board    Board
	Reserve  [2]int
	Captured [2]int
	Phase    Phase
	// Turn is the color expected to submit the next action, for both moves
	// and removals.
	Turn                 Color
	LastMover            Color
	MustUseReinforcement bool
	Removal              *Removal
	Winner               Color
	Moves                [2]int

	openingDone [2]bool
	fielded     [2]bool
}

// NewGame returns the starting position for a ruleset.
func NewGame(ruleset Ruleset) (State, error) {
	if _, err := ParseRuleset(string(ruleset)); err != nil {
		return State{}, err
	}
	s := State{
		Ruleset:   ruleset,
		Phase:     PhaseMove,
		Turn:      White,
		LastMover: Black,
	}
	total := ruleset.piecesPerColor()
	s.Reserve = [2]int{total, total}

	kind := Regular
	if ruleset == Standard {
		kind = Reinforcement
	}
	if ruleset != Tournament {
		for color, corners := range map[Color][]string{White: whiteCorners, Black: blackCorners} {
			for _, name := range corners {
				s.Board.Set(MustCoord(name), Piece{Color: color, Kind: kind})
				s.Reserve[color.idx()] -= kind.weight()
			}
			if kind == Reinforcement {
				s.fielded[color.idx()] = true
			}
		}
	}
	s.MustUseReinforcement = s.mustUseReinforcement(White)
	return s, nil
}

func (s State) Finished() bool { return s.Phase == PhaseFinished }

func (s State) clone() State {
	out := s
	if s.Removal != nil {
		out.Removal = s.Removal.clone()
	}
	return out
}

func (s *State) mustUseReinforcement(c Color) bool {
	return s.Ruleset == Tournament && s.Moves[c.idx()] == 0
}

func (s *State) reinforcementAllowed(c Color) bool {
	return s.Ruleset == Tournament && !s.openingDone[c.idx()]
}

// Run is a maximal stretch of four or more same-colored pieces together
// with the segment that leaves the board when it is removed.
type Run struct {
	Color   Color
	Dir     Coord
	Pieces  []Coord
	Segment []Coord
}

func (r Run) contains(c Coord) bool { return containsCoord(r.Pieces, c) }

// Removal is the pending removal decision for one color.
type Removal struct {
	Color     Color
	Runs      []Run
	Selected  int
	Kept      []Coord
	Ambiguous bool
}

func newRemoval(color Color, runs []Run, b *Board) *Removal {
	r := &Removal{Color: color, Runs: runs, Selected: -1}
	if len(runs) == 1 {
		// still pre-selected, but flagged when the segment holds
		// reinforcement pieces or crosses into the opponent's pieces
		r.Selected = 0
		for _, c := range runs[0].Segment {
			if p := b.At(c); p.Kind == Reinforcement || p.Color != color {
				r.Ambiguous = true
				break
			}
		}
	} else {
		r.Ambiguous = true
	}
	return r
}

func (r *Removal) clone() *Removal {
	out := *r
	out.Runs = make([]Run, len(r.Runs))
	for i, run := range r.Runs {
		out.Runs[i] = Run{
			Color:   run.Color,
			Dir:     run.Dir,
			Pieces:  append([]Coord(nil), run.Pieces...),
			Segment: append([]Coord(nil), run.Segment...),
		}
	}
	out.Kept = append([]Coord(nil), r.Kept...)
	return &out
}

// Proposal is the point set a Remove must list: the selected segment minus
// the kept reinforcement pieces. Nil until a run is selected.
func (r *Removal) Proposal() []Coord {
	if r == nil || r.Selected < 0 {
		return nil
	}
	out := make([]Coord, 0, len(r.Runs[r.Selected].Segment))
	for _, c := range r.Runs[r.Selected].Segment {
		if !containsCoord(r.Kept, c) {
			out = append(out, c)
		}
	}
	return out
}

func containsCoord(list []Coord, c Coord) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
