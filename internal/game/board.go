package game

type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) Opponent() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// idx maps White/Black onto the per-color arrays in State.
func (c Color) idx() int { return int(c) - 1 }

type Kind int8

const (
	Regular Kind = iota
	// Reinforcement is the GIPF piece: two stacked pieces that its owner may
	// leave on the board when it sits in a removed line.
	Reinforcement
)

func (k Kind) weight() int {
	if k == Reinforcement {
		return 2
	}
	return 1
}

type Piece struct {
	Color Color
	Kind  Kind
}

func (p Piece) Empty() bool { return p.Color == NoColor }

// Board is a value type; copying a Board copies every cell.
type Board struct {
	cells [boardColumns][boardColumns]Piece
}

func (b *Board) At(c Coord) Piece {
	if !c.OnBoard() {
		return Piece{}
	}
	return b.cells[c.Q+boardRadius][c.R+boardRadius]
}

func (b *Board) Set(c Coord, p Piece) {
	if !c.OnBoard() {
		return
	}
	b.cells[c.Q+boardRadius][c.R+boardRadius] = p
}

func (b *Board) clear(c Coord) { b.Set(c, Piece{}) }

// Occupied returns a copy of every occupied point.
func (b *Board) Occupied() map[Coord]Piece {
	out := map[Coord]Piece{}
	for _, c := range boardPoints {
		if p := b.At(c); !p.Empty() {
			out[c] = p
		}
	}
	return out
}

func (b *Board) count(color Color, kind Kind) int {
	n := 0
	for _, c := range boardPoints {
		if p := b.At(c); p.Color == color && p.Kind == kind {
			n++
		}
	}
	return n
}
