package game

import (
	"fmt"
	"strconv"
)

// Coord is an axial hex coordinate. The board is the radius-4 hexagon around
// the origin: distance <= 3 are interior points, distance 4 are edge dots.
type Coord struct {
	Q int
	R int
}

const (
	boardRadius    = 4
	interiorRadius = 3
	boardColumns   = 2*boardRadius + 1
)

// directions in a fixed order; the first three are the canonical ones used
// when scanning lines so each line is visited once.
var directions = [6]Coord{
	{Q: 0, R: 1},
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
}

func (c Coord) Add(d Coord) Coord { return Coord{Q: c.Q + d.Q, R: c.R + d.R} }
func (c Coord) Sub(d Coord) Coord { return Coord{Q: c.Q - d.Q, R: c.R - d.R} }

func (c Coord) distance() int {
	return max(abs(c.Q), abs(c.R), abs(c.Q+c.R))
}

func (c Coord) IsInterior() bool { return c.distance() <= interiorRadius }
func (c Coord) IsEdge() bool     { return c.distance() == boardRadius }
func (c Coord) OnBoard() bool    { return c.distance() <= boardRadius }

func isDirection(d Coord) bool {
	for _, dir := range directions {
		if dir == d {
			return true
		}
	}
	return false
}

func columnRange(q int) (lo, hi int) {
	return max(-boardRadius, -boardRadius-q), min(boardRadius, boardRadius-q)
}

// ParseCoord reads GIPF notation: a column letter a..i and a row counted
// from 1 at the bottom of the column.
func ParseCoord(s string) (Coord, error) {
	if len(s) < 2 || s[0] < 'a' || s[0] >= 'a'+boardColumns {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	q := int(s[0]-'a') - boardRadius
	lo, hi := columnRange(q)
	r := lo + row - 1
	if row < 1 || r > hi {
		return Coord{}, fmt.Errorf("%w: %q", ErrInvalidCoord, s)
	}
	return Coord{Q: q, R: r}, nil
}

func MustCoord(s string) Coord {
	c, err := ParseCoord(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Coord) String() string {
	if !c.OnBoard() {
		return fmt.Sprintf("(%d,%d)", c.Q, c.R)
	}
	lo, _ := columnRange(c.Q)
	return string(rune('a'+c.Q+boardRadius)) + strconv.Itoa(c.R-lo+1)
}

// boardPoints lists every point column by column, bottom to top. Scans
// iterate this slice so results never depend on map order.
var boardPoints = func() []Coord {
	out := make([]Coord, 0, 61)
	for q := -boardRadius; q <= boardRadius; q++ {
		lo, hi := columnRange(q)
		for r := lo; r <= hi; r++ {
			out = append(out, Coord{Q: q, R: r})
		}
	}
	return out
}()

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
