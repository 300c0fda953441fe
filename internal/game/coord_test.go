package game

import (
	"errors"
	"testing"
)

func TestBoardGeometryCounts(t *testing.T) {
	interior, edge := 0, 0
	for _, c := range boardPoints {
		switch {
		case c.IsInterior():
			interior++
		case c.IsEdge():
			edge++
		}
	}
	if interior != 37 || edge != 24 {
		t.Fatalf("interior=%d edge=%d, want 37 and 24", interior, edge)
	}
}

func TestCoordRoundTrip(t *testing.T) {
	for _, c := range boardPoints {
		got, err := ParseCoord(c.String())
		if err != nil {
			t.Fatalf("parse %s: %v", c, err)
		}
		if got != c {
			t.Fatalf("round trip %s = %v, want %v", c, got, c)
		}
	}
}

func TestParseCoordNotation(t *testing.T) {
	cases := []struct {
		in       string
		interior bool
	}{
		{"a1", false},
		{"a5", false},
		{"b2", true},
		{"e1", false},
		{"e5", true},
		{"e9", false},
		{"h5", true},
		{"i5", false},
	}
	for _, tc := range cases {
		c, err := ParseCoord(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		if c.IsInterior() != tc.interior {
			t.Fatalf("%q interior = %v, want %v", tc.in, c.IsInterior(), tc.interior)
		}
	}
	if MustCoord("e5") != (Coord{}) {
		t.Fatalf("e5 should be the center")
	}
}

func TestParseCoordRejectsOffBoard(t *testing.T) {
	for _, in := range []string{"", "a", "a0", "a6", "e10", "j1", "b7", "i6", "A1", "bx"} {
		if _, err := ParseCoord(in); !errors.Is(err, ErrInvalidCoord) {
			t.Fatalf("ParseCoord(%q) err = %v, want ErrInvalidCoord", in, err)
		}
	}
}

func TestEdgeDotNeighbors(t *testing.T) {
	a1 := MustCoord("a1")
	var interior []string
	for _, d := range directions {
		if n := a1.Add(d); n.IsInterior() {
			interior = append(interior, n.String())
		}
	}
	if len(interior) != 1 || interior[0] != "b2" {
		t.Fatalf("corner a1 interior neighbors = %v, want [b2]", interior)
	}
}
