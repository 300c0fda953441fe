package game

// findRuns scans every line once per canonical direction and returns the
// maximal runs of color in board order.
func findRuns(b *Board, color Color) []Run {
	var runs []Run
	for _, start := range boardPoints {
		if !start.IsInterior() || b.At(start).Color != color {
			continue
		}
		for _, d := range directions[:3] {
			prev := start.Sub(d)
			if prev.IsInterior() && b.At(prev).Color == color {
				continue
			}
			pieces := []Coord{start}
			for next := start.Add(d); next.IsInterior() && b.At(next).Color == color; next = next.Add(d) {
				pieces = append(pieces, next)
			}
			if len(pieces) < 4 {
				continue
			}
			runs = append(runs, Run{
				Color:   color,
				Dir:     d,
				Pieces:  pieces,
				Segment: segmentOf(b, pieces, d),
			})
		}
	}
	return runs
}

// segmentOf extends a run over adjacent occupied points in both directions.
func segmentOf(b *Board, pieces []Coord, d Coord) []Coord {
	first := pieces[0]
	for prev := first.Sub(d); prev.IsInterior() && !b.At(prev).Empty(); prev = prev.Sub(d) {
		first = prev
	}
	var out []Coord
	for c := first; c.IsInterior() && !b.At(c).Empty(); c = c.Add(d) {
		out = append(out, c)
	}
	return out
}

// keepReformsRun reports whether keeping the given points of a segment
// would leave four or more contiguous same-colored pieces on its line.
func keepReformsRun(b *Board, segment, kept []Coord) bool {
	streak := 0
	var streakColor Color
	for _, c := range segment {
		if !containsCoord(kept, c) {
			streak = 0
			continue
		}
		p := b.At(c)
		if streak > 0 && p.Color == streakColor {
			streak++
		} else {
			streak, streakColor = 1, p.Color
		}
		if streak >= 4 {
			return true
		}
	}
	return false
}
