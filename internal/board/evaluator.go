package board

import (
	"sort"

	"fiveinrow/internal/score"
)

// Evaluate scores the whole board from the searching side's
// perspective: the sum, in the Score algebra, of every board move's
// contribution along each of its four directions. This double-counts
// every run across its member moves, but the bias is uniform across
// positions and is preserved by the algebra, so it never perturbs
// comparisons between candidates.
func Evaluate(b *Board) score.Score {
	total := score.Numeric(0)
	for _, m := range b.moves {
		for _, d := range DirectionsOf(m) {
			line := b.MovesOn(d)
			total = total.Add(scoreLine(m, line))
		}
	}
	return total
}

// scoreLine scores a single move against the colinear run it sits in.
func scoreLine(m Move, line []Move) score.Score {
	sorted := make([]Move, len(line))
	copy(sorted, line)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	pos := -1
	for i, mv := range sorted {
		if mv.SameCell(m) {
			pos = i
			break
		}
	}
	if pos < 0 {
		// m isn't on this line at all (shouldn't happen: callers only
		// pass directions derived from m), treated as a no-op run.
		return score.Numeric(0)
	}

	n := 1
	rEnd := m
	var rClose *Move
	for i := pos + 1; i < len(sorted); i++ {
		if sorted[i].SameType(m) {
			n++
			rEnd = sorted[i]
			continue
		}
		c := sorted[i]
		rClose = &c
		break
	}

	lEnd := m
	var lClose *Move
	for i := pos - 1; i >= 0; i-- {
		if sorted[i].SameType(m) {
			n++
			lEnd = sorted[i]
			continue
		}
		c := sorted[i]
		lClose = &c
		break
	}

	dist := abs(lEnd.Distance(rEnd)) + 1

	if lClose != nil && rClose != nil {
		if abs(lClose.Distance(*rClose)) <= 5 {
			return score.Numeric(0)
		}
	}

	var s score.Score
	switch {
	case n >= 5 && n == dist:
		if m.IsMine() {
			return score.Win
		}
		return score.Loss
	case n >= 5:
		s = score.Numeric(1000.0 / float64(dist))
	case n >= 4:
		s = score.Numeric(220.0 / float64(dist))
	case n >= 3:
		s = score.Numeric(50.0 / float64(dist))
	case n >= 2:
		s = score.Numeric(4.0 / float64(dist))
	default:
		s = score.Numeric(float64(n) / float64(dist))
	}

	s = applyClosedEndPenalty(s, lEnd, lClose)
	s = applyClosedEndPenalty(s, rEnd, rClose)

	if m.IsMine() {
		return s
	}
	return s.Mul(-2.5)
}

// applyClosedEndPenalty discounts s when the run is closed off on one
// side within a small gap: the closer the enemy piece, the less room
// there is to extend the run to five.
func applyClosedEndPenalty(s score.Score, end Move, closing *Move) score.Score {
	if closing == nil {
		return s
	}
	gap := abs(end.Distance(*closing))
	switch {
	case gap <= 1:
		return s.Mul(0.5)
	case gap <= 2:
		return s.Mul(0.8)
	case gap <= 3:
		return s.Mul(0.99)
	default:
		return s
	}
}
