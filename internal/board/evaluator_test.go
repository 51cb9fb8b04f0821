package board

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fiveinrow/internal/score"
)

// buildRow places a stone at (x, y) for each x in xs: Mine where mine[x]
// is set, Rival otherwise.
func buildRow(y int, mine map[int]bool, xs ...int) *Board {
	var moves []Move
	for _, x := range xs {
		if mine[x] {
			moves = append(moves, NewMine(x, y))
		} else {
			moves = append(moves, NewRival(x, y))
		}
	}
	return FromMoves(moves)
}

func allMine(xs ...int) map[int]bool {
	m := map[int]bool{}
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func TestEvaluateOpenRunsAreMonotonic(t *testing.T) {
	// A lone stone scores lowest; each stone appended to an open run
	// scores strictly higher, until five in a row wins outright.
	one := Evaluate(buildRow(0, allMine(0), 0))
	two := Evaluate(buildRow(0, allMine(0, 1), 0, 1))
	three := Evaluate(buildRow(0, allMine(0, 1, 2), 0, 1, 2))
	four := Evaluate(buildRow(0, allMine(0, 1, 2, 3), 0, 1, 2, 3))
	five := Evaluate(buildRow(0, allMine(0, 1, 2, 3, 4), 0, 1, 2, 3, 4))

	assert.True(t, one.Less(two))
	assert.True(t, two.Less(three))
	assert.True(t, three.Less(four))
	assert.True(t, four.Less(five))
	assert.True(t, five.IsWin())
}

func TestScoreLineClosedOneEndIsWorseThanOpen(t *testing.T) {
	open := scoreLine(NewMine(0, 0), []Move{NewMine(0, 0), NewMine(0, 1), NewMine(0, 2)})
	closedOneEnd := scoreLine(NewMine(0, 0), []Move{
		NewMine(0, 0), NewMine(0, 1), NewMine(0, 2), NewRival(0, 3),
	})
	assert.True(t, closedOneEnd.Less(open))
}

func TestScoreLineEnclosedRunIsNeutralized(t *testing.T) {
	// A run boxed in tightly on both ends counts for nothing: it can
	// never grow to five.
	enclosed := scoreLine(NewMine(0, 1), []Move{
		NewRival(0, 0), NewMine(0, 1), NewMine(0, 2), NewRival(0, 3),
	})
	assert.True(t, enclosed.Equal(score.Numeric(0)))
}

func TestScoreLineRivalRunMirrorsMine(t *testing.T) {
	mine := scoreLine(NewMine(0, 0), []Move{NewMine(0, 0), NewMine(0, 1), NewMine(0, 2)})
	rival := scoreLine(NewRival(0, 0), []Move{NewRival(0, 0), NewRival(0, 1), NewRival(0, 2)})
	mineVal, _ := mine.Value()
	rivalVal, _ := rival.Value()
	assert.True(t, mineVal > 0)
	assert.True(t, rivalVal < 0)
}

func TestScoreLineFiveInARowIsTerminal(t *testing.T) {
	mineFive := scoreLine(NewMine(2, 0), []Move{
		NewMine(0, 0), NewMine(1, 0), NewMine(2, 0), NewMine(3, 0), NewMine(4, 0),
	})
	assert.True(t, mineFive.IsWin())

	rivalFive := scoreLine(NewRival(2, 0), []Move{
		NewRival(0, 0), NewRival(1, 0), NewRival(2, 0), NewRival(3, 0), NewRival(4, 0),
	})
	assert.True(t, rivalFive.IsLoss())
}

func TestScoreLineInternalOpponentStoneHurtsTheRun(t *testing.T) {
	unbroken := scoreLine(NewMine(0, 0), []Move{NewMine(0, 0), NewMine(0, 1), NewMine(0, 2), NewMine(0, 3)})
	broken := scoreLine(NewMine(0, 0), []Move{NewMine(0, 0), NewMine(0, 1), NewRival(0, 2), NewMine(0, 3)})
	assert.True(t, broken.Less(unbroken))
}

func TestEvaluateEmptyBoardIsNeutral(t *testing.T) {
	s := Evaluate(New())
	assert.True(t, s.Equal(score.Numeric(0)))
}
