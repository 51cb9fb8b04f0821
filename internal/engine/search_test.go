package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fiveinrow/internal/board"
)

func newEngineFromMoves(moves []board.Move) *Engine {
	return New(board.FromMoves(moves), nil)
}

func TestSearchScenario1BlocksFourInARow(t *testing.T) {
	moves := []board.Move{
		board.NewRival(0, 0), board.NewMine(0, -1),
		board.NewRival(0, 1), board.NewMine(0, -2),
		board.NewRival(0, 2), board.NewMine(0, -3),
		board.NewRival(0, 3),
	}
	e := newEngineFromMoves(moves)
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Equal(t, board.NewMine(0, 4), suggested.Move)
}

func TestSearchScenario2ExtendsOwnThree(t *testing.T) {
	moves := []board.Move{
		board.NewMine(0, 0), board.NewRival(0, 1),
		board.NewMine(1, 0), board.NewRival(0, 2),
		board.NewMine(2, 0), board.NewRival(0, 3),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 0))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Equal(t, board.NewMine(-1, 0), suggested.Move)
}

func TestSearchScenario3DepthOne(t *testing.T) {
	moves := []board.Move{
		board.NewMine(0, 0), board.NewRival(-1, -1),
		board.NewMine(-1, 1), board.NewRival(1, -1),
		board.NewMine(0, -1), board.NewRival(0, -2),
		board.NewMine(-1, -2), board.NewRival(-1, -3),
		board.NewMine(-2, 0), board.NewRival(2, 0),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 1))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Equal(t, board.NewMine(-2, -4), suggested.Move)
}

func TestSearchScenario4DepthTwo(t *testing.T) {
	moves := []board.Move{
		board.NewRival(0, 0), board.NewMine(-1, -1),
		board.NewRival(-1, 0), board.NewMine(-2, 0),
		board.NewRival(-3, 1), board.NewMine(-2, -1),
		board.NewRival(-3, -1), board.NewMine(-2, 1),
		board.NewRival(-2, -2), board.NewMine(-2, 2),
		board.NewRival(-2, 3), board.NewMine(-1, 2),
		board.NewRival(-3, 0), board.NewMine(-3, 2),
		board.NewRival(0, 2), board.NewMine(-4, 2),
		board.NewRival(-5, 2), board.NewMine(-3, -3),
		board.NewRival(-4, 0), board.NewMine(-1, -3),
		board.NewRival(-5, 1), board.NewMine(-6, 2),
		board.NewRival(-5, 3), board.NewMine(-5, 4),
		board.NewRival(-6, 5), board.NewMine(-5, 0),
		board.NewRival(0, 1),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 2))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Contains(t, []board.Move{board.NewMine(0, -1), board.NewMine(0, 3)}, suggested.Move)
}

func TestSearchScenario5DepthThree(t *testing.T) {
	moves := []board.Move{
		board.NewMine(0, 0), board.NewRival(0, 1),
		board.NewMine(-1, -1), board.NewRival(0, 2),
		board.NewMine(0, 3), board.NewRival(-1, 2),
		board.NewMine(-1, 3), board.NewRival(1, 2),
		board.NewMine(2, 2), board.NewRival(1, 1),
		board.NewMine(1, 0), board.NewRival(-2, 2),
		board.NewMine(-3, 2), board.NewRival(-2, 1),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 3))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Equal(t, board.NewMine(-1, 1), suggested.Move)
}

func TestSearchScenario6DepthTwo(t *testing.T) {
	moves := []board.Move{
		board.NewMine(0, 0), board.NewRival(1, -1),
		board.NewMine(0, -1), board.NewRival(0, -2),
		board.NewMine(0, 1), board.NewRival(0, 2),
		board.NewMine(1, 0), board.NewRival(2, 0),
		board.NewMine(-1, -3), board.NewRival(3, 1),
		board.NewMine(4, 2), board.NewRival(1, 1),
		board.NewMine(3, -1), board.NewRival(-2, 4),
		board.NewMine(-1, 3), board.NewRival(2, -1),
		board.NewMine(-1, -2), board.NewRival(2, 1),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 2))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.Contains(t, []board.Move{
		board.NewMine(2, -2), board.NewMine(2, 2), board.NewMine(-2, -3), board.NewMine(-3, -4),
	}, suggested.Move)
}

func TestSearchPlaysImmediateWinningMoveOverNumericCandidates(t *testing.T) {
	// An open four plus a cluster of rival stones elsewhere, so the
	// beam also contains ordinary Numeric-scored candidates alongside
	// the Win. Abs(Loss) must equal Win for the keep-margin test in
	// SingleLevel to retain the winning candidate instead of pruning it.
	moves := []board.Move{
		board.NewMine(0, 0), board.NewRival(5, 5),
		board.NewMine(0, 1), board.NewRival(5, 6),
		board.NewMine(0, 2), board.NewRival(5, 7),
		board.NewMine(0, 3), board.NewRival(5, 8),
	}
	e := newEngineFromMoves(moves)
	require.NoError(t, e.ComputeSuggestions(true, nil, 0))
	suggested, err := e.SuggestMove(true)
	require.NoError(t, err)
	assert.True(t, suggested.ShallowScore.IsWin())
	assert.Contains(t, []board.Move{board.NewMine(0, 4), board.NewMine(0, -1)}, suggested.Move)
}

func TestAddMoveReusesSubtreeAcrossRealMoves(t *testing.T) {
	e := newEngineFromMoves(nil)
	require.NoError(t, e.ComputeSuggestions(true, nil, 1))
	require.NotEmpty(t, e.TopSuggestions)

	best := e.TopSuggestions[0]
	expectedChildren := best.Children
	require.NoError(t, e.AddMove(best.Move))
	assert.Equal(t, len(expectedChildren), len(e.TopSuggestions))
	assert.Equal(t, 1, e.Board.Len())
}

func TestAddMoveWithNoMatchingSubtreeResetsForest(t *testing.T) {
	e := newEngineFromMoves(nil)
	require.NoError(t, e.ComputeSuggestions(true, nil, 0))
	require.NoError(t, e.AddMove(board.NewRival(50, 50)))
	assert.Empty(t, e.TopSuggestions)
}
