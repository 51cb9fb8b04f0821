package engine

import (
	"context"

	"fiveinrow/internal/board"
	"fiveinrow/internal/score"
)

// GameConnection is the narrow capability the search driver needs from
// the outside world: register a game, transmit a move, and wait for the
// next event. The core never sees HTTP, JSON, or rate limits — only
// this interface.
type GameConnection interface {
	StartGame(ctx context.Context) (*board.Board, error)
	PutMove(ctx context.Context, m board.Move) error
	// AwaitMove blocks until it is our turn or the game has ended. A
	// nil move with a non-empty winnerID means the game is over; a
	// non-nil move is the opponent's move to apply before searching.
	AwaitMove(ctx context.Context) (move *board.Move, winnerID string, err error)
}

// defaultBeamBase is the beam_base used when an Engine is built without
// an explicit override (New's default, and the config package's default
// for FIVEINROW_BEAM_BASE).
const defaultBeamBase = 6

// Engine is the bounded-beam alternating minimax search driver. It owns
// a board, the root forest of suggestions grown across real moves, and
// (optionally) a connection to drive a full game loop.
type Engine struct {
	Board          *board.Board
	TopSuggestions []*Suggestion
	Connection     GameConnection

	// BeamBase is the beam_base term in beamSize's formula
	// (max(2*depth, BeamBase) - 4). New sets it to defaultBeamBase;
	// callers may override it directly.
	BeamBase int
}

// New builds an Engine over b. conn may be nil for pure offline search
// (tests, scenario checks) since only a driver's game loop uses it.
func New(b *board.Board, conn GameConnection) *Engine {
	return &Engine{Board: b, Connection: conn, BeamBase: defaultBeamBase}
}

// beamSize implements the empirical schedule B = max(2*depth, BeamBase)
// - 4, clamped to at least 1. Keep the formula as stated: it is tuned
// against fixed end-to-end scenarios, not a general heuristic.
func (e *Engine) beamSize(depth int) int {
	base := e.BeamBase
	if base == 0 {
		base = defaultBeamBase
	}
	b := 2 * depth
	if b < base {
		b = base
	}
	b -= 4
	if b < 1 {
		b = 1
	}
	return b
}

// SingleLevel scores every candidate move available after prefix has
// been applied, then prunes to a beam of near-optimal candidates from
// the optimiser's point of view (forMe or the opponent's). depth is the
// number of plies still to search below this level and only feeds the
// beam-size formula, not the recursion itself.
func (e *Engine) SingleLevel(forMe bool, prefix []board.Move, depth int) ([]*Suggestion, error) {
	base := e.Board.Clone()
	for _, m := range prefix {
		if err := base.Apply(m); err != nil {
			return nil, err
		}
	}

	candidates := base.Candidates(forMe)
	suggestions := make([]*Suggestion, 0, len(candidates))
	for _, cand := range candidates {
		trial := base.Clone()
		if err := trial.Apply(cand); err != nil {
			continue
		}
		s := board.Evaluate(trial)
		suggestions = append(suggestions, NewSuggestion(cand, s))
	}
	if len(suggestions) == 0 {
		return suggestions, nil
	}

	hi := suggestions[0].ShallowScore
	lo := suggestions[0].ShallowScore
	for _, s := range suggestions[1:] {
		if forMe {
			hi = score.Max(hi, s.ShallowScore)
			lo = score.Min(lo, s.ShallowScore)
		} else {
			hi = score.Min(hi, s.ShallowScore)
			lo = score.Max(lo, s.ShallowScore)
		}
	}

	if forMe {
		SortDescending(suggestions)
	} else {
		SortAscending(suggestions)
	}

	margin := lo.Sub(hi).Abs().Mul(0.5)
	kept := suggestions[:0:0]
	for _, s := range suggestions {
		if s.ShallowScore.Sub(hi).Abs().LessOrEqual(margin) {
			kept = append(kept, s)
		}
	}

	if b := e.beamSize(depth); len(kept) > b {
		kept = kept[:b]
	}
	return kept, nil
}

// Search performs the recursive bounded-beam minimax walk: a single
// level of candidates, then — for every non-terminal candidate — a
// recursive search with the optimiser flipped, grafted onto that
// candidate's children, finishing with a re-sort by deep score.
func (e *Engine) Search(forMe bool, prefix []board.Move, depth int) ([]*Suggestion, error) {
	xs, err := e.SingleLevel(forMe, prefix, depth)
	if err != nil {
		return nil, err
	}

	if depth > 0 {
		for _, x := range xs {
			if x.IsTerminal() {
				continue
			}
			childPrefix := make([]board.Move, len(prefix), len(prefix)+1)
			copy(childPrefix, prefix)
			childPrefix = append(childPrefix, x.Move)

			children, err := e.Search(!forMe, childPrefix, depth-1)
			if err != nil {
				return nil, err
			}
			if err := x.Extend(nil, children); err != nil {
				return nil, err
			}
		}
	}

	if forMe {
		SortDescending(xs)
	} else {
		SortAscending(xs)
	}
	return xs, nil
}

// ComputeSuggestions runs a search and either replaces the root forest
// (prefix empty) or grafts the result under the existing forest at
// prefix.
func (e *Engine) ComputeSuggestions(forMe bool, prefix []board.Move, depth int) error {
	suggestions, err := e.Search(forMe, prefix, depth)
	if err != nil {
		return err
	}
	if len(prefix) == 0 {
		e.TopSuggestions = suggestions
		return nil
	}
	return ExtendForest(e.TopSuggestions, prefix, suggestions)
}

// SuggestMove returns the best root-level suggestion for forMe,
// computing a zero-depth forest first if none exists yet.
func (e *Engine) SuggestMove(forMe bool) (*Suggestion, error) {
	if len(e.TopSuggestions) == 0 {
		if err := e.ComputeSuggestions(forMe, nil, 0); err != nil {
			return nil, err
		}
	}
	if len(e.TopSuggestions) == 0 {
		return nil, ErrNoSuggestionAvailable
	}
	return e.TopSuggestions[0], nil
}

// AddMove applies a real move (ours or the opponent's) to the board and
// reuses the subtree already computed under it, if any, as the new
// root forest — discarding every other branch.
func (e *Engine) AddMove(m board.Move) error {
	root := FindRoot(e.TopSuggestions, m)
	if root != nil {
		e.TopSuggestions = root.Children
	} else {
		e.TopSuggestions = nil
	}
	return e.Board.Apply(m)
}

// DefaultSearchDepth is the recommended lookahead a driver should use
// when the caller does not override it.
const DefaultSearchDepth = 6
