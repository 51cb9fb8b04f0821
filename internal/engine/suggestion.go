// Package engine implements the suggestion tree and the bounded-beam
// alternating minimax search driver built on top of internal/board.
package engine

import (
	"errors"
	"fmt"

	"fiveinrow/internal/board"
	"fiveinrow/internal/score"
)

// ErrSuggestionComputationError marks a graft whose path does not match
// any existing child in the tree — an internal invariant violation.
var ErrSuggestionComputationError = errors.New("engine: suggestion graft path not found")

// ErrNoSuggestionAvailable is returned when a search produced no
// suggestions at all.
var ErrNoSuggestionAvailable = errors.New("engine: no suggestion available")

// Suggestion is one node of the search tree: a candidate move, the
// evaluator's shallow score for the position right after it, and the
// suggestions available to whoever replies. Each node owns its children
// exclusively; there is no sharing across branches.
type Suggestion struct {
	Move         board.Move
	ShallowScore score.Score
	Children     []*Suggestion
	Depth        int

	hasDeep  bool
	deepVal  score.Score
}

// NewSuggestion builds a leaf suggestion: depth 0, no children, no deep
// score (the deep score reads back as the shallow score until children
// are attached).
func NewSuggestion(move board.Move, shallow score.Score) *Suggestion {
	return &Suggestion{Move: move, ShallowScore: shallow}
}

// DeepScore returns the back-propagated score when children have been
// attached, or the shallow score for a leaf.
func (s *Suggestion) DeepScore() score.Score {
	if s.hasDeep {
		return s.deepVal
	}
	return s.ShallowScore
}

// IsTerminal reports whether the node's current best-known score is a
// decided Win or Loss.
func (s *Suggestion) IsTerminal() bool {
	return s.DeepScore().IsFinished()
}

// Less orders suggestions by deep-when-available-else-shallow score.
func (s *Suggestion) Less(other *Suggestion) bool {
	return s.DeepScore().Less(other.DeepScore())
}

// Extend attaches newChildren at the node reached by walking path
// downward from s. An empty path attaches directly to s and recomputes
// s's depth and deep score; otherwise the first element of path must
// name an existing child, the remainder of path is applied recursively
// to it, and s itself is recomputed afterward so the graft's effect on
// depth and deep score propagates back up to s.
func (s *Suggestion) Extend(path []board.Move, newChildren []*Suggestion) error {
	if len(path) == 0 {
		s.Children = append(s.Children, newChildren...)
		s.recompute()
		return nil
	}
	head, tail := path[0], path[1:]
	child := findChild(s.Children, head)
	if child == nil {
		return fmt.Errorf("%w: move %v not found among children", ErrSuggestionComputationError, head)
	}
	if err := child.Extend(tail, newChildren); err != nil {
		return err
	}
	s.recompute()
	return nil
}

func (s *Suggestion) recompute() {
	depth := 0
	for _, c := range s.Children {
		if c.Depth+1 > depth {
			depth = c.Depth + 1
		}
	}
	if len(s.Children) > 0 && depth < 1 {
		depth = 1
	}
	s.Depth = depth

	if len(s.Children) == 0 {
		s.hasDeep = false
		return
	}
	best := s.Children[0].DeepScore()
	for _, c := range s.Children[1:] {
		cs := c.DeepScore()
		if s.Move.IsMine() {
			best = score.Min(best, cs)
		} else {
			best = score.Max(best, cs)
		}
	}
	s.deepVal = best
	s.hasDeep = true
}

func findChild(children []*Suggestion, m board.Move) *Suggestion {
	for _, c := range children {
		if c.Move == m {
			return c
		}
	}
	return nil
}

// ExtendForest grafts newChildren onto the node reached by walking path
// through a root-level forest: the forest itself has no single owning
// node, so the first element of path selects the root suggestion and
// the rest is handled by Suggestion.Extend.
func ExtendForest(forest []*Suggestion, path []board.Move, newChildren []*Suggestion) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path has no forest root to graft onto", ErrSuggestionComputationError)
	}
	head, tail := path[0], path[1:]
	root := findChild(forest, head)
	if root == nil {
		return fmt.Errorf("%w: move %v not found among top suggestions", ErrSuggestionComputationError, head)
	}
	return root.Extend(tail, newChildren)
}

// FindRoot returns the root-level suggestion whose move equals m, or
// nil if none matches.
func FindRoot(forest []*Suggestion, m board.Move) *Suggestion {
	return findChild(forest, m)
}

// SortDescending sorts forest by descending deep-or-shallow score
// (best suggestion first) — used when it is the root player's own turn.
func SortDescending(forest []*Suggestion) {
	sortSuggestions(forest, true)
}

// SortAscending sorts forest by ascending deep-or-shallow score (worst
// for the root player first) — used when it is the opponent's turn.
func SortAscending(forest []*Suggestion) {
	sortSuggestions(forest, false)
}

func sortSuggestions(forest []*Suggestion, descending bool) {
	// Simple insertion sort: forests here are beam-sized (single
	// digits), so this stays well within budget and keeps equal-score
	// entries in their original relative order.
	for i := 1; i < len(forest); i++ {
		j := i
		for j > 0 {
			a, b := forest[j-1], forest[j]
			swap := a.Less(b)
			if !descending {
				swap = b.Less(a)
			}
			if !swap {
				break
			}
			forest[j-1], forest[j] = forest[j], forest[j-1]
			j--
		}
	}
}
