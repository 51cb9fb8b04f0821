// Package connection implements the GameConnection capability the core
// search engine consumes: registering a game, submitting a move, and
// long-polling for the opponent's reply, all against the remote
// turn-based HTTP service.
package connection

import (
	"context"
	"errors"
	"fmt"

	"fiveinrow/internal/board"
)

// Sentinel errors matching the taxonomy the core driver branches on.
// FinishedUnexpectedly and Invalid terminate the current game; ApiError
// wraps any transport-level failure; ErrRivalTimeout fires when the
// opponent doesn't move (or never connects) within the service's
// polling windows.
var (
	ErrFinishedUnexpectedly = errors.New("connection: game finished unexpectedly")
	ErrInvalid              = errors.New("connection: invalid or missing game state")
	ErrRivalTimeout         = errors.New("connection: rival timed out")
)

// ApiError wraps any transport-level failure (request build or network
// error, unreadable body, malformed JSON) so callers can unwrap to the
// underlying cause while still matching it with errors.Is against a
// shared sentinel.
type ApiError struct {
	Op  string
	Err error
}

func (e *ApiError) Error() string { return fmt.Sprintf("connection: %s: %v", e.Op, e.Err) }
func (e *ApiError) Unwrap() error { return e.Err }

// errSentinelAPI lets callers test for "some ApiError" with errors.Is.
var errSentinelAPI = errors.New("api error")

func (e *ApiError) Is(target error) bool { return target == errSentinelAPI }

// ErrAPI is the sentinel every ApiError compares equal to.
var ErrAPI = errSentinelAPI

// GameConnection is the narrow interface the core search driver needs.
// It matches engine.GameConnection structurally, keeping the core free
// of any import on this package.
type GameConnection interface {
	StartGame(ctx context.Context) (*board.Board, error)
	PutMove(ctx context.Context, m board.Move) error
	AwaitMove(ctx context.Context) (move *board.Move, winnerID string, err error)
}
