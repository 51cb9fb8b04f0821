package board

import "fmt"

// IncorrectMoveError is returned when a move targets an already-occupied
// cell.
type IncorrectMoveError struct {
	Move Move
}

func (e *IncorrectMoveError) Error() string {
	return fmt.Sprintf("incorrect move: cell (%d,%d) is already occupied", e.Move.X, e.Move.Y)
}
