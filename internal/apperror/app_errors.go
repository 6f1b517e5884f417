package apperror

import "errors"

var (
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrNothingToUndo = errors.New("no moves to undo")
	ErrGameNotFound  = errors.New("game not found")

	ErrConcurrentUpdate = errors.New("game was changed by another request")
)
