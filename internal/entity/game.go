package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-state/internal/apperror"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"

	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""

	// BoardSize is the length of one side of the board.
	BoardSize = 3
)

var (
	ErrInvalidCell        = errors.New("invalid cell index")
	ErrInvalidCoordinates = errors.New("invalid cell coordinates")
	ErrUnknownGameStatus  = errors.New("unknown game status")
	ErrCorruptHistory     = errors.New("move history does not match the board")

	WinCombos = [][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Game is the aggregate a GameState snapshot is built from.
// Board is stored row-major: the cell (x, y) lives at index BoardSize*y + x.
type Game struct {
	ID      string    `json:"id"`
	Board   [9]string `json:"board"`
	Winner  string    `json:"winner"`
	Status  string    `json:"status"`
	Turn    string    `json:"player_turn"`
	History []int     `json:"history,omitempty"`
}

func NewGame(id string) *Game {
	return &Game{
		ID:     id,
		Board:  [9]string{EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell, EmptyCell},
		Turn:   PlayerX,
		Status: StatusOngoing,
	}
}

// CellIndex converts board coordinates into a Board index.
func CellIndex(x, y int) (int, error) {
	if x < 0 || x >= BoardSize || y < 0 || y >= BoardSize {
		return 0, fmt.Errorf("%w: (%d, %d)", ErrInvalidCoordinates, x, y)
	}

	return BoardSize*y + x, nil
}

// CellCoordinates is the inverse of CellIndex.
func CellCoordinates(cell int) (int, int) {
	return cell % BoardSize, cell / BoardSize
}

func (that *Game) DetermineGameResult() string {
	for _, combo := range WinCombos {
		a, b, c := that.Board[combo[0]], that.Board[combo[1]], that.Board[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	// the game will continue until all the squares are full
	for _, cell := range that.Board {
		if cell == EmptyCell {
			return ""
		}
	}

	return PlayerTie
}

func (that *Game) UpdateGameState() {
	switch winner := that.DetermineGameResult(); winner {
	case PlayerX, PlayerO, PlayerTie:
		that.Winner = winner
		that.Status = StatusFinished
	default:
		that.Winner = ""
		that.Status = StatusOngoing
	}
}

// MakeTurn places playerMark on cell and passes the turn to the opponent.
func (that *Game) MakeTurn(playerMark string, cell int) error {
	if cell < 0 || cell >= len(that.Board) {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	if that.Turn != playerMark {
		return apperror.ErrNotYourTurn
	}

	if that.Board[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[cell] = playerMark
	that.History = append(that.History, cell)
	that.Turn = toggleMark(playerMark)

	that.UpdateGameState()

	return nil
}

// Play makes a move for whoever has the turn at coordinates (x, y).
func (that *Game) Play(x, y int) error {
	cell, err := CellIndex(x, y)
	if err != nil {
		return err
	}

	return that.MakeTurn(that.Turn, cell)
}

// Undo takes back the last move. A finished game becomes ongoing again.
func (that *Game) Undo() error {
	if len(that.History) == 0 {
		return apperror.ErrNothingToUndo
	}

	last := that.History[len(that.History)-1]
	if last < 0 || last >= len(that.Board) {
		return fmt.Errorf("%w: cell %d is off the board", ErrCorruptHistory, last)
	}

	if that.Board[last] == EmptyCell {
		return fmt.Errorf("%w: cell %d is empty", ErrCorruptHistory, last)
	}

	that.History = that.History[:len(that.History)-1]

	that.Turn = that.Board[last]
	that.Board[last] = EmptyCell

	that.UpdateGameState()

	return nil
}

// NextTurn returns the mark that moves after the current one.
func (that *Game) NextTurn() string {
	return toggleMark(that.Turn)
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsFinished():
		return apperror.ErrGameFinished
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func toggleMark(currentMark string) string {
	if currentMark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
