// Package state builds the GameState snapshot that front-end clients render.
//
// A snapshot is a plain value: the board as a row-major list of cells, the
// winner (null while nobody has won), the player whose turn is active, the
// player who moves next and an optional move log.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rocketscienceinc/tictactoe-state/internal/entity"
)

var ErrMalformedState = errors.New("malformed game state")

// Cell is a single board position.
type Cell struct {
	Text     string `json:"text"`
	Playable bool   `json:"playable"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

type GameState struct {
	ID            string  `json:"id,omitempty"`
	Cells         []Cell  `json:"cells"`
	Winner        *string `json:"winner"`
	CurrentPlayer string  `json:"currentPlayer"`
	NextTurn      string  `json:"nextTurn"`
	History       string  `json:"history,omitempty"`
}

// ForGame takes a snapshot of game. No cell is playable once the game is finished.
func ForGame(game *entity.Game) *GameState {
	cells := make([]Cell, len(game.Board))
	for i, mark := range game.Board {
		x, y := entity.CellCoordinates(i)
		cells[i] = Cell{
			Text:     mark,
			Playable: mark == entity.EmptyCell && !game.IsFinished(),
			X:        x,
			Y:        y,
		}
	}

	snapshot := &GameState{
		ID:            game.ID,
		Cells:         cells,
		CurrentPlayer: game.Turn,
		NextTurn:      game.NextTurn(),
		History:       FormatHistory(game.History),
	}

	// a draw has no winner; it shows as a finished board without playable cells
	if game.Winner == entity.PlayerX || game.Winner == entity.PlayerO {
		winner := game.Winner
		snapshot.Winner = &winner
	}

	return snapshot
}

// IsOver reports whether no move can be made, after a win or a draw.
func (that *GameState) IsOver() bool {
	if that.HasWinner() {
		return true
	}

	for _, cell := range that.Cells {
		if cell.Playable {
			return false
		}
	}

	return true
}

// FormatHistory renders a move log as comma separated cell indexes, e.g. "4,0,8".
func FormatHistory(moves []int) string {
	parts := make([]string, len(moves))
	for i, cell := range moves {
		parts[i] = strconv.Itoa(cell)
	}

	return strings.Join(parts, ",")
}

// HasWinner reports whether a player has won. It is false for a draw.
func (that *GameState) HasWinner() bool {
	return that.Winner != nil
}

func (that *GameState) String() string {
	data, err := json.Marshal(that)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}

	return string(data)
}

type rawCell struct {
	Text     *string `json:"text"`
	Playable *bool   `json:"playable"`
	X        *int    `json:"x"`
	Y        *int    `json:"y"`
}

type rawState struct {
	ID            string          `json:"id"`
	Cells         *[]rawCell      `json:"cells"`
	Winner        json.RawMessage `json:"winner"`
	CurrentPlayer *string         `json:"currentPlayer"`
	NextTurn      *string         `json:"nextTurn"`
	History       *string         `json:"history"`
}

// Parse decodes a JSON snapshot. Any value with the GameState shape is
// accepted; a missing field or a field of the wrong type is not.
func Parse(data []byte) (*GameState, error) {
	var raw rawState
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}

	if raw.Cells == nil {
		return nil, fmt.Errorf("%w: cells are missing", ErrMalformedState)
	}

	if raw.Winner == nil {
		return nil, fmt.Errorf("%w: winner is missing", ErrMalformedState)
	}

	if raw.CurrentPlayer == nil {
		return nil, fmt.Errorf("%w: currentPlayer is missing", ErrMalformedState)
	}

	if raw.NextTurn == nil {
		return nil, fmt.Errorf("%w: nextTurn is missing", ErrMalformedState)
	}

	snapshot := &GameState{
		ID:            raw.ID,
		Cells:         make([]Cell, 0, len(*raw.Cells)),
		CurrentPlayer: *raw.CurrentPlayer,
		NextTurn:      *raw.NextTurn,
	}

	// json.RawMessage keeps a literal null, which means "no winner"
	if err := json.Unmarshal(raw.Winner, &snapshot.Winner); err != nil {
		return nil, fmt.Errorf("%w: winner: %w", ErrMalformedState, err)
	}

	if raw.History != nil {
		snapshot.History = *raw.History
	}

	for i, cell := range *raw.Cells {
		if cell.Text == nil || cell.Playable == nil || cell.X == nil || cell.Y == nil {
			return nil, fmt.Errorf("%w: cell %d is incomplete", ErrMalformedState, i)
		}

		snapshot.Cells = append(snapshot.Cells, Cell{
			Text:     *cell.Text,
			Playable: *cell.Playable,
			X:        *cell.X,
			Y:        *cell.Y,
		})
	}

	return snapshot, nil
}
