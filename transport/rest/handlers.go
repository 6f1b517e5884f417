package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe-state/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-state/internal/entity"
	"github.com/rocketscienceinc/tictactoe-state/internal/state"
)

var errBadQuery = errors.New("bad query parameter")

type gameUseCase interface {
	NewGame(ctx context.Context) (*state.GameState, error)
	GetState(ctx context.Context, id string) (*state.GameState, error)
	Play(ctx context.Context, id string, x, y int) (*state.GameState, error)
	Undo(ctx context.Context, id string) (*state.GameState, error)
	DeleteGame(ctx context.Context, id string) error
}

type gameHandlers struct {
	logger *slog.Logger
	games  gameUseCase
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *gameHandlers) createGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.games.NewGame(r.Context())
	if err != nil {
		that.writeError(w, "createGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, snapshot)
}

func (that *gameHandlers) getGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.games.GetState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "getGame", err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

// play handles POST /games/{id}/play?x=&y=.
func (that *gameHandlers) play(w http.ResponseWriter, r *http.Request) {
	x, err := queryInt(r, "x")
	if err != nil {
		that.writeError(w, "play", err)
		return
	}

	y, err := queryInt(r, "y")
	if err != nil {
		that.writeError(w, "play", err)
		return
	}

	snapshot, err := that.games.Play(r.Context(), chi.URLParam(r, "id"), x, y)
	if err != nil {
		that.writeError(w, "play", err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *gameHandlers) undo(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.games.Undo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "undo", err)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

func (that *gameHandlers) deleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.games.DeleteGame(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "deleteGame", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *gameHandlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}

func (that *gameHandlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusFor(err)

	log := that.logger.With("method", method)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "error", err)
		that.writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
		return
	}

	log.Debug("request rejected", "status", status, "error", err)
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadQuery),
		errors.Is(err, entity.ErrInvalidCoordinates),
		errors.Is(err, entity.ErrInvalidCell):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrCellOccupied),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrNothingToUndo),
		errors.Is(err, apperror.ErrConcurrentUpdate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", errBadQuery, name)
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadQuery, name)
	}

	return value, nil
}
