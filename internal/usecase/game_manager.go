package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-state/internal/entity"
	"github.com/rocketscienceinc/tictactoe-state/internal/state"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error)
}

// GameManager applies player actions to stored games and answers with GameState snapshots.
type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo

	newID func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		newID:    uuid.NewString,
	}
}

func (that *GameManager) NewGame(ctx context.Context) (*state.GameState, error) {
	game := entity.NewGame(that.newID())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return state.ForGame(game), nil
}

func (that *GameManager) GetState(ctx context.Context, id string) (*state.GameState, error) {
	game, err := that.getGameByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return state.ForGame(game), nil
}

// Play makes a move for the player whose turn it is at (x, y).
func (that *GameManager) Play(ctx context.Context, id string, x, y int) (*state.GameState, error) {
	log := that.logger.With("method", "Play", "gameID", id)

	var mark string
	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		mark = game.Turn
		return game.Play(x, y)
	})
	if err != nil {
		return nil, fmt.Errorf("failed make turn: %w", err)
	}

	snapshot := state.ForGame(game)

	log.Debug("turn made", "player", mark, "x", x, "y", y)
	if game.IsFinished() {
		log.Info("game finished", "winner", snapshot.Winner, "draw", !snapshot.HasWinner())
	}

	return snapshot, nil
}

// Undo takes back the last move of the game.
func (that *GameManager) Undo(ctx context.Context, id string) (*state.GameState, error) {
	game, err := that.gameRepo.Update(ctx, id, func(game *entity.Game) error {
		return game.Undo()
	})
	if err != nil {
		return nil, fmt.Errorf("failed undo turn: %w", err)
	}

	that.logger.Debug("turn undone", "gameID", id, "moves", len(game.History))

	return state.ForGame(game), nil
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "gameID", id)

	return nil
}

func (that *GameManager) getGameByID(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}
