package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-state/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-state/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

// Update hands the game configured for id to apply, mimicking one successful transaction.
func (that *mockGameRepo) Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error) {
	args := that.Called(ctx, id)
	if err := args.Error(1); err != nil {
		return nil, err
	}

	game, _ := args.Get(0).(*entity.Game)
	if err := apply(game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestManager(t *testing.T) (*GameManager, *mockGameRepo) {
	t.Helper()

	repo := &mockGameRepo{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	manager := NewGameManager(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
	manager.newID = func() string { return "game-1" }

	return manager, repo
}

func TestGameManager_NewGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates and stores a fresh game", func(t *testing.T) {
		// Given: a repository that accepts writes
		manager, repo := newTestManager(t)
		repo.On("CreateOrUpdate", ctx, entity.NewGame("game-1")).Return(nil).Once()

		// When: a new game is requested
		snapshot, err := manager.NewGame(ctx)

		// Then: the snapshot describes an empty board with X to move
		require.NoError(t, err)
		assert.Equal(t, "game-1", snapshot.ID)
		assert.Len(t, snapshot.Cells, 9)
		assert.Nil(t, snapshot.Winner)
		assert.Equal(t, entity.PlayerX, snapshot.CurrentPlayer)
		assert.Equal(t, entity.PlayerO, snapshot.NextTurn)
	})

	t.Run("Default IDs are unique", func(t *testing.T) {
		manager := NewGameManager(slog.New(slog.NewTextHandler(io.Discard, nil)), &mockGameRepo{})

		assert.NotEqual(t, manager.newID(), manager.newID())
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Game")).Return(errRedisDown).Once()

		snapshot, err := manager.NewGame(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, snapshot)
	})
}

func TestGameManager_GetState(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the snapshot of a stored game", func(t *testing.T) {
		// Given: a stored game where X took the centre
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		require.NoError(t, game.Play(1, 1))
		repo.On("GetByID", ctx, "game-1").Return(game, nil).Once()

		// When: asking for its state
		snapshot, err := manager.GetState(ctx, "game-1")

		// Then: the snapshot shows the move and O to play
		require.NoError(t, err)
		assert.Equal(t, "X", snapshot.Cells[4].Text)
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.Equal(t, "4", snapshot.History)
	})

	t.Run("Returns ErrGameNotFound for unknown games", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("GetByID", ctx, "missing").Return(nil, apperror.ErrGameNotFound).Once()

		snapshot, err := manager.GetState(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrGameNotFound)
		assert.Nil(t, snapshot)
	})
}

func TestGameManager_Play(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies the move inside an update", func(t *testing.T) {
		// Given: a fresh stored game
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		// When: X plays the top-right corner
		snapshot, err := manager.Play(ctx, "game-1", 2, 0)

		// Then: the corner holds X and it is O's turn
		require.NoError(t, err)
		assert.Equal(t, "X", snapshot.Cells[2].Text)
		assert.False(t, snapshot.Cells[2].Playable)
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.Equal(t, entity.PlayerX, snapshot.NextTurn)
	})

	t.Run("Reports the winner of the final move", func(t *testing.T) {
		// Given: X needs one more move in the top row
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		for _, cell := range []int{0, 3, 1, 4} {
			require.NoError(t, game.MakeTurn(game.Turn, cell))
		}
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		// When: X completes the row
		snapshot, err := manager.Play(ctx, "game-1", 2, 0)

		// Then: the snapshot names X as winner
		require.NoError(t, err)
		require.NotNil(t, snapshot.Winner)
		assert.Equal(t, entity.PlayerX, *snapshot.Winner)
	})

	t.Run("Draw ends with a null winner", func(t *testing.T) {
		// Given: one empty cell left and no line possible
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		for _, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6} {
			require.NoError(t, game.MakeTurn(game.Turn, cell))
		}
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		// When: X fills the last cell
		snapshot, err := manager.Play(ctx, "game-1", 2, 2)

		// Then: the game is over without a winner
		require.NoError(t, err)
		assert.Nil(t, snapshot.Winner)
		assert.True(t, snapshot.IsOver())
	})

	t.Run("Passes rule violations through", func(t *testing.T) {
		// Given: the centre is taken
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		require.NoError(t, game.Play(1, 1))
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		// When: O plays the centre too
		snapshot, err := manager.Play(ctx, "game-1", 1, 1)

		// Then: ErrCellOccupied is returned
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Nil(t, snapshot)
		repo.AssertNotCalled(t, "CreateOrUpdate", mock.Anything, mock.Anything)
	})

	t.Run("Returns error when the update keeps conflicting", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("Update", ctx, "game-1").Return(nil, apperror.ErrConcurrentUpdate).Once()

		_, err := manager.Play(ctx, "game-1", 0, 0)

		require.ErrorIs(t, err, apperror.ErrConcurrentUpdate)
	})

	t.Run("Returns error when storage fails", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("Update", ctx, "game-1").Return(nil, errRedisDown).Once()

		_, err := manager.Play(ctx, "game-1", 0, 0)

		require.ErrorIs(t, err, errRedisDown)
	})
}

func TestGameManager_Undo(t *testing.T) {
	ctx := context.Background()

	t.Run("Reverts the last move", func(t *testing.T) {
		// Given: X and O have both moved
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		require.NoError(t, game.Play(0, 0))
		require.NoError(t, game.Play(1, 0))
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		// When: undoing
		snapshot, err := manager.Undo(ctx, "game-1")

		// Then: O's move is gone and O is to play again
		require.NoError(t, err)
		assert.Empty(t, snapshot.Cells[1].Text)
		assert.True(t, snapshot.Cells[1].Playable)
		assert.Equal(t, entity.PlayerO, snapshot.CurrentPlayer)
		assert.Equal(t, "0", snapshot.History)
	})

	t.Run("Returns ErrNothingToUndo on a fresh game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("Update", ctx, "game-1").Return(entity.NewGame("game-1"), nil).Once()

		_, err := manager.Undo(ctx, "game-1")

		require.ErrorIs(t, err, apperror.ErrNothingToUndo)
	})

	t.Run("Returns ErrCorruptHistory for a damaged log", func(t *testing.T) {
		manager, repo := newTestManager(t)
		game := entity.NewGame("game-1")
		game.History = []int{12}
		repo.On("Update", ctx, "game-1").Return(game, nil).Once()

		_, err := manager.Undo(ctx, "game-1")

		require.ErrorIs(t, err, entity.ErrCorruptHistory)
	})
}

func TestGameManager_DeleteGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the stored game", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("DeleteByID", ctx, "game-1").Return(nil).Once()

		require.NoError(t, manager.DeleteGame(ctx, "game-1"))
	})

	t.Run("Passes ErrGameNotFound through", func(t *testing.T) {
		manager, repo := newTestManager(t)
		repo.On("DeleteByID", ctx, "missing").Return(apperror.ErrGameNotFound).Once()

		require.ErrorIs(t, manager.DeleteGame(ctx, "missing"), apperror.ErrGameNotFound)
	})
}
