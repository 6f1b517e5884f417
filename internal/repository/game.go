package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-state/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-state/internal/entity"
)

const (
	gameKeyPrefix = "game:"

	maxUpdateAttempts = 5
)

type GameRepository interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
	Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error)
}

type dbGame struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameRepository stores games as JSON. Every write refreshes the key's TTL;
// a zero ttl keeps games forever.
func NewGameRepository(client *redis.Client, ttl time.Duration) GameRepository {
	return &dbGame{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbGame) CreateOrUpdate(ctx context.Context, game *entity.Game) error {
	gameJSON, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.client.Set(ctx, gameKey(game.ID), gameJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *dbGame) GetByID(ctx context.Context, id string) (*entity.Game, error) {
	response, err := that.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	var existingGame entity.Game
	if err = json.Unmarshal(response, &existingGame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	return &existingGame, nil
}

// Update loads the game, applies the change and writes it back in a MULTI
// guarded by WATCH. A write made by someone else in between makes the
// transaction fail; the change is then replayed on the fresh game.
func (that *dbGame) Update(ctx context.Context, id string, apply func(game *entity.Game) error) (*entity.Game, error) {
	key := gameKey(id)

	var updated *entity.Game
	txf := func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return apperror.ErrGameNotFound
		}

		if err != nil {
			return fmt.Errorf("failed to get game by id: %w", err)
		}

		var game entity.Game
		if err = json.Unmarshal(response, &game); err != nil {
			return fmt.Errorf("failed to unmarshal game: %w", err)
		}

		if err = apply(&game); err != nil {
			return err
		}

		gameJSON, err := json.Marshal(&game)
		if err != nil {
			return fmt.Errorf("could not marshal game: %w", err)
		}

		if _, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, gameJSON, that.ttl)
			return nil
		}); err != nil {
			return err
		}

		updated = &game

		return nil
	}

	for range maxUpdateAttempts {
		err := that.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return updated, nil
	}

	return nil, apperror.ErrConcurrentUpdate
}

func (that *dbGame) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, gameKey(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete game by id: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrGameNotFound
	}

	return nil
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}
