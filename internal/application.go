package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-state/internal/config"
	"github.com/rocketscienceinc/tictactoe-state/internal/repository"
	"github.com/rocketscienceinc/tictactoe-state/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-state/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-state/transport/rest"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if conf.Redis.Host == "" || conf.Redis.Port == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, storage.RedisOptions{
		Addr:     conf.Redis.GetRedisAddr(),
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage, conf.GameTTL)
	gameManager := usecase.NewGameManager(logger, gameRepo)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)
	if err = rest.Start(ctx, conf.HTTPPort, rest.NewRouter(logger, gameManager), conf.ShutdownTimeout); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
