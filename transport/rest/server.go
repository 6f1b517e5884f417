package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter exposes the game API:
//
//	GET    /ping
//	POST   /games
//	GET    /games/{id}
//	POST   /games/{id}/play?x=&y=
//	POST   /games/{id}/undo
//	DELETE /games/{id}
func NewRouter(logger *slog.Logger, games gameUseCase) http.Handler {
	handlers := &gameHandlers{
		logger: logger.With("component", "rest"),
		games:  games,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/ping", pingHandler)

	router.Route("/games", func(r chi.Router) {
		r.Post("/", handlers.createGame)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.getGame)
			r.Delete("/", handlers.deleteGame)
			r.Post("/play", handlers.play)
			r.Post("/undo", handlers.undo)
		})
	})

	return router
}

// Start serves handler until ctx is canceled, then shuts the server down gracefully.
func Start(ctx context.Context, port string, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
