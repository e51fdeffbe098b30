package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"tengoku-tracker/internal/config"
	"tengoku-tracker/internal/constants"
	fxmodules "tengoku-tracker/internal/fx"
	"tengoku-tracker/internal/queue"
	"tengoku-tracker/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	handler http.Handler,
	cfg *config.Config,
	db *sql.DB,
	redisClient *redis.Client,
	consumer *queue.Consumer,
	matches *service.MatchService,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if consumer != nil {
				if err := consumer.Start(); err != nil {
					return err
				}
			}

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
			}

			if consumer != nil {
				if err := consumer.Stop(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("error stopping amqp consumer")
				}
			}

			// announcements still in flight get the rest of the shutdown window
			if err := matches.Wait(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("pending match announcements abandoned")
			}

			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing redis connection")
				}
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
