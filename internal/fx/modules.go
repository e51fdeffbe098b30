package fx

import (
	"database/sql"
	"tengoku-tracker/internal/api"
	"tengoku-tracker/internal/cache"
	"tengoku-tracker/internal/config"
	"tengoku-tracker/internal/database"
	"tengoku-tracker/internal/db"
	"tengoku-tracker/internal/discord"
	"tengoku-tracker/internal/logger"
	"tengoku-tracker/internal/queue"
	"tengoku-tracker/internal/repository"
	"tengoku-tracker/internal/scoring"
	"tengoku-tracker/internal/server"
	"tengoku-tracker/internal/service"
	"tengoku-tracker/internal/snapshot"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideFormula(cfg *config.Config, logger zerolog.Logger) (scoring.Formula, error) {
	registry := scoring.DefaultRegistry()
	formula, err := scoring.Active(registry, cfg.ScoringVersion, cfg.ScoringWeightsFile)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("formula", formula.Version()).
		Strs("available", registry.Versions()).
		Msg("scoring formula selected")
	return formula, nil
}

func ProvideDispatcher(cfg *config.Config, client *api.WebhookClient, logger zerolog.Logger) *discord.Dispatcher {
	return discord.NewDispatcher(discord.ConfigFrom(cfg), client, logger.With().Str("component", "discord").Logger())
}

func ProvideMatchService(
	repo *repository.MatchRepository,
	dispatcher *discord.Dispatcher,
	leaderboard cache.Leaderboard,
	formula scoring.Formula,
	logger zerolog.Logger,
) *service.MatchService {
	return service.NewMatchService(repo, dispatcher, leaderboard, formula, logger)
}

func ProvideLeaderboardService(
	users *repository.UserRepository,
	matches *repository.MatchRepository,
	leaderboard cache.Leaderboard,
	logger zerolog.Logger,
) *service.LeaderboardService {
	return service.NewLeaderboardService(users, matches, leaderboard, logger)
}

func ProvideSnapshotter(sqlDB *sql.DB, cfg *config.Config, logger zerolog.Logger) (*snapshot.Snapshotter, error) {
	uploader, err := snapshot.NewUploader(cfg)
	if err != nil {
		return nil, err
	}
	return snapshot.New(sqlDB, uploader, logger), nil
}

func ProvideTrackerServer(matches *service.MatchService, reader *service.LeaderboardService) *server.TrackerServer {
	return server.NewTrackerServer(matches, reader)
}

func ProvideRESTHandler(matches *service.MatchService, reader *service.LeaderboardService, snapshots *snapshot.Snapshotter) *server.RESTHandler {
	return server.NewRESTHandler(matches, reader, snapshots)
}

// ProvideConsumer returns nil when AMQP_URL is unset.
func ProvideConsumer(cfg *config.Config, matches *service.MatchService, logger zerolog.Logger) (*queue.Consumer, error) {
	return queue.Dial(cfg, matches, logger.With().Str("component", "amqp").Logger())
}

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(logger.New),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewMatchRepository),
	// cache
	fx.Provide(cache.NewClient),
	fx.Provide(cache.New),
	// notifications
	fx.Provide(api.NewWebhookClient),
	fx.Provide(ProvideDispatcher),
	// svc
	fx.Provide(ProvideFormula),
	fx.Provide(ProvideMatchService),
	fx.Provide(ProvideLeaderboardService),
	fx.Provide(ProvideSnapshotter),
	// server
	fx.Provide(ProvideTrackerServer),
	fx.Provide(ProvideRESTHandler),
	fx.Provide(server.NewRouter),
	// ingestion
	fx.Provide(ProvideConsumer),
)
