package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"tengoku-tracker/internal/config"
	"tengoku-tracker/internal/constants"
	"tengoku-tracker/internal/domain"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisLeaderboard stores the ordered leaderboard as one JSON value with a TTL.
type RedisLeaderboard struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisLeaderboard(client *redis.Client, logger zerolog.Logger) *RedisLeaderboard {
	return &RedisLeaderboard{
		client: client,
		key:    constants.LeaderboardCacheKey,
		ttl:    constants.LeaderboardCacheTTL,
		logger: logger,
	}
}

func (c *RedisLeaderboard) Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read leaderboard cache: %w", err)
	}

	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		c.logger.Warn().Err(err).Msg("corrupt leaderboard cache entry, dropping")
		c.client.Del(ctx, c.key)
		return nil, false, nil
	}
	return entries, true, nil
}

func (c *RedisLeaderboard) Set(ctx context.Context, entries []domain.LeaderboardEntry) error {
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard cache: %w", err)
	}
	return nil
}

func (c *RedisLeaderboard) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.CacheTimeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}

// Noop never holds anything; every read goes to the store.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.LeaderboardEntry, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []domain.LeaderboardEntry) error       { return nil }
func (Noop) Invalidate(context.Context) error                           { return nil }

// NewClient dials Redis when REDIS_ADDR is set. It returns nil, nil when caching is disabled.
func NewClient(cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("REDIS_ADDR not set, leaderboard cache disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	return client, nil
}

// New picks the Redis cache when a client is available and Noop otherwise.
func New(client *redis.Client, logger zerolog.Logger) Leaderboard {
	if client == nil {
		return Noop{}
	}
	return NewRedisLeaderboard(client, logger.With().Str("component", "leaderboard_cache").Logger())
}

// Leaderboard is satisfied by both implementations.
type Leaderboard interface {
	Get(ctx context.Context) ([]domain.LeaderboardEntry, bool, error)
	Set(ctx context.Context, entries []domain.LeaderboardEntry) error
	Invalidate(ctx context.Context) error
}
