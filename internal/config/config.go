package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DotEnvLoaded bool

	DBPath     string
	ServerPort string
	LogLevel   string

	Webhook WebhookConfig

	ScoringVersion     string
	ScoringWeightsFile string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AMQPURL   string
	AMQPQueue string

	Snapshot SnapshotConfig
}

type WebhookConfig struct {
	URL       string
	Username  string
	AvatarURL string
}

type SnapshotConfig struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

func (s SnapshotConfig) Enabled() bool {
	return s.Bucket != ""
}

// Load reads .env when present, then the environment. It runs before the logger exists,
// so nothing is logged here; see Log.
func Load() (*Config, error) {
	dotenv := godotenv.Load() == nil

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		DotEnvLoaded: dotenv,
		DBPath:       getEnv("DB_PATH", "tengoku.db"),
		ServerPort:   getEnv("SERVER_PORT", "3000"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Webhook: WebhookConfig{
			URL:       getEnv("DISCORD_GAME_WEBHOOK_URL", ""),
			Username:  getEnv("DISCORD_GAME_WEBHOOK_NAME", "Tengoku Tracker"),
			AvatarURL: getEnv("DISCORD_GAME_WEBHOOK_AVATAR", ""),
		},
		ScoringVersion:     getEnv("SCORING_VERSION", ""),
		ScoringWeightsFile: getEnv("SCORING_WEIGHTS_FILE", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		AMQPURL:            getEnv("AMQP_URL", ""),
		AMQPQueue:          getEnv("AMQP_QUEUE", "tengoku.matches"),
		Snapshot: SnapshotConfig{
			Bucket:    getEnv("SNAPSHOT_BUCKET", ""),
			Endpoint:  getEnv("SNAPSHOT_ENDPOINT", ""),
			Region:    getEnv("SNAPSHOT_REGION", "auto"),
			AccessKey: getEnv("SNAPSHOT_ACCESS_KEY", ""),
			SecretKey: getEnv("SNAPSHOT_SECRET_KEY", ""),
		},
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	return cfg, nil
}

func (c *Config) Log(logger zerolog.Logger) {
	if !c.DotEnvLoaded {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	logger.Info().
		Str("db_path", c.DBPath).
		Str("server_port", c.ServerPort).
		Str("log_level", c.LogLevel).
		Bool("webhook_enabled", c.Webhook.URL != "").
		Bool("redis_enabled", c.RedisAddr != "").
		Bool("amqp_enabled", c.AMQPURL != "").
		Bool("snapshot_upload_enabled", c.Snapshot.Enabled()).
		Str("scoring_version", c.ScoringVersion).
		Msg("configuration loaded")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
