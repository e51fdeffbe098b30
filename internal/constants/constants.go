package constants

import "time"

const (
	LeaderboardCacheTTL = 2 * time.Minute
	LeaderboardCacheKey = "tengoku:leaderboard"
)

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	CacheTimeout    = 500 * time.Millisecond
)

const (
	// NotifyTimeout bounds one announcement, rate-limit waits included.
	NotifyTimeout        = 30 * time.Second
	WebhookTimeout       = 10 * time.Second
	WebhookMaxAttempts   = 5
	WebhookMaxRetryAfter = 5 * time.Second
	WebhookDefaultRetry  = 1 * time.Second
)

const (
	// Discord embed limits. EmbedMaxTotalLen counts every embed of one message together.
	EmbedFieldMaxLen    = 1024
	EmbedMaxFields      = 25
	EmbedMaxTotalLen    = 6000
	MessageMaxEmbeds    = 10
	EmbedColorValidated = 0x22c55e
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout   = 15 * time.Second
	ReadHeaderTimeout = 10 * time.Second
	MaxBodyBytes      = 1 << 20
)
