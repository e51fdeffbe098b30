package discord

import (
	"context"
	"fmt"
	"tengoku-tracker/internal/config"
	"tengoku-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type Config struct {
	WebhookURL string
	Username   string
	AvatarURL  string
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		WebhookURL: cfg.Webhook.URL,
		Username:   cfg.Webhook.Username,
		AvatarURL:  cfg.Webhook.AvatarURL,
	}
}

type Poster interface {
	Post(ctx context.Context, url string, payload any) error
}

type Dispatcher struct {
	cfg    Config
	poster Poster
	logger zerolog.Logger
}

func NewDispatcher(cfg Config, poster Poster, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, poster: poster, logger: logger}
}

// Send renders and posts the announcement for a recorded match.
func (d *Dispatcher) Send(ctx context.Context, result *domain.MatchResult) error {
	if result.Status != domain.StatusRecorded {
		return fmt.Errorf("refusing to announce match %s with status %s", result.GameID, result.Status)
	}

	msg := Render(result, d.cfg)
	if msg.Dropped > 0 {
		d.logger.Warn().
			Str("game_id", result.GameID).
			Int("dropped_fields", msg.Dropped).
			Int("chars", messageLen(msg.Embeds)).
			Msg("announcement too large, trailing fields dropped")
	}

	return d.poster.Post(ctx, d.cfg.WebhookURL, msg)
}

// Announce is Send with failures logged instead of returned. Recording never depends on it.
func (d *Dispatcher) Announce(ctx context.Context, result *domain.MatchResult) {
	log := d.logger.With().Str("game_id", result.GameID).Logger()

	if d.cfg.WebhookURL == "" {
		log.Warn().Msg("DISCORD_GAME_WEBHOOK_URL not set, announcement skipped")
		return
	}

	if err := d.Send(ctx, result); err != nil {
		log.Error().Err(err).Msg("failed to deliver match announcement")
		return
	}

	log.Info().Msg("match announcement delivered")
}
