package logger

import (
	"os"
	"tengoku-tracker/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger at the configured level.
func New(cfg *config.Config) zerolog.Logger {
	logger := FromLevel(cfg.LogLevel)
	cfg.Log(logger)
	return logger
}

func SetLevel(level zerolog.Level) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(level)

	return logger
}

// FromLevel parses LOG_LEVEL style names, falling back to info.
func FromLevel(name string) zerolog.Logger {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return SetLevel(level)
}
