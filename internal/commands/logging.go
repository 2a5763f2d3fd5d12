package commands

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/diogo/gemchat/internal/config"
)

// setupLogging routes structured logs to a file under the config directory,
// keeping the terminal clean for the chat view. Logging is disabled when the
// file cannot be opened.
func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339

	level := zerolog.InfoLevel
	if os.Getenv("GEMCHAT_DEBUG") != "" {
		level = zerolog.DebugLevel
	}

	if _, err := config.EnsureConfigDir(); err != nil {
		log.Logger = zerolog.Nop()
		return
	}
	logPath, err := config.GetLogPath()
	if err != nil {
		log.Logger = zerolog.Nop()
		return
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Logger = zerolog.Nop()
		return
	}

	log.Logger = zerolog.New(file).Level(level).With().Timestamp().Logger()
}
