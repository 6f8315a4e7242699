package conf

import (
	"log/slog"

	"github.com/artidentifier/artid/internal/logging"
)

// GetLogger returns the config package logger.
// It is resolved on each call so it follows logging.Setup.
func GetLogger() *slog.Logger {
	return logging.ForService("config")
}
