package observability

import (
	"log/slog"

	"github.com/artidentifier/artid/internal/logging"
)

// logger is resolved per call so it follows logging.Setup.
func logger() *slog.Logger {
	return logging.ForService("metrics")
}
