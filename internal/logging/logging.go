package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu         sync.Mutex
	level      = new(slog.LevelVar)
	fileWriter io.Closer
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Add trace and fatal level names.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// replaceLevelName renders the custom TRACE and FATAL levels by name.
func replaceLevelName(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		lvl := a.Value.Any().(slog.Level)
		levelLabel, exists := levelNames[lvl]
		if !exists {
			levelLabel = lvl.String()
		}
		a.Value = slog.StringValue(levelLabel)
	}
	return a
}

func handlerOptions(leveler slog.Leveler) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       leveler,
		ReplaceAttr: replaceLevelName,
	}
}

// Config selects the outputs of the process-wide loggers.
type Config struct {
	Level   string // trace, debug, info, warn, error
	Console bool   // human readable text on stderr
	File    bool   // JSON through a rotating file writer
	Rotation
}

// Rotation configures the lumberjack file writer.
type Rotation struct {
	Path       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Setup configures logging from cfg. Console output is human readable, file output
// is JSON; when both are enabled every record goes to both. The returned function
// closes the log file and is safe to call when no file is open.
func Setup(cfg Config) (func() error, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handlers []slog.Handler
	var closer io.Closer

	if cfg.Console {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, handlerOptions(level)))
	}

	if cfg.File {
		w, err := newRotatingWriter(cfg.Rotation)
		if err != nil {
			return nil, err
		}
		closer = w
		handlers = append(handlers, slog.NewJSONHandler(w, handlerOptions(level)))
	}

	mu.Lock()
	defer mu.Unlock()

	if fileWriter != nil {
		_ = fileWriter.Close()
	}
	fileWriter = closer

	level.Set(lvl)
	slog.SetDefault(slog.New(fanout(handlers)))

	return closeFile, nil
}

func closeFile() error {
	mu.Lock()
	defer mu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// SetLevel sets the minimum logging level for all process-wide loggers.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// ParseLevel maps a configured level name to a slog level.
// CRITICAL is accepted as an alias for FATAL and WARNING for WARN.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "fatal", "critical":
		return LevelFatal, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// ForService creates a new logger instance with the 'service' attribute added.
// It is derived from the default logger so it follows every configured output.
func ForService(serviceName string) *slog.Logger {
	return slog.Default().With("service", serviceName)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

func newRotatingWriter(r Rotation) (*lumberjack.Logger, error) {
	// lumberjack doesn't create directories
	if logDir := filepath.Dir(r.Path); logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	w := &lumberjack.Logger{
		Filename:   r.Path,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   r.Compress,
	}
	if r.MaxSize > 0 {
		w.MaxSize = r.MaxSize
	}
	if r.MaxBackups > 0 {
		w.MaxBackups = r.MaxBackups
	}
	if r.MaxAge > 0 {
		w.MaxAge = r.MaxAge
	}
	return w, nil
}

// NewFileLogger creates a new slog.Logger instance configured to write JSON logs
// to the specified file path using lumberjack for rotation.
// It includes a 'service' attribute in all logs.
// It returns the logger, a function to close the underlying log writer, and an error if setup fails.
func NewFileLogger(r Rotation, serviceName string, lvl slog.Level) (*slog.Logger, func() error, error) {
	w, err := newRotatingWriter(r)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewJSONHandler(w, handlerOptions(lvl))).With("service", serviceName)
	return logger, w.Close, nil
}
