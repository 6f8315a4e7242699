// Package datastore provides logging infrastructure for database operations
package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/logging"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// logger returns the datastore logger. It is resolved on every call so it
// follows the outputs configured by logging.Setup.
func logger() *slog.Logger {
	return logging.ForService("datastore")
}

// GormLogger implements GORM's logger interface with structured logging and metrics
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
	metrics       *metrics.DatastoreMetrics
}

// NewGormLogger creates a new GORM logger instance. metrics may be nil.
func NewGormLogger(slowThreshold time.Duration, logLevel gormlogger.LogLevel, m *metrics.DatastoreMetrics) *GormLogger {
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      logLevel,
		metrics:       m,
	}
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Info {
		logger().InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Warn {
		logger().WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= gormlogger.Error {
		logger().ErrorContext(ctx, "GORM error", "msg", fmt.Sprintf(msg, data...))
		if l.metrics != nil {
			l.metrics.RecordDbOperationError("gorm_internal", sqlUnknown, "gorm_error")
		}
	}
}

// Trace implements logger.Interface. Failed statements are logged as errors
// and slow ones as warnings; everything else is logged at debug level when
// the logger runs in Info mode. Record-not-found is not a failure.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := parseSQLOperation(sql)

	if l.metrics != nil {
		l.metrics.RecordQueryResultSize(operation, table, int(rows))
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		logger().ErrorContext(ctx, "database query failed",
			"error", errors.ScrubCredentials(err.Error()),
			"error_class", categorizeError(err),
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows)
		if l.metrics != nil {
			l.metrics.RecordDbOperationError(operation, table, categorizeError(err))
		}

	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		logger().WarnContext(ctx, "slow query detected",
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows,
			"threshold", l.SlowThreshold)

	case l.LogLevel >= gormlogger.Info:
		logger().DebugContext(ctx, "query executed",
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows)
	}
}

// gormLogLevel maps the database debug switch to a GORM log level.
func gormLogLevel(debug bool) gormlogger.LogLevel {
	if debug {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
