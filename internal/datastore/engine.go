// Package datastore manages the catalog database: connection targets, the
// process-wide engine, session scopes, schema creation and introspection.
package datastore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// PoolPolicy configures the database/sql connection pool of an engine.
type PoolPolicy struct {
	// MaxIdle is the base pool size kept open between uses.
	MaxIdle int
	// MaxOpen bounds open connections; MaxOpen-MaxIdle is the overflow allowance.
	MaxOpen         int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Pool sizes for client/server backends.
const (
	ServerPoolSize     = 10
	ServerPoolOverflow = 20
)

// EmbeddedPool holds one connection open for the life of the process. Every
// caller shares it and waits for it in turn.
var EmbeddedPool = PoolPolicy{MaxIdle: 1, MaxOpen: 1}

// ServerPool returns the bounded pool for client/server backends. Idle
// connections older than idleTime are closed; the drivers check liveness
// before handing out a pooled connection.
func ServerPool(idleTime time.Duration) PoolPolicy {
	return PoolPolicy{
		MaxIdle:         ServerPoolSize,
		MaxOpen:         ServerPoolSize + ServerPoolOverflow,
		ConnMaxIdleTime: idleTime,
	}
}

func (p PoolPolicy) apply(db *sql.DB) {
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
}

// Engine owns one database connection pool.
type Engine struct {
	db      *gorm.DB
	sqlDB   *sql.DB
	target  Target
	pool    PoolPolicy
	metrics *metrics.DatastoreMetrics
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	metrics *metrics.DatastoreMetrics
	pool    *PoolPolicy
	now     func() time.Time
}

// WithMetrics records query, transaction and pool metrics on m.
func WithMetrics(m *metrics.DatastoreMetrics) Option {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithPoolPolicy overrides the backend's default pool policy.
func WithPoolPolicy(p PoolPolicy) Option {
	return func(o *engineOptions) {
		o.pool = &p
	}
}

// WithClock sets the clock sessions use for transition timestamps and
// "current" queries.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		o.now = now
	}
}

// NewEngine opens a database engine for the configured connection target.
// Failures to parse the target or to reach the database are returned as
// connectivity errors; nothing is retried.
func NewEngine(settings conf.DatabaseSettings, opts ...Option) (*Engine, error) {
	o := engineOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	target, err := ParseTarget(ResolveConnectionString(settings))
	if err != nil {
		return nil, err
	}

	if target.Path != "" {
		if dir := filepath.Dir(target.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fileError(err, "create database directory", dir)
			}
		}
	}

	db, err := gorm.Open(target.Dialector(), &gorm.Config{
		Logger:         NewGormLogger(settings.SlowQueryThreshold, gormLogLevel(settings.Debug), o.metrics),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, connectivityError(err, "open database", target.Redacted)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, connectivityError(err, "open database", target.Redacted)
	}

	pool := ServerPool(settings.ConnMaxIdleTime)
	if target.Backend.Embedded() {
		pool = EmbeddedPool
	}
	if o.pool != nil {
		pool = *o.pool
	}
	pool.apply(sqlDB)

	e := &Engine{
		db:      db,
		sqlDB:   sqlDB,
		target:  target,
		pool:    pool,
		metrics: o.metrics,
		now:     o.now,
	}
	e.updatePoolMetrics()

	logger().Info("database engine created",
		"backend", target.Backend,
		"url", target.Redacted,
		"max_open", pool.MaxOpen,
		"max_idle", pool.MaxIdle)

	return e, nil
}

// DB returns the engine's GORM handle outside of any session scope.
func (e *Engine) DB() *gorm.DB {
	return e.db
}

// Target returns the parsed connection target.
func (e *Engine) Target() Target {
	return e.target
}

// Ping verifies that the database answers. A failure is a connectivity error.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.sqlDB.PingContext(ctx); err != nil {
		return connectivityError(err, "ping", e.target.Redacted)
	}
	return nil
}

// Close closes every pooled connection. The process-wide default engine is
// never closed.
func (e *Engine) Close() error {
	if err := e.sqlDB.Close(); err != nil {
		return dbError(err, "close", "")
	}
	return nil
}

// updatePoolMetrics publishes pool occupancy.
func (e *Engine) updatePoolMetrics() {
	if e.metrics == nil {
		return
	}
	stats := e.sqlDB.Stats()
	e.metrics.UpdateConnectionMetrics(
		stats.OpenConnections,
		stats.InUse,
		stats.Idle,
		stats.MaxOpenConnections,
		overflow(stats.OpenConnections, e.pool.MaxIdle),
		stats.WaitCount,
	)
}

func overflow(open, base int) int {
	if open > base {
		return open - base
	}
	return 0
}

var (
	defaultMu     sync.Mutex
	defaultEngine *Engine
)

// Default returns the process-wide engine, creating it from settings on the
// first successful call. Later calls return the same engine and ignore their
// arguments. A failed creation is not cached, so a caller may try again.
func Default(settings conf.DatabaseSettings, opts ...Option) (*Engine, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultEngine != nil {
		return defaultEngine, nil
	}

	e, err := NewEngine(settings, opts...)
	if err != nil {
		return nil, err
	}
	defaultEngine = e
	return defaultEngine, nil
}

// SetDefault replaces the process-wide engine and returns the one it replaced.
// Tests use it to inject an isolated engine; passing nil makes the next
// Default call create a new one. The replaced engine is not closed.
func SetDefault(e *Engine) *Engine {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultEngine
	defaultEngine = e
	return prev
}
