// Package catalog is the high-level entry point to the artwork catalog. Each
// Service method runs in its own session scope, so callers that only need one
// operation never handle sessions themselves.
package catalog

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/logging"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// DefaultStatisticsTTL bounds how stale cached appearance statistics may get
// when appearances are written outside this Service.
const DefaultStatisticsTTL = 30 * time.Second

const statisticsKey = "appearance_statistics"

// Counts holds the number of rows per catalog table.
type Counts struct {
	Artworks    int64 `json:"artworks" yaml:"artworks"`
	Exhibitions int64 `json:"exhibitions" yaml:"exhibitions"`
	Photos      int64 `json:"installation_photos" yaml:"installation_photos"`
	Appearances int64 `json:"artwork_appearances" yaml:"artwork_appearances"`
}

// Service exposes catalog operations on top of a datastore engine.
type Service struct {
	engine  *datastore.Engine
	metrics *metrics.DatastoreMetrics

	stats      *cache.Cache
	refresh    singleflight.Group
	generation atomic.Uint64
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records cache hits and misses and table row counts on m.
func WithMetrics(m *metrics.DatastoreMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithStatisticsTTL sets how long appearance statistics stay cached.
// A zero or negative ttl disables caching.
func WithStatisticsTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.stats = newStatisticsCache(ttl)
	}
}

// New creates a Service backed by engine.
func New(engine *datastore.Engine, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		stats:  newStatisticsCache(DefaultStatisticsTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newStatisticsCache returns nil when ttl disables caching. Expired entries
// are dropped on read; no janitor goroutine is started.
func newStatisticsCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		return nil
	}
	return cache.New(ttl, 0)
}

func logger() *slog.Logger {
	return logging.ForService("catalog")
}
