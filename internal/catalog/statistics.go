package catalog

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/datastore/repository"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// Statistics returns appearance statistics, served from cache while fresh.
// Concurrent callers that miss the cache share one query.
func (s *Service) Statistics(ctx context.Context) (repository.Statistics, error) {
	if s.stats != nil {
		if cached, found := s.stats.Get(statisticsKey); found {
			s.recordCache(metrics.OpCacheGet, metrics.LabelHit)
			return cached.(repository.Statistics), nil
		}
		s.recordCache(metrics.OpCacheGet, metrics.LabelMiss)
	}

	v, err, _ := s.refresh.Do(statisticsKey, func() (any, error) {
		generation := s.generation.Load()
		// shared by every waiting caller, so one caller's cancellation must not end it
		queryCtx := context.WithoutCancel(ctx)

		var stats *repository.Statistics
		err := s.engine.WithSession(queryCtx, func(sess *datastore.Session) error {
			var err error
			stats, err = sess.Appearances.GetStatistics(queryCtx)
			return err
		})
		if err != nil {
			return nil, err
		}

		// an invalidation during the query makes this result stale
		if s.stats != nil && s.generation.Load() == generation {
			s.stats.Set(statisticsKey, *stats, cache.DefaultExpiration)
			s.recordCache(metrics.OpCacheSet, metrics.LabelSuccess)
		}
		return *stats, nil
	})
	if err != nil {
		logger().Error("appearance statistics query failed", "error", err)
		return repository.Statistics{}, err
	}
	return v.(repository.Statistics), nil
}

// InvalidateStatistics drops cached statistics. Service methods that write
// appearances call it themselves; callers writing through their own session
// scope call it after the scope commits.
func (s *Service) InvalidateStatistics() {
	s.generation.Add(1)
	if s.stats == nil {
		return
	}
	s.stats.Delete(statisticsKey)
	s.recordCache(metrics.OpCacheDelete, metrics.LabelSuccess)
}

func (s *Service) recordCache(operation, result string) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(metrics.LabelStatistics, operation, result)
	}
}
