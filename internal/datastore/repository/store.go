package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// Page size bounds for GetAll.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// Option configures a repository.
type Option func(*options)

type options struct {
	recorder metrics.Recorder
	now      func() time.Time
}

// WithRecorder records operation counts and durations on r.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithClock replaces time.Now for transition timestamps and "current" queries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	clock := o.now
	o.now = func() time.Time { return clock().UTC() }
	return o
}

// Store implements create/read/update/delete for one entity type.
type Store[T entities.Record] struct {
	db    *gorm.DB
	table string
	opts  options
}

// NewStore returns a Store bound to db.
func NewStore[T entities.Record](db *gorm.DB, opts ...Option) *Store[T] {
	var zero T
	return &Store[T]{
		db:    db,
		table: zero.TableName(),
		opts:  newOptions(opts),
	}
}

// observe records the outcome of one operation against the store's table.
func (s *Store[T]) observe(op string, start time.Time, err error) {
	key := op + ":" + s.table
	s.opts.recorder.RecordDuration(key, time.Since(start).Seconds())
	if err != nil {
		s.opts.recorder.RecordError(key, errorType(err))
		return
	}
	s.opts.recorder.RecordOperation(key, metrics.LabelSuccess)
}

// Create validates rec and inserts it. The identifier and timestamps are
// assigned during the insert and are visible on the returned value.
// Relationship slices on rec are not written.
func (s *Store[T]) Create(ctx context.Context, rec *T) (result *T, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbInsert, start, err) }()

	if rec == nil {
		return nil, errors.Newf("create %s: nil record", s.table).
			Component("datastore").
			Category(errors.CategoryPersistence).
			Build()
	}
	if err := (*rec).Validate(); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(rec).Error
	})
	if err != nil {
		return nil, writeError(err, "create", s.table)
	}
	return rec, nil
}

// GetByID returns the record with the given identifier. The boolean is false
// when no such record exists.
func (s *Store[T]) GetByID(ctx context.Context, id string) (result *T, found bool, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbQuery, start, err) }()

	var rec T
	err = s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, readError(err, "get", s.table, "id", id)
	}
	return &rec, true, nil
}

// GetAll returns one page of records ordered by creation time. A negative skip
// is treated as zero and limit is clamped to (0, MaxPageSize], with a
// non-positive limit selecting DefaultPageSize.
func (s *Store[T]) GetAll(ctx context.Context, skip, limit int) (result []T, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbQuery, start, err) }()

	skip, limit = normalizePage(skip, limit)

	var recs []T
	err = s.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, readError(err, "list", s.table, "skip", skip, "limit", limit)
	}
	return recs, nil
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	return skip, limit
}

// Update applies the fields set in patch to the record with the given
// identifier and returns the refreshed record. updated_at is always
// refreshed. The boolean is false when no such record exists.
func (s *Store[T]) Update(ctx context.Context, id string, patch entities.Patch) (result *T, found bool, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbUpdate, start, err) }()

	changes, err := patch.Changes()
	if err != nil {
		return nil, false, err
	}
	var guard func(T) error
	if g, ok := patch.(entities.Guard[T]); ok {
		guard = g.Check
	}
	return s.apply(ctx, id, changes, guard)
}

// apply writes changes to one row inside a savepoint and reloads it. A non-nil
// guard sees the stored row first and may reject the update.
func (s *Store[T]) apply(ctx context.Context, id string, changes map[string]any, guard func(T) error) (*T, bool, error) {
	var rec T
	found := true

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.Where("id = ?", id).Take(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				found = false
				return nil
			}
			return err
		}
		if guard != nil {
			if err := guard(current); err != nil {
				return err
			}
		}

		if err := tx.Model(new(T)).Where("id = ?", id).Updates(changes).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Take(&rec).Error
	})
	if err != nil {
		return nil, false, writeError(err, "update", s.table, "id", id)
	}
	if !found {
		return nil, false, nil
	}
	return &rec, true, nil
}

// Delete removes the record with the given identifier. Dependent rows are
// removed by the schema's cascade rules. It reports whether a record was
// removed.
func (s *Store[T]) Delete(ctx context.Context, id string) (deleted bool, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbDelete, start, err) }()

	var rows int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(new(T))
		rows = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return false, writeError(err, "delete", s.table, "id", id)
	}
	return rows > 0, nil
}

// Count returns the number of records.
func (s *Store[T]) Count(ctx context.Context) (count int64, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbQuery, start, err) }()

	if err = s.db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, readError(err, "count", s.table)
	}
	return count, nil
}

// Exists reports whether a record with the given identifier exists.
func (s *Store[T]) Exists(ctx context.Context, id string) (exists bool, err error) {
	start := time.Now()
	defer func() { s.observe(metrics.OpDbQuery, start, err) }()

	var count int64
	if err = s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, readError(err, "exists", s.table, "id", id)
	}
	return count > 0, nil
}

// find runs a filtered query and returns every match in creation order.
// searchType labels the query in metrics.
func (s *Store[T]) find(ctx context.Context, searchType string, scope func(*gorm.DB) *gorm.DB) (result []T, err error) {
	start := time.Now()
	key := metrics.OpSearch + ":" + searchType
	defer func() {
		s.opts.recorder.RecordDuration(key, time.Since(start).Seconds())
		if err != nil {
			s.opts.recorder.RecordError(key, errorType(err))
			return
		}
		s.opts.recorder.RecordOperation(key, metrics.LabelSuccess)
	}()

	var recs []T
	err = scope(s.db.WithContext(ctx).Model(new(T))).
		Order("created_at ASC").
		Order("id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, readError(err, "search", s.table, "search_type", searchType)
	}
	if sized, ok := s.opts.recorder.(metrics.ResultSizeRecorder); ok {
		sized.RecordSearchResultSize(searchType, len(recs))
	}
	return recs, nil
}

// first runs a filtered query and returns its first match in creation order.
func (s *Store[T]) first(ctx context.Context, operation string, scope func(*gorm.DB) *gorm.DB) (*T, bool, error) {
	var rec T
	err := scope(s.db.WithContext(ctx)).
		Order("created_at ASC").
		Order("id ASC").
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, readError(err, operation, s.table)
	}
	return &rec, true, nil
}
