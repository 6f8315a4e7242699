package datastore

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/repository"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// Session is one unit of work. Its repositories share the scope's
// transaction. A Session must not be used after its scope returns or from
// more than one goroutine.
type Session struct {
	tx *gorm.DB

	Artworks    repository.ArtworkRepository
	Exhibitions repository.ExhibitionRepository
	Photos      repository.InstallationPhotoRepository
	Appearances repository.ArtworkAppearanceRepository
}

// DB returns the scope's transaction for queries the repositories do not cover.
func (s *Session) DB() *gorm.DB {
	return s.tx
}

func (e *Engine) newSession(tx *gorm.DB) *Session {
	opts := []repository.Option{repository.WithClock(e.now)}
	if e.metrics != nil {
		opts = append(opts, repository.WithRecorder(e.metrics))
	}
	return &Session{
		tx:          tx,
		Artworks:    repository.NewArtworkRepository(tx, opts...),
		Exhibitions: repository.NewExhibitionRepository(tx, opts...),
		Photos:      repository.NewInstallationPhotoRepository(tx, opts...),
		Appearances: repository.NewArtworkAppearanceRepository(tx, opts...),
	}
}

// WithSession runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back when fn returns an error or panics; the error is
// returned unchanged and the panic is re-raised. The connection goes back to
// the pool on every path, including failed commits and rollbacks.
//
// Scopes must not be nested: on an embedded backend the inner scope would
// wait forever for the connection the outer one holds.
func (e *Engine) WithSession(ctx context.Context, fn func(*Session) error) error {
	start := time.Now()

	tx := e.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		e.recordTransactionError("begin", tx.Error)
		return connectivityError(tx.Error, "begin session", e.target.Redacted)
	}

	defer func() {
		if p := recover(); p != nil {
			e.rollback(tx)
			e.observeSession(start, metrics.LabelRollback)
			panic(p)
		}
	}()

	if err := fn(e.newSession(tx)); err != nil {
		e.rollback(tx)
		e.observeSession(start, metrics.LabelRollback)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		e.recordTransactionError("commit", err)
		e.observeSession(start, metrics.LabelError)
		logger().Error("session commit failed", "error", err)
		return commitError(err)
	}

	e.observeSession(start, metrics.LabelCommitted)
	return nil
}

func (e *Engine) rollback(tx *gorm.DB) {
	// database/sql has already rolled back when the context was canceled
	if err := tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		e.recordTransactionError("rollback", err)
		logger().Error("session rollback failed", "error", err)
	}
}

func (e *Engine) observeSession(start time.Time, status string) {
	elapsed := time.Since(start)
	if status != metrics.LabelCommitted {
		logger().Debug("session rolled back", "status", status, "duration", elapsed)
	}
	if e.metrics == nil {
		return
	}
	e.metrics.RecordTransaction(status)
	e.metrics.RecordTransactionDuration(elapsed.Seconds())
	e.updatePoolMetrics()
}

func (e *Engine) recordTransactionError(phase string, err error) {
	if e.metrics != nil {
		e.metrics.RecordTransactionError(phase, categorizeError(err))
	}
}
