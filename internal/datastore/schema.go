package datastore

import (
	"context"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/errors"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// models lists the catalog entities, parents before children.
func models() []any {
	return []any{
		&entities.Exhibition{},
		&entities.Artwork{},
		&entities.InstallationPhoto{},
		&entities.ArtworkAppearance{},
	}
}

// Migrate creates missing tables, columns, indexes and foreign keys. Existing
// data is kept.
func (e *Engine) Migrate(ctx context.Context) error {
	if err := e.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		e.recordMigration("create", err)
		return dbError(err, "migrate schema", errors.PriorityHigh, "url", e.target.Redacted)
	}
	e.recordMigration("create", nil)
	logger().Info("database schema ready", "backend", e.target.Backend)
	return nil
}

// HasSchema reports whether every catalog table exists.
func (e *Engine) HasSchema(ctx context.Context) bool {
	migrator := e.db.WithContext(ctx).Migrator()
	for _, m := range models() {
		if !migrator.HasTable(m) {
			return false
		}
	}
	return true
}

// DropSchema drops every catalog table, children first, and all their rows.
func (e *Engine) DropSchema(ctx context.Context) error {
	logger().Warn("dropping all catalog tables", "url", e.target.Redacted)

	migrator := e.db.WithContext(ctx).Migrator()
	all := models()
	for i := len(all) - 1; i >= 0; i-- {
		if err := migrator.DropTable(all[i]); err != nil {
			e.recordMigration("drop", err)
			return dbError(err, "drop schema", errors.PriorityHigh, "url", e.target.Redacted)
		}
	}
	e.recordMigration("drop", nil)
	return nil
}

func (e *Engine) recordMigration(operation string, err error) {
	if e.metrics == nil {
		return
	}
	status := metrics.LabelSuccess
	if err != nil {
		status = metrics.LabelError
	}
	e.metrics.RecordMigration(operation, status)
}
