package repository

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/errors"
)

// writeError categorizes a failed write. Validation failures arrive already
// categorized and pass through unchanged.
func writeError(err error, operation, table string, context ...any) error {
	if errors.IsPersistence(err) {
		return err
	}

	builder := errors.New(fmt.Errorf("%s %s: %w", operation, table, err)).
		Component("datastore").
		Context("operation", operation).
		Context("table", table)

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		builder = builder.Category(errors.CategoryPersistence).Context("constraint", "unique")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		builder = builder.Category(errors.CategoryPersistence).Context("constraint", "foreign_key")
	case isConstraintViolation(err):
		builder = builder.Category(errors.CategoryPersistence).Context("constraint", "check")
	}

	return addContext(builder, context).Build()
}

// readError categorizes a failed read. Reads have no side effects to undo.
func readError(err error, operation, table string, context ...any) error {
	builder := errors.New(fmt.Errorf("%s %s: %w", operation, table, err)).
		Component("datastore").
		Context("operation", operation).
		Context("table", table)
	return addContext(builder, context).Build()
}

// isConstraintViolation reports NOT NULL and CHECK failures, which the
// dialect translators leave untouched.
func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		// ER_BAD_NULL_ERROR, ER_CHECK_CONSTRAINT_VIOLATED
		return mysqlErr.Number == 1048 || mysqlErr.Number == 3819
	}
	return false
}

func addContext(builder *errors.ErrorBuilder, context []any) *errors.ErrorBuilder {
	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}
	return builder
}

// errorType labels an error for metrics.
func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
