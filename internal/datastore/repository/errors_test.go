package repository

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/errors"
)

func TestWriteErrorCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		persistent bool
	}{
		{"duplicate key", gorm.ErrDuplicatedKey, true},
		{"foreign key", fmt.Errorf("insert: %w", gorm.ErrForeignKeyViolated), true},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, true},
		{"sqlite busy", sqlite3.Error{Code: sqlite3.ErrBusy}, false},
		{"mysql null column", &mysql.MySQLError{Number: 1048, Message: "Column 'title' cannot be null"}, true},
		{"mysql lock wait", &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}, false},
		{"plain", errors.NewStd("disk I/O error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := writeError(tt.err, "create", "artworks")
			assert.Equal(t, tt.persistent, errors.IsPersistence(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
