package entities

import (
	"time"

	"gorm.io/datatypes"
)

// changeSet accumulates column assignments for a patch.
type changeSet map[string]any

func (c changeSet) set(column string, value any) {
	c[column] = value
}

func (c changeSet) setString(column string, value *string) {
	if value != nil {
		c[column] = *value
	}
}

func (c changeSet) setFloat(column string, value *float64) {
	if value != nil {
		c[column] = *value
	}
}

func (c changeSet) setInt(column string, value *int) {
	if value != nil {
		c[column] = *value
	}
}

func (c changeSet) setInt64(column string, value *int64) {
	if value != nil {
		c[column] = *value
	}
}

func (c changeSet) setBool(column string, value *bool) {
	if value != nil {
		c[column] = *value
	}
}

func (c changeSet) setTime(column string, value *time.Time) {
	if value != nil {
		c[column] = value.UTC()
	}
}

func (c changeSet) setJSON(column string, value *datatypes.JSON) {
	if value != nil {
		c[column] = *value
	}
}
