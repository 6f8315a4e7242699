package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artidentifier/artid/internal/errors"
)

// Record is satisfied by the four catalog entities.
type Record interface {
	Artwork | Exhibition | InstallationPhoto | ArtworkAppearance
	TableName() string
	Validate() error
}

// Patch is a typed partial update. Changes returns the column assignments the
// patch carries, or an error when a supplied value breaks an entity invariant.
type Patch interface {
	Changes() (map[string]any, error)
}

// Guard is implemented by patches whose validity also depends on the row
// they are applied to. Check receives the stored row before the update.
type Guard[T any] interface {
	Check(current T) error
}

// newID returns a fresh identifier. Identifiers are random version 4 UUIDs and
// are never derived from caller input, so a deleted row's ID is not reused.
func newID() string {
	return uuid.NewString()
}

// toUTC replaces *t with the same instant in UTC. Stored times share one zone
// so that backends comparing them as text order them correctly.
func toUTC(t **time.Time) {
	if *t != nil {
		u := (*t).UTC()
		*t = &u
	}
}

// invalid builds the error returned when a value breaks an entity invariant.
func invalid(entity, field, reason string, value any) error {
	return errors.Newf("invalid %s %s: %s", entity, field, reason).
		Component("datastore").
		Category(errors.CategoryPersistence).
		Context("entity", entity).
		Context("field", field).
		Context("value", value).
		Build()
}

// validator collects the first invariant violation of an entity.
type validator struct {
	entity string
	err    error
}

func (v *validator) required(field, value string) {
	if v.err == nil && strings.TrimSpace(value) == "" {
		v.err = invalid(v.entity, field, "is required", value)
	}
}

func (v *validator) unit(field string, value float64) {
	// NaN fails both comparisons
	if v.err == nil && !(value >= 0 && value <= 1) {
		v.err = invalid(v.entity, field, "must be within [0,1]", value)
	}
}

func (v *validator) optionalUnit(field string, value *float64) {
	if value != nil {
		v.unit(field, *value)
	}
}

func (v *validator) nonNegative(field string, value *float64) {
	if v.err == nil && value != nil && !(*value >= 0) {
		v.err = invalid(v.entity, field, "must not be negative", *value)
	}
}

func (v *validator) nonNegativeInt(field string, value *int64) {
	if v.err == nil && value != nil && *value < 0 {
		v.err = invalid(v.entity, field, "must not be negative", *value)
	}
}

func (v *validator) check(field string, ok bool, reason string, value any) {
	if v.err == nil && !ok {
		v.err = invalid(v.entity, field, reason, value)
	}
}
