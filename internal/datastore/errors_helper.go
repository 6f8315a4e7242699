// Package datastore provides error handling helpers for database operations
package datastore

import (
	"fmt"

	"github.com/artidentifier/artid/internal/errors"
)

// connectivityError reports that the database could not be reached. The
// message and the attached URL are scrubbed of credentials.
func connectivityError(err error, operation, redactedURL string) error {
	return errors.New(fmt.Errorf("%s: %s", operation, errors.ScrubCredentials(err.Error()))).
		Component("datastore").
		Category(errors.CategoryConnectivity).
		Priority(errors.PriorityHigh).
		Context("operation", operation).
		Context("url", redactedURL).
		Context("error_class", categorizeError(err)).
		Build()
}

// dbError creates a properly categorized database error with context
func dbError(err error, operation, priority string, context ...any) error {
	builder := errors.New(fmt.Errorf("%s: %w", operation, err)).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	if priority != "" {
		builder = builder.Priority(priority)
	}

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}

// commitError reports a failed commit. Nothing of the scope was persisted.
func commitError(err error) error {
	return errors.New(fmt.Errorf("commit session: %w", err)).
		Component("datastore").
		Category(errors.CategoryPersistence).
		Priority(errors.PriorityHigh).
		Context("operation", "commit").
		Context("error_class", categorizeError(err)).
		Build()
}

// fileError reports a filesystem failure around an embedded database file.
func fileError(err error, operation, path string) error {
	return errors.New(fmt.Errorf("%s %s: %w", operation, path, err)).
		Component("datastore").
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		Context("path", path).
		Build()
}
