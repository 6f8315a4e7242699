// Package metrics provides custom Prometheus metrics for artid.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on concrete collectors so tests can
// substitute a recording fake.
type Recorder interface {
	// RecordOperation records an operation with its status.
	// Database operations use the "operation:table" form, e.g. "db_insert:artworks".
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	// The errorType parameter categorizes the error (e.g., "persistence", "connectivity").
	RecordError(operation, errorType string)
}

// ResultSizeRecorder is implemented by recorders that track how many rows a
// search returned.
type ResultSizeRecorder interface {
	RecordSearchResultSize(searchType string, resultSize int)
}

// NoopRecorder discards everything. It is used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) RecordOperation(string, string) {}
func (NoopRecorder) RecordDuration(string, float64) {}
func (NoopRecorder) RecordError(string, string)     {}

var _ Recorder = NoopRecorder{}
var _ Recorder = (*DatastoreMetrics)(nil)
var _ ResultSizeRecorder = (*DatastoreMetrics)(nil)
