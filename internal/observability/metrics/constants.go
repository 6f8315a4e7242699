// Package metrics provides constants used across metric definitions.
package metrics

// Operation type constants used in switch statements across metrics.
const (
	// OpDbQuery represents database query operations.
	OpDbQuery = "db_query"
	// OpDbInsert represents database insert operations.
	OpDbInsert = "db_insert"
	// OpDbUpdate represents database update operations.
	OpDbUpdate = "db_update"
	// OpDbDelete represents database delete operations.
	OpDbDelete = "db_delete"
	// OpTransaction represents session scope transactions.
	OpTransaction = "transaction"
	// OpSearch represents catalog search operations.
	OpSearch = "search"
	// OpStatistics represents appearance statistics aggregation.
	OpStatistics = "statistics"
	// OpCacheGet represents cache get operations.
	OpCacheGet = "cache_get"
	// OpCacheSet represents cache set operations.
	OpCacheSet = "cache_set"
	// OpCacheDelete represents cache delete operations.
	OpCacheDelete = "cache_delete"
	// OpMigration represents schema creation and removal.
	OpMigration = "migration"
)

// Label value constants used for metric labels.
const (
	// LabelCommitted is the status label for committed transactions.
	LabelCommitted = "committed"
	// LabelRollback is the status label for rolled back transactions.
	LabelRollback = "rollback"
	// LabelSuccess is the status label for successful operations.
	LabelSuccess = "success"
	// LabelError is the status label for failed operations.
	LabelError = "error"
	// LabelHit is the result label for cache hits.
	LabelHit = "hit"
	// LabelMiss is the result label for cache misses.
	LabelMiss = "miss"
	// LabelStatistics is the cache type label for appearance statistics.
	LabelStatistics = "statistics"
	// LabelUnknown is used when a table cannot be determined.
	LabelUnknown = "unknown"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms (1ms to ~1s range).
	BucketStart1ms = 0.001
	// BucketStart100us is the starting bucket for 0.1ms histograms (0.1ms to ~400ms range).
	BucketStart100us = 0.0001

	// BucketFactor2 is the common exponential growth factor of 2 for histogram buckets.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)

// String parsing constants.
const (
	// SplitPartsCount is the expected number of parts when splitting operation strings.
	SplitPartsCount = 2
)
