// Package metrics provides datastore metrics for observability
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains Prometheus metrics for catalog datastore operations
type DatastoreMetrics struct {
	registry *prometheus.Registry

	// Database operation metrics
	dbOperationsTotal      *prometheus.CounterVec
	dbOperationDuration    *prometheus.HistogramVec
	dbOperationErrorsTotal *prometheus.CounterVec
	dbQueryResultSizeHist  *prometheus.HistogramVec

	// Session scope transaction metrics
	dbTransactionsTotal      *prometheus.CounterVec
	dbTransactionDuration    prometheus.Histogram
	dbTransactionErrorsTotal *prometheus.CounterVec

	// Connection pool metrics
	dbConnectionsOpenGauge     prometheus.Gauge
	dbConnectionsInUseGauge    prometheus.Gauge
	dbConnectionsIdleGauge     prometheus.Gauge
	dbConnectionsMaxGauge      prometheus.Gauge
	dbConnectionsOverflowGauge prometheus.Gauge
	dbConnectionWaitTotal      prometheus.Gauge

	// Search and aggregation metrics
	searchOperationsTotal   *prometheus.CounterVec
	searchOperationDuration *prometheus.HistogramVec
	searchResultSizeHist    *prometheus.HistogramVec

	// Cache metrics (for catalog statistics)
	cacheOperationsTotal *prometheus.CounterVec

	// Schema and size metrics
	migrationOperationsTotal *prometheus.CounterVec
	dbSizeBytesGauge         prometheus.Gauge
	dbTableRowCountGauge     *prometheus.GaugeVec

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewDatastoreMetrics creates and registers new datastore metrics
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *DatastoreMetrics) initMetrics() {
	m.dbOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "table", "status"}, // operation: db_query, db_insert, db_update, db_delete
	)

	m.dbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artid_db_operation_duration_seconds",
			Help:    "Time taken for database operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart100us, BucketFactor2, BucketCount15), // 0.1ms to ~3s
		},
		[]string{"operation", "table"},
	)

	m.dbOperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_db_operation_errors_total",
			Help: "Total number of database operation errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	m.dbQueryResultSizeHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artid_db_query_result_size_rows",
			Help:    "Number of rows returned by database queries",
			Buckets: []float64{0, 1, 10, 50, 100, 500, 1000},
		},
		[]string{"operation", "table"},
	)

	m.dbTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_db_transactions_total",
			Help: "Total number of session scope transactions",
		},
		[]string{"status"}, // status: committed, rollback, error
	)

	m.dbTransactionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artid_db_transaction_duration_seconds",
			Help:    "Time a session scope held its transaction open",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15), // 1ms to ~32s
		},
	)

	m.dbTransactionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_db_transaction_errors_total",
			Help: "Total number of transaction begin, commit and rollback failures",
		},
		[]string{"phase", "error_type"},
	)

	m.dbConnectionsOpenGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connections_open",
		Help: "Number of established database connections",
	})

	m.dbConnectionsInUseGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connections_in_use",
		Help: "Number of database connections checked out by session scopes",
	})

	m.dbConnectionsIdleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connections_idle",
		Help: "Number of idle database connections",
	})

	m.dbConnectionsMaxGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connections_max",
		Help: "Maximum number of database connections",
	})

	m.dbConnectionsOverflowGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connections_overflow",
		Help: "Number of open connections above the base pool size",
	})

	m.dbConnectionWaitTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_connection_waits",
		Help: "Cumulative number of times a session waited for a free connection",
	})

	m.searchOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_search_operations_total",
			Help: "Total number of catalog search operations",
		},
		[]string{"search_type", "status"},
	)

	m.searchOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artid_search_operation_duration_seconds",
			Help:    "Time taken for catalog search operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12), // 1ms to ~4s
		},
		[]string{"search_type"},
	)

	m.searchResultSizeHist = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artid_search_result_size",
			Help:    "Number of records returned by catalog searches",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		},
		[]string{"search_type"},
	)

	m.cacheOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"cache_type", "operation", "result"},
	)

	m.migrationOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artid_db_migration_operations_total",
			Help: "Total number of schema create and drop operations",
		},
		[]string{"operation", "status"},
	)

	m.dbSizeBytesGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "artid_db_size_bytes",
		Help: "Size of the embedded database file in bytes",
	})

	m.dbTableRowCountGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artid_db_table_rows",
			Help: "Number of rows per catalog table",
		},
		[]string{"table"},
	)

	m.collectors = []prometheus.Collector{
		m.dbOperationsTotal,
		m.dbOperationDuration,
		m.dbOperationErrorsTotal,
		m.dbQueryResultSizeHist,
		m.dbTransactionsTotal,
		m.dbTransactionDuration,
		m.dbTransactionErrorsTotal,
		m.dbConnectionsOpenGauge,
		m.dbConnectionsInUseGauge,
		m.dbConnectionsIdleGauge,
		m.dbConnectionsMaxGauge,
		m.dbConnectionsOverflowGauge,
		m.dbConnectionWaitTotal,
		m.searchOperationsTotal,
		m.searchOperationDuration,
		m.searchResultSizeHist,
		m.cacheOperationsTotal,
		m.migrationOperationsTotal,
		m.dbSizeBytesGauge,
		m.dbTableRowCountGauge,
	}
}

// Describe implements the prometheus.Collector interface
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the prometheus.Collector interface
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordDbOperation records a database operation
func (m *DatastoreMetrics) RecordDbOperation(operation, table, status string) {
	m.dbOperationsTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordDbOperationDuration records the duration of a database operation
func (m *DatastoreMetrics) RecordDbOperationDuration(operation, table string, duration float64) {
	m.dbOperationDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordDbOperationError records a database operation error
func (m *DatastoreMetrics) RecordDbOperationError(operation, table, errorType string) {
	m.dbOperationErrorsTotal.WithLabelValues(operation, table, errorType).Inc()
}

// RecordQueryResultSize records the size of query results
func (m *DatastoreMetrics) RecordQueryResultSize(operation, table string, resultSize int) {
	m.dbQueryResultSizeHist.WithLabelValues(operation, table).Observe(float64(resultSize))
}

// RecordTransaction records the outcome of a session scope
func (m *DatastoreMetrics) RecordTransaction(status string) {
	m.dbTransactionsTotal.WithLabelValues(status).Inc()
}

// RecordTransactionDuration records how long a session scope held its transaction
func (m *DatastoreMetrics) RecordTransactionDuration(duration float64) {
	m.dbTransactionDuration.Observe(duration)
}

// RecordTransactionError records a begin, commit or rollback failure
func (m *DatastoreMetrics) RecordTransactionError(phase, errorType string) {
	m.dbTransactionErrorsTotal.WithLabelValues(phase, errorType).Inc()
}

// UpdateConnectionMetrics updates connection pool gauges
func (m *DatastoreMetrics) UpdateConnectionMetrics(open, inUse, idle, maxConn, overflow int, waitCount int64) {
	m.dbConnectionsOpenGauge.Set(float64(open))
	m.dbConnectionsInUseGauge.Set(float64(inUse))
	m.dbConnectionsIdleGauge.Set(float64(idle))
	m.dbConnectionsMaxGauge.Set(float64(maxConn))
	m.dbConnectionsOverflowGauge.Set(float64(overflow))
	m.dbConnectionWaitTotal.Set(float64(waitCount))
}

// RecordSearchOperation records a search operation
func (m *DatastoreMetrics) RecordSearchOperation(searchType, status string) {
	m.searchOperationsTotal.WithLabelValues(searchType, status).Inc()
}

// RecordSearchDuration records the duration of a search operation
func (m *DatastoreMetrics) RecordSearchDuration(searchType string, duration float64) {
	m.searchOperationDuration.WithLabelValues(searchType).Observe(duration)
}

// RecordSearchResultSize records the size of search results
func (m *DatastoreMetrics) RecordSearchResultSize(searchType string, resultSize int) {
	m.searchResultSizeHist.WithLabelValues(searchType).Observe(float64(resultSize))
}

// RecordCacheOperation records a cache operation
func (m *DatastoreMetrics) RecordCacheOperation(cacheType, operation, result string) {
	m.cacheOperationsTotal.WithLabelValues(cacheType, operation, result).Inc()
}

// RecordMigration records a schema create or drop
func (m *DatastoreMetrics) RecordMigration(operation, status string) {
	m.migrationOperationsTotal.WithLabelValues(operation, status).Inc()
}

// UpdateDatabaseSize updates database size metrics
func (m *DatastoreMetrics) UpdateDatabaseSize(sizeBytes int64) {
	m.dbSizeBytesGauge.Set(float64(sizeBytes))
}

// UpdateTableRowCount updates table row count metrics
func (m *DatastoreMetrics) UpdateTableRowCount(table string, rowCount int64) {
	m.dbTableRowCountGauge.WithLabelValues(table).Set(float64(rowCount))
}

// parseTableFromOperation extracts table name from operations like "db_query:artworks"
// Returns the operation and table separately, or "unknown" if no table specified
func parseTableFromOperation(operation string) (op, table string) {
	parts := strings.SplitN(operation, ":", SplitPartsCount)
	if len(parts) == SplitPartsCount {
		return parts[0], parts[1]
	}
	return operation, LabelUnknown
}

// RecordOperation implements the Recorder interface.
// For database operations, use format "operation:table" (e.g., "db_query:artworks").
// Searches use "search:<type>" and cache operations "cache_get:<cache type>".
func (m *DatastoreMetrics) RecordOperation(operation, status string) {
	op, table := parseTableFromOperation(operation)

	switch op {
	case OpDbQuery, OpDbInsert, OpDbUpdate, OpDbDelete:
		m.RecordDbOperation(op, table, status)
	case OpTransaction:
		m.RecordTransaction(status)
	case OpSearch, OpStatistics:
		m.RecordSearchOperation(table, status)
	case OpCacheGet, OpCacheSet, OpCacheDelete:
		m.RecordCacheOperation(table, op, status)
	case OpMigration:
		m.RecordMigration(table, status)
	}
}

// RecordDuration implements the Recorder interface.
func (m *DatastoreMetrics) RecordDuration(operation string, seconds float64) {
	op, table := parseTableFromOperation(operation)

	switch op {
	case OpDbQuery, OpDbInsert, OpDbUpdate, OpDbDelete:
		m.RecordDbOperationDuration(op, table, seconds)
	case OpTransaction:
		m.RecordTransactionDuration(seconds)
	case OpSearch, OpStatistics:
		m.RecordSearchDuration(table, seconds)
	}
}

// RecordError implements the Recorder interface.
func (m *DatastoreMetrics) RecordError(operation, errorType string) {
	op, table := parseTableFromOperation(operation)

	switch op {
	case OpDbQuery, OpDbInsert, OpDbUpdate, OpDbDelete:
		m.dbOperationErrorsTotal.WithLabelValues(op, table, errorType).Inc()
		// Also increment operation counter with error status
		m.dbOperationsTotal.WithLabelValues(op, table, LabelError).Inc()
	case OpTransaction:
		m.dbTransactionErrorsTotal.WithLabelValues(table, errorType).Inc()
		m.dbTransactionsTotal.WithLabelValues(LabelError).Inc()
	case OpSearch, OpStatistics:
		m.searchOperationsTotal.WithLabelValues(table, LabelError).Inc()
	case OpMigration:
		m.migrationOperationsTotal.WithLabelValues(table, LabelError).Inc()
	}
}
