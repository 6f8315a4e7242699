package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*DatastoreMetrics, *prometheus.Registry) {
	t.Helper()
	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)
	return m, registry
}

func TestNewDatastoreMetricsRejectsDoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	_, err = NewDatastoreMetrics(registry)
	assert.Error(t, err)
}

func TestParseTableFromOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in        string
		wantOp    string
		wantTable string
	}{
		{"db_insert:artworks", OpDbInsert, "artworks"},
		{"search:artwork_title", OpSearch, "artwork_title"},
		{"transaction", OpTransaction, LabelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			op, table := parseTableFromOperation(tt.in)
			assert.Equal(t, tt.wantOp, op)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}

func TestRecorderInterface(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)

	m.RecordOperation("db_insert:artworks", LabelSuccess)
	m.RecordOperation("db_insert:artworks", LabelSuccess)
	m.RecordError("db_insert:artworks", "persistence")
	m.RecordOperation(OpTransaction, LabelCommitted)
	m.RecordOperation("cache_get:statistics", LabelHit)

	assert.InDelta(t, 2, testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues(OpDbInsert, "artworks", LabelSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationsTotal.WithLabelValues(OpDbInsert, "artworks", LabelError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbOperationErrorsTotal.WithLabelValues(OpDbInsert, "artworks", "persistence")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.dbTransactionsTotal.WithLabelValues(LabelCommitted)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheOperationsTotal.WithLabelValues(LabelStatistics, OpCacheGet, LabelHit)), 0)
}

func TestConnectionGauges(t *testing.T) {
	t.Parallel()

	m, registry := newTestMetrics(t)
	m.UpdateConnectionMetrics(12, 11, 1, 30, 2, 4)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}

	require.Contains(t, byName, "artid_db_connections_overflow")
	assert.InDelta(t, 2, byName["artid_db_connections_overflow"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.InDelta(t, 11, byName["artid_db_connections_in_use"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.InDelta(t, 30, byName["artid_db_connections_max"].GetMetric()[0].GetGauge().GetValue(), 0)
}

func TestTransactionDurationObserved(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	m.RecordDuration(OpTransaction, 0.02)
	m.RecordDuration(OpTransaction, 0.03)

	assert.Equal(t, 1, testutil.CollectAndCount(m.dbTransactionDuration))

	ch := make(chan prometheus.Metric, 1)
	m.dbTransactionDuration.Collect(ch)
	var out dto.Metric
	require.NoError(t, (<-ch).Write(&out))
	assert.Equal(t, uint64(2), out.GetHistogram().GetSampleCount())
}

func TestSearchResultSize(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	var sized ResultSizeRecorder = m
	sized.RecordSearchResultSize("artwork_title", 3)
	sized.RecordSearchResultSize("artwork_title", 0)
	sized.RecordSearchResultSize("exhibition_name", 1)

	assert.Equal(t, 2, testutil.CollectAndCount(m.searchResultSizeHist))

	observer, err := m.searchResultSizeHist.GetMetricWithLabelValues("artwork_title")
	require.NoError(t, err)
	var out dto.Metric
	require.NoError(t, observer.(prometheus.Metric).Write(&out))
	assert.Equal(t, uint64(2), out.GetHistogram().GetSampleCount())
	assert.InDelta(t, 3.0, out.GetHistogram().GetSampleSum(), 1e-9)
}
