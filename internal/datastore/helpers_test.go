package datastore

import (
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

func ptr[T any](v T) *T { return &v }

// sqliteSettings points at a fresh database file under the test's temp dir.
func sqliteSettings(t *testing.T) conf.DatabaseSettings {
	t.Helper()
	return conf.DatabaseSettings{
		URL: "sqlite:///" + filepath.Join(t.TempDir(), "data", "artwork_db.sqlite"),
	}
}

// newTestEngine opens a migrated SQLite engine with metrics on a private
// registry.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)

	e, err := NewEngine(sqliteSettings(t), append([]Option{WithMetrics(m)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })

	require.NoError(t, e.Migrate(t.Context()))
	return e, registry
}

// counterValue sums the counter series of name whose labels include want.
func counterValue(t *testing.T, registry *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()

	families, err := registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if hasLabels(m, want) {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func hasLabels(m *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, pair := range m.GetLabel() {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
