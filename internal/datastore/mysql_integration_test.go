package datastore

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/datastore/entities"
)

// TestMySQLServerPool runs the catalog against a real MySQL server: the
// bounded server pool, concurrent sessions and cascade deletes.
func TestMySQLServerPool(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("artwork_db"),
		tcmysql.WithUsername("artid"),
		tcmysql.WithPassword("artid-test"),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	e, err := NewEngine(conf.DatabaseSettings{
		URL: "mysql+pymysql://artid:artid-test@" + host + ":" + port.Port() + "/artwork_db",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	require.NoError(t, e.Migrate(ctx))

	assert.Equal(t, 30, e.sqlDB.Stats().MaxOpenConnections)

	info, err := e.Introspect(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Version, "8."), info.Version)
	require.NotNil(t, info.Pool)
	assert.Equal(t, ServerPoolSize, info.Pool.Size)
	assert.NotContains(t, info.URL, "artid-test")

	var ex entities.Exhibition
	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		ex = entities.Exhibition{Name: "Impressionism", Museum: "Musée d'Orsay"}
		_, err := s.Exhibitions.Create(ctx, &ex)
		return err
	}))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Go(func() {
			errs <- e.WithSession(ctx, func(s *Session) error {
				_, err := s.Photos.Create(ctx, &entities.InstallationPhoto{
					ExhibitionID: ex.ID,
					ImagePath:    "/photos/gallery.jpg",
				})
				return err
			})
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		n, err := s.Photos.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(workers), n)

		deleted, err := s.Exhibitions.Delete(ctx, ex.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		n, err = s.Photos.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}
