package datastore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

func TestWithSessionCommits(t *testing.T) {
	t.Parallel()
	e, registry := newTestEngine(t)
	ctx := t.Context()

	var id string
	err := e.WithSession(ctx, func(s *Session) error {
		a := &entities.Artwork{Title: "Water Lilies", Artist: "Claude Monet"}
		if _, err := s.Artworks.Create(ctx, a); err != nil {
			return err
		}
		id = a.ID
		return nil
	})
	require.NoError(t, err)

	err = e.WithSession(ctx, func(s *Session) error {
		got, found, err := s.Artworks.GetByID(ctx, id)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "Water Lilies", got.Title)
		return nil
	})
	require.NoError(t, err)

	assert.InDelta(t, 2, counterValue(t, registry, "artid_db_transactions_total",
		map[string]string{"status": metrics.LabelCommitted}), 0)
}

func TestWithSessionRollsBackOnError(t *testing.T) {
	t.Parallel()
	e, registry := newTestEngine(t)
	ctx := t.Context()

	errAbort := errors.New("abort")
	err := e.WithSession(ctx, func(s *Session) error {
		if _, err := s.Artworks.Create(ctx, &entities.Artwork{Title: "Discarded", Artist: "Nobody"}); err != nil {
			return err
		}
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		n, err := s.Artworks.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))

	assert.InDelta(t, 1, counterValue(t, registry, "artid_db_transactions_total",
		map[string]string{"status": metrics.LabelRollback}), 0)
}

func TestWithSessionRollsBackOnPanic(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)
	ctx := t.Context()

	assert.PanicsWithValue(t, "boom", func() {
		_ = e.WithSession(ctx, func(s *Session) error {
			_, err := s.Exhibitions.Create(ctx, &entities.Exhibition{Name: "Lost", Museum: "Tate Modern"})
			require.NoError(t, err)
			panic("boom")
		})
	})

	// the single embedded connection must be back in the pool
	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		n, err := s.Exhibitions.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	}))
}

func TestWithSessionFailedWriteKeepsOthers(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)
	ctx := t.Context()

	err := e.WithSession(ctx, func(s *Session) error {
		_, err := s.Artworks.Create(ctx, &entities.Artwork{Title: "A", Artist: "B", CatalogNumber: ptr("CAT-1")})
		require.NoError(t, err)
		_, err = s.Artworks.Create(ctx, &entities.Artwork{Title: "C", Artist: "D", CatalogNumber: ptr("CAT-1")})
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		n, err := s.Artworks.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return nil
	}))
}

func TestWithSessionUsesEngineClock(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	e, _ := newTestEngine(t, WithClock(func() time.Time { return fixed }))
	ctx := t.Context()

	require.NoError(t, e.WithSession(ctx, func(s *Session) error {
		running := &entities.Exhibition{
			Name:      "Summer Show",
			Museum:    "Tate Modern",
			StartDate: ptr(fixed.AddDate(0, -1, 0)),
			EndDate:   ptr(fixed.AddDate(0, 1, 0)),
		}
		closed := &entities.Exhibition{
			Name:      "Spring Show",
			Museum:    "Tate Modern",
			StartDate: ptr(fixed.AddDate(0, -4, 0)),
			EndDate:   ptr(fixed.AddDate(0, -2, 0)),
		}
		_, err := s.Exhibitions.Create(ctx, running)
		require.NoError(t, err)
		_, err = s.Exhibitions.Create(ctx, closed)
		require.NoError(t, err)

		current, err := s.Exhibitions.GetCurrent(ctx)
		require.NoError(t, err)
		require.Len(t, current, 1)
		assert.Equal(t, "Summer Show", current[0].Name)
		return nil
	}))
}

func TestWithSessionCanceledContext(t *testing.T) {
	t.Parallel()
	e, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := e.WithSession(ctx, func(*Session) error { return nil })
	require.Error(t, err)
}
