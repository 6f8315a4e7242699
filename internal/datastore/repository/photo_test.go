package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/artidentifier/artid/internal/datastore/entities"
)

func TestInstallationPhotoQueries(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	f := newFixture(t, db)

	processedAt := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	repo := NewInstallationPhotoRepository(db, WithClock(func() time.Time { return processedAt }))

	other, err := NewExhibitionRepository(db).Create(ctx, &entities.Exhibition{Name: "Other", Museum: "Prado"})
	require.NoError(t, err)

	seed := []entities.InstallationPhoto{
		{ExhibitionID: f.exhibition.ID, ImagePath: "/a.jpg", Photographer: "Jane Doe", QualityScore: ptr(0.9)},
		{ExhibitionID: f.exhibition.ID, ImagePath: "/b.jpg", Photographer: "John Smith", QualityScore: ptr(0.4)},
		{ExhibitionID: other.ID, ImagePath: "/c.jpg", Photographer: "jane doe", QualityScore: ptr(0.7), Processed: true},
	}
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	byExhibition, err := repo.GetByExhibition(ctx, f.exhibition.ID)
	require.NoError(t, err)
	assert.Len(t, byExhibition, 3)

	unprocessed, err := repo.GetUnprocessed(ctx)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 3)

	byPhotographer, err := repo.SearchByPhotographer(ctx, "JANE")
	require.NoError(t, err)
	assert.Len(t, byPhotographer, 2)

	byQuality, err := repo.GetByQualityRange(ctx, ptr(0.7), ptr(0.9))
	require.NoError(t, err)
	assert.Len(t, byQuality, 2)

	byFilename, found, err := repo.GetByFilename(ctx, "gallery_5_wall_a.jpg")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, f.photo.ID, byFilename.ID)
}

func TestMarkProcessed(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	f := newFixture(t, db)

	processedAt := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	repo := NewInstallationPhotoRepository(db, WithClock(func() time.Time { return processedAt }))

	ok, err := repo.MarkProcessed(ctx, f.photo.ID, datatypes.JSON(`{"detections":2}`))
	require.NoError(t, err)
	require.True(t, ok)

	got, _, err := repo.GetByID(ctx, f.photo.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.NotNil(t, got.ProcessingDate)
	assert.True(t, processedAt.Equal(*got.ProcessingDate))
	assert.JSONEq(t, `{"detections":2}`, string(got.DetectionResults))

	// Without results the stored results are kept
	ok, err = repo.MarkProcessed(ctx, f.photo.ID, nil)
	require.NoError(t, err)
	require.True(t, ok)
	got, _, err = repo.GetByID(ctx, f.photo.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"detections":2}`, string(got.DetectionResults))

	unprocessed, err := repo.GetUnprocessed(ctx)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	ok, err = repo.MarkProcessed(ctx, "missing", nil)
	require.NoError(t, err)
	assert.False(t, ok)
}
