package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/errors"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkRepository(db)

	in := &entities.Artwork{
		Title:          "Water Lilies",
		Artist:         "Claude Monet",
		Width:          ptr(200.5),
		Height:         ptr(180.0),
		Medium:         "Oil on canvas",
		CreationDate:   "c. 1915",
		CatalogNumber:  ptr("MM-1915-07"),
		Style:          "Impressionism",
		VisualFeatures: datatypes.JSON(`{"embedding":[0.1,0.2]}`),
	}
	created, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, found, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Water Lilies", got.Title)
	assert.Equal(t, "Claude Monet", got.Artist)
	assert.Equal(t, ptr(200.5), got.Width)
	assert.Equal(t, ptr(180.0), got.Height)
	assert.Nil(t, got.Depth)
	assert.Equal(t, "Oil on canvas", got.Medium)
	assert.Equal(t, "c. 1915", got.CreationDate)
	assert.Equal(t, ptr("MM-1915-07"), got.CatalogNumber)
	assert.Equal(t, "Impressionism", got.Style)
	assert.JSONEq(t, `{"embedding":[0.1,0.2]}`, string(got.VisualFeatures))
	assert.Empty(t, got.Appearances)
}

func TestStoreGetByIDMissing(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	got, found, err := NewExhibitionRepository(db).GetByID(t.Context(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestStoreCreateRejectsInvalid(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	repo := NewArtworkRepository(db)

	_, err := repo.Create(t.Context(), &entities.Artwork{Title: "No artist"})
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err))

	count, err := repo.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCatalogNumberUniqueness(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkRepository(db)

	first, err := repo.Create(ctx, &entities.Artwork{Title: "Guernica", Artist: "Pablo Picasso", CatalogNumber: ptr("RS-1937")})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &entities.Artwork{Title: "Copy", Artist: "Unknown", CatalogNumber: ptr("RS-1937")})
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err), "got %v", err)

	got, found, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Guernica", got.Title)

	// Absent catalog numbers never collide
	_, err = repo.Create(ctx, &entities.Artwork{Title: "A", Artist: "X"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entities.Artwork{Title: "B", Artist: "Y", CatalogNumber: ptr("")})
	require.NoError(t, err)
}

func TestForeignKeyViolation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	_, err := NewInstallationPhotoRepository(db).Create(t.Context(), &entities.InstallationPhoto{
		ExhibitionID: "missing",
		ImagePath:    "/tmp/x.jpg",
	})
	require.Error(t, err)
	assert.True(t, errors.IsPersistence(err), "got %v", err)
}

func TestPartialUpdate(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkRepository(db)

	created, err := repo.Create(ctx, &entities.Artwork{
		Title:         "Mona Lisa",
		Artist:        "Leonardo",
		Width:         ptr(53.0),
		Medium:        "Oil on poplar",
		CatalogNumber: ptr("INV-779"),
	})
	require.NoError(t, err)
	before, _, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	updated, found, err := repo.Update(ctx, created.ID, entities.ArtworkPatch{Artist: ptr("New Name")})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "New Name", updated.Artist)
	assert.Equal(t, before.Title, updated.Title)
	assert.Equal(t, before.Width, updated.Width)
	assert.Equal(t, before.Medium, updated.Medium)
	assert.Equal(t, before.CatalogNumber, updated.CatalogNumber)
	assert.True(t, before.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateMissingAndInvalid(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkAppearanceRepository(db)

	got, found, err := repo.Update(ctx, "missing", entities.ArtworkAppearancePatch{Notes: ptr("x")})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	_, _, err = repo.Update(ctx, "missing", entities.ArtworkAppearancePatch{MatchingConfidence: ptr(1.5)})
	assert.True(t, errors.IsPersistence(err))
}

func TestUpdateClearsCatalogNumber(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkRepository(db)

	created, err := repo.Create(ctx, &entities.Artwork{Title: "T", Artist: "A", CatalogNumber: ptr("C-1")})
	require.NoError(t, err)

	updated, found, err := repo.Update(ctx, created.ID, entities.ArtworkPatch{CatalogNumber: ptr("")})
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, updated.CatalogNumber)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewArtworkRepository(db)

	created, err := repo.Create(ctx, &entities.Artwork{Title: "T", Artist: "A"})
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, err := repo.Exists(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExhibitionCascade(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()

	exhibitions := NewExhibitionRepository(db)
	photos := NewInstallationPhotoRepository(db)
	appearances := NewArtworkAppearanceRepository(db)
	f := newFixture(t, db)

	photoIDs := []string{f.photo.ID}
	second, err := photos.Create(ctx, &entities.InstallationPhoto{ExhibitionID: f.exhibition.ID, ImagePath: "/data/raw/b.jpg"})
	require.NoError(t, err)
	photoIDs = append(photoIDs, second.ID)

	var appearanceIDs []string
	for _, photoID := range photoIDs {
		for range 2 {
			a := f.appearance(false, 0.8)
			a.PhotoID = photoID
			created, err := appearances.Create(ctx, a)
			require.NoError(t, err)
			appearanceIDs = append(appearanceIDs, created.ID)
		}
	}

	deleted, err := exhibitions.Delete(ctx, f.exhibition.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	for _, id := range photoIDs {
		_, found, err := photos.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, found, "photo %s survived", id)
	}
	for _, id := range appearanceIDs {
		_, found, err := appearances.GetByID(ctx, id)
		require.NoError(t, err)
		assert.False(t, found, "appearance %s survived", id)
	}

	// The artwork is not owned by the exhibition
	_, found, err := NewArtworkRepository(db).GetByID(ctx, f.artwork.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestArtworkDeleteCascadesToAppearances(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	f := newFixture(t, db)
	appearances := NewArtworkAppearanceRepository(db)

	created, err := appearances.Create(ctx, f.appearance(true, 0.9))
	require.NoError(t, err)

	_, err = NewArtworkRepository(db).Delete(ctx, f.artwork.ID)
	require.NoError(t, err)

	_, found, err := appearances.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, found)

	// The photo is unaffected
	_, found, err = NewInstallationPhotoRepository(db).GetByID(ctx, f.photo.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestGetAllPagination(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	repo := NewExhibitionRepository(db)

	for _, name := range []string{"A", "B", "C", "D", "E"} {
		_, err := repo.Create(ctx, &entities.Exhibition{Name: name, Museum: "Louvre"})
		require.NoError(t, err)
	}

	page, err := repo.GetAll(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	all, err := repo.GetAll(ctx, -3, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := repo.GetAll(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{0, 10, 0, 10},
		{-1, 10, 0, 10},
		{5, 0, 5, DefaultPageSize},
		{5, -2, 5, DefaultPageSize},
		{0, MaxPageSize + 1, 0, MaxPageSize},
	}
	for _, tt := range tests {
		skip, limit := normalizePage(tt.skip, tt.limit)
		assert.Equal(t, tt.wantSkip, skip)
		assert.Equal(t, tt.wantLimit, limit)
	}
}

func TestScopeRollbackLeavesNoRecord(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()

	var createdID string
	errBoom := errors.NewStd("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		created, err := NewArtworkRepository(tx).Create(ctx, &entities.Artwork{Title: "Staged", Artist: "A"})
		require.NoError(t, err)
		createdID = created.ID
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, found, err := NewArtworkRepository(db).GetByID(ctx, createdID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFailedWriteKeepsEarlierWritesOfTransaction(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()

	var keptID string
	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewArtworkRepository(tx)
		kept, err := repo.Create(ctx, &entities.Artwork{Title: "Kept", Artist: "A", CatalogNumber: ptr("K-1")})
		if err != nil {
			return err
		}
		keptID = kept.ID

		_, err = repo.Create(ctx, &entities.Artwork{Title: "Dup", Artist: "B", CatalogNumber: ptr("K-1")})
		assert.True(t, errors.IsPersistence(err))
		return nil
	})
	require.NoError(t, err)

	_, found, err := NewArtworkRepository(db).GetByID(ctx, keptID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStoreRecordsMetrics(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()
	rec := &recordingRecorder{}
	repo := NewArtworkRepository(db, WithRecorder(rec))

	_, err := repo.Create(ctx, &entities.Artwork{Title: "T", Artist: "A"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &entities.Artwork{Title: "T"})
	require.Error(t, err)
	_, err = repo.SearchByTitle(ctx, "t", false)
	require.NoError(t, err)

	assert.Contains(t, rec.operations, "db_insert:artworks=success")
	assert.Contains(t, rec.operations, "search:artwork_title=success")
	assert.Contains(t, rec.errors, "db_insert:artworks=persistence")
}
