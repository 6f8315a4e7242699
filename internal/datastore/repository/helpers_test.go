package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/artidentifier/artid/internal/datastore/entities"
)

func ptr[T any](v T) *T { return &v }

// newTestDB opens a migrated SQLite database in a temporary directory with
// foreign keys enforced.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "catalog.db") + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entities.Artwork{},
		&entities.Exhibition{},
		&entities.InstallationPhoto{},
		&entities.ArtworkAppearance{},
	))
	return db
}

// fixture creates one exhibition, one photo and one artwork to hang
// appearances on.
type fixture struct {
	artwork    *entities.Artwork
	exhibition *entities.Exhibition
	photo      *entities.InstallationPhoto
}

func newFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := t.Context()

	artwork, err := NewArtworkRepository(db).Create(ctx, &entities.Artwork{
		Title:         "The Starry Night",
		Artist:        "Vincent van Gogh",
		CatalogNumber: ptr("MOMA-472-1941"),
	})
	require.NoError(t, err)

	exhibition, err := NewExhibitionRepository(db).Create(ctx, &entities.Exhibition{
		Name:   "Post-Impressionism",
		Museum: "Museum of Modern Art",
		Type:   entities.ExhibitionPermanent,
	})
	require.NoError(t, err)

	photo, err := NewInstallationPhotoRepository(db).Create(ctx, &entities.InstallationPhoto{
		ExhibitionID:     exhibition.ID,
		ImagePath:        "/data/raw/gallery_5_wall_a.jpg",
		OriginalFilename: "gallery_5_wall_a.jpg",
	})
	require.NoError(t, err)

	return fixture{artwork: artwork, exhibition: exhibition, photo: photo}
}

func (f fixture) appearance(verified bool, confidence float64) *entities.ArtworkAppearance {
	return &entities.ArtworkAppearance{
		ArtworkID:           f.artwork.ID,
		PhotoID:             f.photo.ID,
		BBoxX:               0.1,
		BBoxY:               0.2,
		BBoxWidth:           0.3,
		BBoxHeight:          0.4,
		DetectionConfidence: 0.9,
		MatchingConfidence:  confidence,
		Verified:            verified,
	}
}

// recordingRecorder captures metric calls.
type recordingRecorder struct {
	operations []string
	errors     []string
}

func (r *recordingRecorder) RecordOperation(operation, status string) {
	r.operations = append(r.operations, operation+"="+status)
}

func (r *recordingRecorder) RecordDuration(string, float64) {}

func (r *recordingRecorder) RecordError(operation, errorType string) {
	r.errors = append(r.errors, operation+"="+errorType)
}
