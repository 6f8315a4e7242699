package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// InstallationPhotoRepository provides installation photo queries.
type InstallationPhotoRepository interface {
	Create(ctx context.Context, photo *entities.InstallationPhoto) (*entities.InstallationPhoto, error)
	GetByID(ctx context.Context, id string) (*entities.InstallationPhoto, bool, error)
	GetAll(ctx context.Context, skip, limit int) ([]entities.InstallationPhoto, error)
	Update(ctx context.Context, id string, patch entities.InstallationPhotoPatch) (*entities.InstallationPhoto, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)

	GetByExhibition(ctx context.Context, exhibitionID string) ([]entities.InstallationPhoto, error)
	GetUnprocessed(ctx context.Context) ([]entities.InstallationPhoto, error)
	// MarkProcessed sets processed and stamps processing_date. Detection
	// results are stored when non-empty and left untouched otherwise.
	MarkProcessed(ctx context.Context, id string, detectionResults datatypes.JSON) (bool, error)
	SearchByPhotographer(ctx context.Context, photographer string) ([]entities.InstallationPhoto, error)
	GetByQualityRange(ctx context.Context, minQuality, maxQuality *float64) ([]entities.InstallationPhoto, error)
	// GetByFilename returns the first photo with the given original filename.
	GetByFilename(ctx context.Context, filename string) (*entities.InstallationPhoto, bool, error)
}

type installationPhotoRepository struct {
	*Store[entities.InstallationPhoto]
}

// NewInstallationPhotoRepository creates an InstallationPhotoRepository bound to db.
func NewInstallationPhotoRepository(db *gorm.DB, opts ...Option) InstallationPhotoRepository {
	return &installationPhotoRepository{Store: NewStore[entities.InstallationPhoto](db, opts...)}
}

func (r *installationPhotoRepository) Update(ctx context.Context, id string, patch entities.InstallationPhotoPatch) (*entities.InstallationPhoto, bool, error) {
	return r.Store.Update(ctx, id, patch)
}

func (r *installationPhotoRepository) GetByExhibition(ctx context.Context, exhibitionID string) ([]entities.InstallationPhoto, error) {
	return r.find(ctx, "photo_exhibition", equals("exhibition_id", exhibitionID))
}

func (r *installationPhotoRepository) GetUnprocessed(ctx context.Context) ([]entities.InstallationPhoto, error) {
	return r.find(ctx, "photo_unprocessed", equals("processed", false))
}

func (r *installationPhotoRepository) MarkProcessed(ctx context.Context, id string, detectionResults datatypes.JSON) (updated bool, err error) {
	start := time.Now()
	defer func() { r.observe(metrics.OpDbUpdate, start, err) }()

	changes := map[string]any{
		"processed":       true,
		"processing_date": r.opts.now(),
	}
	if len(detectionResults) > 0 {
		changes["detection_results"] = detectionResults
	}
	_, updated, err = r.apply(ctx, id, changes, nil)
	return updated, err
}

func (r *installationPhotoRepository) SearchByPhotographer(ctx context.Context, photographer string) ([]entities.InstallationPhoto, error) {
	return r.find(ctx, "photo_photographer", textMatch("photographer", photographer, false))
}

func (r *installationPhotoRepository) GetByQualityRange(ctx context.Context, minQuality, maxQuality *float64) ([]entities.InstallationPhoto, error) {
	return r.find(ctx, "photo_quality", between("quality_score", minQuality, maxQuality))
}

func (r *installationPhotoRepository) GetByFilename(ctx context.Context, filename string) (*entities.InstallationPhoto, bool, error) {
	return r.first(ctx, "get_by_filename", equals("original_filename", filename))
}
