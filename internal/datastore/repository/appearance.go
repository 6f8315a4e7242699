package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/observability/metrics"
)

// Statistics summarizes artwork appearances.
type Statistics struct {
	TotalAppearances      int64   `json:"total_appearances" yaml:"total_appearances"`
	VerifiedAppearances   int64   `json:"verified_appearances" yaml:"verified_appearances"`
	UnverifiedAppearances int64   `json:"unverified_appearances" yaml:"unverified_appearances"`
	VerificationRate      float64 `json:"verification_rate" yaml:"verification_rate"`   // 0 when there are no appearances
	AverageConfidence     float64 `json:"average_confidence" yaml:"average_confidence"` // mean matching confidence, 0 when there are no appearances
}

// ArtworkAppearanceRepository provides artwork appearance queries.
type ArtworkAppearanceRepository interface {
	Create(ctx context.Context, appearance *entities.ArtworkAppearance) (*entities.ArtworkAppearance, error)
	GetByID(ctx context.Context, id string) (*entities.ArtworkAppearance, bool, error)
	GetAll(ctx context.Context, skip, limit int) ([]entities.ArtworkAppearance, error)
	Update(ctx context.Context, id string, patch entities.ArtworkAppearancePatch) (*entities.ArtworkAppearance, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)

	GetByArtwork(ctx context.Context, artworkID string) ([]entities.ArtworkAppearance, error)
	GetByPhoto(ctx context.Context, photoID string) ([]entities.ArtworkAppearance, error)
	// GetByArtworkAndPhoto returns the first appearance linking the two.
	GetByArtworkAndPhoto(ctx context.Context, artworkID, photoID string) (*entities.ArtworkAppearance, bool, error)
	GetVerified(ctx context.Context) ([]entities.ArtworkAppearance, error)
	GetUnverified(ctx context.Context) ([]entities.ArtworkAppearance, error)
	GetByConfidenceRange(ctx context.Context, minConfidence, maxConfidence *float64) ([]entities.ArtworkAppearance, error)
	// Verify marks the appearance verified by verifiedBy and stamps
	// verification_date. Notes replace existing notes when non-empty.
	Verify(ctx context.Context, id, verifiedBy, notes string) (bool, error)
	GetStatistics(ctx context.Context) (*Statistics, error)
}

type artworkAppearanceRepository struct {
	*Store[entities.ArtworkAppearance]
}

// NewArtworkAppearanceRepository creates an ArtworkAppearanceRepository bound to db.
func NewArtworkAppearanceRepository(db *gorm.DB, opts ...Option) ArtworkAppearanceRepository {
	return &artworkAppearanceRepository{Store: NewStore[entities.ArtworkAppearance](db, opts...)}
}

func (r *artworkAppearanceRepository) Update(ctx context.Context, id string, patch entities.ArtworkAppearancePatch) (*entities.ArtworkAppearance, bool, error) {
	return r.Store.Update(ctx, id, patch)
}

func (r *artworkAppearanceRepository) GetByArtwork(ctx context.Context, artworkID string) ([]entities.ArtworkAppearance, error) {
	return r.find(ctx, "appearance_artwork", equals("artwork_id", artworkID))
}

func (r *artworkAppearanceRepository) GetByPhoto(ctx context.Context, photoID string) ([]entities.ArtworkAppearance, error) {
	return r.find(ctx, "appearance_photo", equals("photo_id", photoID))
}

func (r *artworkAppearanceRepository) GetByArtworkAndPhoto(ctx context.Context, artworkID, photoID string) (*entities.ArtworkAppearance, bool, error) {
	return r.first(ctx, "get_by_artwork_and_photo", func(db *gorm.DB) *gorm.DB {
		return db.Where("artwork_id = ? AND photo_id = ?", artworkID, photoID)
	})
}

func (r *artworkAppearanceRepository) GetVerified(ctx context.Context) ([]entities.ArtworkAppearance, error) {
	return r.find(ctx, "appearance_verified", equals("verified", true))
}

func (r *artworkAppearanceRepository) GetUnverified(ctx context.Context) ([]entities.ArtworkAppearance, error) {
	return r.find(ctx, "appearance_unverified", equals("verified", false))
}

func (r *artworkAppearanceRepository) GetByConfidenceRange(ctx context.Context, minConfidence, maxConfidence *float64) ([]entities.ArtworkAppearance, error) {
	return r.find(ctx, "appearance_confidence", between("matching_confidence", minConfidence, maxConfidence))
}

func (r *artworkAppearanceRepository) Verify(ctx context.Context, id, verifiedBy, notes string) (updated bool, err error) {
	start := time.Now()
	defer func() { r.observe(metrics.OpDbUpdate, start, err) }()

	changes := map[string]any{
		"verified":          true,
		"verified_by":       verifiedBy,
		"verification_date": r.opts.now(),
	}
	if notes != "" {
		changes["notes"] = notes
	}
	_, updated, err = r.apply(ctx, id, changes, nil)
	return updated, err
}

// statisticsRow receives the aggregate query.
type statisticsRow struct {
	Total         int64
	Verified      int64
	AvgConfidence float64
}

func (r *artworkAppearanceRepository) GetStatistics(ctx context.Context) (stats *Statistics, err error) {
	start := time.Now()
	key := metrics.OpStatistics + ":" + metrics.LabelStatistics
	defer func() {
		r.opts.recorder.RecordDuration(key, time.Since(start).Seconds())
		if err != nil {
			r.opts.recorder.RecordError(key, errorType(err))
			return
		}
		r.opts.recorder.RecordOperation(key, metrics.LabelSuccess)
	}()

	var row statisticsRow
	err = r.db.WithContext(ctx).
		Model(&entities.ArtworkAppearance{}).
		Select("COUNT(*) AS total, " +
			"COALESCE(SUM(CASE WHEN verified THEN 1 ELSE 0 END), 0) AS verified, " +
			"COALESCE(AVG(matching_confidence), 0) AS avg_confidence").
		Scan(&row).Error
	if err != nil {
		return nil, readError(err, "statistics", r.table)
	}

	stats = &Statistics{
		TotalAppearances:      row.Total,
		VerifiedAppearances:   row.Verified,
		UnverifiedAppearances: row.Total - row.Verified,
		AverageConfidence:     row.AvgConfidence,
	}
	if row.Total > 0 {
		stats.VerificationRate = float64(row.Verified) / float64(row.Total)
	}
	return stats, nil
}
