package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/entities"
)

// ExhibitionRepository provides exhibition queries.
type ExhibitionRepository interface {
	Create(ctx context.Context, exhibition *entities.Exhibition) (*entities.Exhibition, error)
	GetByID(ctx context.Context, id string) (*entities.Exhibition, bool, error)
	GetAll(ctx context.Context, skip, limit int) ([]entities.Exhibition, error)
	Update(ctx context.Context, id string, patch entities.ExhibitionPatch) (*entities.Exhibition, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)

	SearchByName(ctx context.Context, name string, exact bool) ([]entities.Exhibition, error)
	SearchByMuseum(ctx context.Context, museum string) ([]entities.Exhibition, error)
	// GetByDateRange returns exhibitions whose run intersects [start, end].
	// A nil bound is open. Exhibitions missing the date a bound is compared
	// against are excluded.
	GetByDateRange(ctx context.Context, start, end *time.Time) ([]entities.Exhibition, error)
	// GetCurrent returns exhibitions with start_date <= now <= end_date.
	// now comes from the repository clock and is compared in UTC.
	GetCurrent(ctx context.Context) ([]entities.Exhibition, error)
	// GetWithPhotos returns the exhibition with Photos loaded.
	GetWithPhotos(ctx context.Context, id string) (*entities.Exhibition, bool, error)
}

type exhibitionRepository struct {
	*Store[entities.Exhibition]
}

// NewExhibitionRepository creates an ExhibitionRepository bound to db.
func NewExhibitionRepository(db *gorm.DB, opts ...Option) ExhibitionRepository {
	return &exhibitionRepository{Store: NewStore[entities.Exhibition](db, opts...)}
}

func (r *exhibitionRepository) Update(ctx context.Context, id string, patch entities.ExhibitionPatch) (*entities.Exhibition, bool, error) {
	return r.Store.Update(ctx, id, patch)
}

func (r *exhibitionRepository) SearchByName(ctx context.Context, name string, exact bool) ([]entities.Exhibition, error) {
	return r.find(ctx, "exhibition_name", textMatch("name", name, exact))
}

func (r *exhibitionRepository) SearchByMuseum(ctx context.Context, museum string) ([]entities.Exhibition, error) {
	return r.find(ctx, "exhibition_museum", textMatch("museum", museum, false))
}

func (r *exhibitionRepository) GetByDateRange(ctx context.Context, start, end *time.Time) ([]entities.Exhibition, error) {
	return r.find(ctx, "exhibition_dates", func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("end_date >= ?", start.UTC())
		}
		if end != nil {
			db = db.Where("start_date <= ?", end.UTC())
		}
		return db
	})
}

func (r *exhibitionRepository) GetCurrent(ctx context.Context) ([]entities.Exhibition, error) {
	now := r.opts.now()
	return r.find(ctx, "exhibition_current", func(db *gorm.DB) *gorm.DB {
		return db.Where("start_date <= ? AND end_date >= ?", now, now)
	})
}

func (r *exhibitionRepository) GetWithPhotos(ctx context.Context, id string) (*entities.Exhibition, bool, error) {
	return r.first(ctx, "get_with_photos", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Photos", orderByCreation).Where("id = ?", id)
	})
}
