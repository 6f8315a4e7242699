package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/datastore/entities"
)

// DimensionFilter bounds artwork dimensions in centimeters. Nil bounds are
// ignored; given bounds are inclusive.
type DimensionFilter struct {
	MinWidth  *float64
	MaxWidth  *float64
	MinHeight *float64
	MaxHeight *float64
}

// ArtworkRepository provides artwork queries.
type ArtworkRepository interface {
	Create(ctx context.Context, artwork *entities.Artwork) (*entities.Artwork, error)
	GetByID(ctx context.Context, id string) (*entities.Artwork, bool, error)
	GetAll(ctx context.Context, skip, limit int) ([]entities.Artwork, error)
	Update(ctx context.Context, id string, patch entities.ArtworkPatch) (*entities.Artwork, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id string) (bool, error)

	// SearchByTitle matches title case-insensitively as a substring, or
	// by equality when exact is set.
	SearchByTitle(ctx context.Context, title string, exact bool) ([]entities.Artwork, error)
	// SearchByArtist matches artist like SearchByTitle matches title.
	SearchByArtist(ctx context.Context, artist string, exact bool) ([]entities.Artwork, error)
	GetByCatalogNumber(ctx context.Context, catalogNumber string) (*entities.Artwork, bool, error)
	SearchByMedium(ctx context.Context, medium string) ([]entities.Artwork, error)
	SearchByDimensions(ctx context.Context, filter DimensionFilter) ([]entities.Artwork, error)
	// GetWithAppearances returns the artwork with Appearances loaded.
	GetWithAppearances(ctx context.Context, id string) (*entities.Artwork, bool, error)
}

type artworkRepository struct {
	*Store[entities.Artwork]
}

// NewArtworkRepository creates an ArtworkRepository bound to db.
func NewArtworkRepository(db *gorm.DB, opts ...Option) ArtworkRepository {
	return &artworkRepository{Store: NewStore[entities.Artwork](db, opts...)}
}

func (r *artworkRepository) Update(ctx context.Context, id string, patch entities.ArtworkPatch) (*entities.Artwork, bool, error) {
	return r.Store.Update(ctx, id, patch)
}

func (r *artworkRepository) SearchByTitle(ctx context.Context, title string, exact bool) ([]entities.Artwork, error) {
	return r.find(ctx, "artwork_title", textMatch("title", title, exact))
}

func (r *artworkRepository) SearchByArtist(ctx context.Context, artist string, exact bool) ([]entities.Artwork, error) {
	return r.find(ctx, "artwork_artist", textMatch("artist", artist, exact))
}

func (r *artworkRepository) GetByCatalogNumber(ctx context.Context, catalogNumber string) (*entities.Artwork, bool, error) {
	return r.first(ctx, "get_by_catalog_number", equals("catalog_number", catalogNumber))
}

func (r *artworkRepository) SearchByMedium(ctx context.Context, medium string) ([]entities.Artwork, error) {
	return r.find(ctx, "artwork_medium", textMatch("medium", medium, false))
}

func (r *artworkRepository) SearchByDimensions(ctx context.Context, filter DimensionFilter) ([]entities.Artwork, error) {
	return r.find(ctx, "artwork_dimensions", func(db *gorm.DB) *gorm.DB {
		db = between("width", filter.MinWidth, filter.MaxWidth)(db)
		return between("height", filter.MinHeight, filter.MaxHeight)(db)
	})
}

func (r *artworkRepository) GetWithAppearances(ctx context.Context, id string) (*entities.Artwork, bool, error) {
	return r.first(ctx, "get_with_appearances", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Appearances", orderByCreation).Where("id = ?", id)
	})
}

// orderByCreation orders preloaded collections deterministically.
func orderByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
