package diagnostics

import (
	"context"

	"github.com/artidentifier/artid/internal/catalog"
	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/datastore/repository"
)

// QuickCheck is the result of exercising the read paths of every repository.
type QuickCheck struct {
	Counts             catalog.Counts        `yaml:"counts"`
	VanGoghWorks       int                   `yaml:"van_gogh_works"`
	StarryNightTitles  int                   `yaml:"starry_night_titles"`
	CatalogNumberFound bool                  `yaml:"catalog_number_found"`
	SampleArtwork      string                `yaml:"sample_artwork,omitempty"`
	Statistics         repository.Statistics `yaml:"statistics"`
}

// RunQuickCheck runs searches and a catalog number lookup in one session
// scope, then reads the per-table counts and the appearance statistics
// through svc. Finding nothing is not a failure.
func RunQuickCheck(ctx context.Context, engine *datastore.Engine, svc *catalog.Service) (*QuickCheck, error) {
	check := &QuickCheck{}
	err := engine.WithSession(ctx, func(s *datastore.Session) error {
		vanGogh, err := s.Artworks.SearchByArtist(ctx, "Van Gogh", false)
		if err != nil {
			return err
		}
		check.VanGoghWorks = len(vanGogh)

		starryNight, err := s.Artworks.SearchByTitle(ctx, "Starry Night", false)
		if err != nil {
			return err
		}
		check.StarryNightTitles = len(starryNight)

		artwork, found, err := s.Artworks.GetByCatalogNumber(ctx, SampleCatalogNumber)
		if err != nil {
			return err
		}
		check.CatalogNumberFound = found
		if found {
			check.SampleArtwork = artwork.Title
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if check.Counts, err = svc.Counts(ctx); err != nil {
		return nil, err
	}
	if check.Statistics, err = svc.Statistics(ctx); err != nil {
		return nil, err
	}
	return check, nil
}
