package catalog

import (
	"context"

	"gorm.io/datatypes"

	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/datastore/entities"
)

// AddArtwork stores a new artwork.
func (s *Service) AddArtwork(ctx context.Context, artwork *entities.Artwork) (*entities.Artwork, error) {
	var created *entities.Artwork
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		created, err = sess.Artworks.Create(ctx, artwork)
		return err
	})
	return created, err
}

// Artwork returns an artwork with its appearances.
func (s *Service) Artwork(ctx context.Context, id string) (*entities.Artwork, bool, error) {
	var (
		artwork *entities.Artwork
		found   bool
	)
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		artwork, found, err = sess.Artworks.GetWithAppearances(ctx, id)
		return err
	})
	return artwork, found, err
}

// FindArtworks returns artworks whose title or artist contains query,
// ignoring case. Title matches come first; an artwork is listed once.
func (s *Service) FindArtworks(ctx context.Context, query string) ([]entities.Artwork, error) {
	var result []entities.Artwork
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		byTitle, err := sess.Artworks.SearchByTitle(ctx, query, false)
		if err != nil {
			return err
		}
		byArtist, err := sess.Artworks.SearchByArtist(ctx, query, false)
		if err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(byTitle)+len(byArtist))
		for _, list := range [][]entities.Artwork{byTitle, byArtist} {
			for i := range list {
				if _, dup := seen[list[i].ID]; dup {
					continue
				}
				seen[list[i].ID] = struct{}{}
				result = append(result, list[i])
			}
		}
		return nil
	})
	return result, err
}

// DeleteArtwork removes an artwork and, by cascade, its appearances.
func (s *Service) DeleteArtwork(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		deleted, err = sess.Artworks.Delete(ctx, id)
		return err
	})
	if deleted {
		s.InvalidateStatistics()
	}
	return deleted, err
}

// AddExhibition stores a new exhibition.
func (s *Service) AddExhibition(ctx context.Context, exhibition *entities.Exhibition) (*entities.Exhibition, error) {
	var created *entities.Exhibition
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		created, err = sess.Exhibitions.Create(ctx, exhibition)
		return err
	})
	return created, err
}

// Exhibition returns an exhibition with its installation photos.
func (s *Service) Exhibition(ctx context.Context, id string) (*entities.Exhibition, bool, error) {
	var (
		exhibition *entities.Exhibition
		found      bool
	)
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		exhibition, found, err = sess.Exhibitions.GetWithPhotos(ctx, id)
		return err
	})
	return exhibition, found, err
}

// CurrentExhibitions returns the exhibitions running now.
func (s *Service) CurrentExhibitions(ctx context.Context) ([]entities.Exhibition, error) {
	var current []entities.Exhibition
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		current, err = sess.Exhibitions.GetCurrent(ctx)
		return err
	})
	return current, err
}

// DeleteExhibition removes an exhibition with its photos and their appearances.
func (s *Service) DeleteExhibition(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		deleted, err = sess.Exhibitions.Delete(ctx, id)
		return err
	})
	if deleted {
		s.InvalidateStatistics()
	}
	return deleted, err
}

// AddPhoto stores a new installation photo.
func (s *Service) AddPhoto(ctx context.Context, photo *entities.InstallationPhoto) (*entities.InstallationPhoto, error) {
	var created *entities.InstallationPhoto
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		created, err = sess.Photos.Create(ctx, photo)
		return err
	})
	return created, err
}

// PendingPhotos returns photos not yet run through detection.
func (s *Service) PendingPhotos(ctx context.Context) ([]entities.InstallationPhoto, error) {
	var pending []entities.InstallationPhoto
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		pending, err = sess.Photos.GetUnprocessed(ctx)
		return err
	})
	return pending, err
}

// CompletePhoto marks a photo processed and stores its detection results,
// recording every detected appearance in the same transaction.
func (s *Service) CompletePhoto(ctx context.Context, photoID string, results datatypes.JSON, appearances []entities.ArtworkAppearance) (bool, error) {
	var marked bool
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		marked, err = sess.Photos.MarkProcessed(ctx, photoID, results)
		if err != nil || !marked {
			return err
		}
		for i := range appearances {
			appearances[i].PhotoID = photoID
			if _, err := sess.Appearances.Create(ctx, &appearances[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if len(appearances) > 0 {
		s.InvalidateStatistics()
	}
	return marked, nil
}

// RecordAppearance stores a new appearance.
func (s *Service) RecordAppearance(ctx context.Context, appearance *entities.ArtworkAppearance) (*entities.ArtworkAppearance, error) {
	var created *entities.ArtworkAppearance
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		created, err = sess.Appearances.Create(ctx, appearance)
		return err
	})
	if err == nil {
		s.InvalidateStatistics()
	}
	return created, err
}

// VerifyAppearance confirms an appearance on behalf of verifiedBy.
func (s *Service) VerifyAppearance(ctx context.Context, id, verifiedBy, notes string) (bool, error) {
	var verified bool
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		verified, err = sess.Appearances.Verify(ctx, id, verifiedBy, notes)
		return err
	})
	if verified {
		s.InvalidateStatistics()
	}
	return verified, err
}

// Counts returns the number of rows in each catalog table and publishes them
// as table row gauges.
func (s *Service) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.engine.WithSession(ctx, func(sess *datastore.Session) error {
		var err error
		if c.Artworks, err = sess.Artworks.Count(ctx); err != nil {
			return err
		}
		if c.Exhibitions, err = sess.Exhibitions.Count(ctx); err != nil {
			return err
		}
		if c.Photos, err = sess.Photos.Count(ctx); err != nil {
			return err
		}
		c.Appearances, err = sess.Appearances.Count(ctx)
		return err
	})
	if err != nil {
		return Counts{}, err
	}

	if s.metrics != nil {
		s.metrics.UpdateTableRowCount(entities.Artwork{}.TableName(), c.Artworks)
		s.metrics.UpdateTableRowCount(entities.Exhibition{}.TableName(), c.Exhibitions)
		s.metrics.UpdateTableRowCount(entities.InstallationPhoto{}.TableName(), c.Photos)
		s.metrics.UpdateTableRowCount(entities.ArtworkAppearance{}.TableName(), c.Appearances)
	}
	return c, nil
}
