package diagnostics

import (
	"context"
	"time"

	"github.com/artidentifier/artid/internal/datastore"
	"github.com/artidentifier/artid/internal/datastore/entities"
	"github.com/artidentifier/artid/internal/datastore/repository"
)

// Identifying values of the sample rows. Each row is looked up by them before
// it is created, so repeated runs do not add duplicates.
const (
	SampleCatalogNumber  = "MoMA-472.1941"
	SampleExhibitionName = "Van Gogh and the Colors of the Night"
	SamplePhotoFilename  = "exhibition_photo_001.jpg"
)

// SampleData summarizes the sample rows.
type SampleData struct {
	Artwork            string  `yaml:"artwork"`
	Exhibition         string  `yaml:"exhibition"`
	Photo              string  `yaml:"photo"`
	MatchingConfidence float64 `yaml:"matching_confidence"`
	// Created counts rows inserted by this run.
	Created int `yaml:"created"`
}

// CreateSampleData ensures one sample artwork, exhibition, installation photo
// and appearance exist, all in one session scope.
func CreateSampleData(ctx context.Context, engine *datastore.Engine) (*SampleData, error) {
	var summary SampleData
	err := engine.WithSession(ctx, func(s *datastore.Session) error {
		artwork, created, err := sampleArtwork(ctx, s.Artworks)
		if err != nil {
			return err
		}
		summary.Created += created

		exhibition, created, err := sampleExhibition(ctx, s.Exhibitions)
		if err != nil {
			return err
		}
		summary.Created += created

		photo, created, err := samplePhoto(ctx, s.Photos, exhibition.ID)
		if err != nil {
			return err
		}
		summary.Created += created

		appearance, created, err := sampleAppearance(ctx, s.Appearances, artwork.ID, photo.ID)
		if err != nil {
			return err
		}
		summary.Created += created

		summary.Artwork = artwork.Title + " by " + artwork.Artist
		summary.Exhibition = exhibition.Name
		summary.Photo = photo.OriginalFilename
		summary.MatchingConfidence = appearance.MatchingConfidence
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func sampleArtwork(ctx context.Context, repo repository.ArtworkRepository) (*entities.Artwork, int, error) {
	if existing, found, err := repo.GetByCatalogNumber(ctx, SampleCatalogNumber); err != nil || found {
		return existing, 0, err
	}
	catalogNumber := SampleCatalogNumber
	width, height := 73.7, 92.1
	artwork, err := repo.Create(ctx, &entities.Artwork{
		Title:         "The Starry Night",
		Artist:        "Vincent van Gogh",
		Width:         &width,
		Height:        &height,
		Medium:        "Oil on canvas",
		CreationDate:  "1889",
		Description:   "A swirling night sky over a village",
		CatalogNumber: &catalogNumber,
	})
	return artwork, 1, err
}

func sampleExhibition(ctx context.Context, repo repository.ExhibitionRepository) (*entities.Exhibition, int, error) {
	existing, err := repo.SearchByName(ctx, SampleExhibitionName, true)
	if err != nil {
		return nil, 0, err
	}
	if len(existing) > 0 {
		return &existing[0], 0, nil
	}
	start := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	exhibition, err := repo.Create(ctx, &entities.Exhibition{
		Name:        SampleExhibitionName,
		Museum:      "Museum of Modern Art",
		Gallery:     "Gallery 2",
		City:        "New York",
		Country:     "USA",
		StartDate:   &start,
		EndDate:     &end,
		Curator:     "Dr. Sarah Johnson",
		Description: "An exploration of Van Gogh's nocturnal masterpieces",
		Type:        entities.ExhibitionTemporary,
	})
	return exhibition, 1, err
}

func samplePhoto(ctx context.Context, repo repository.InstallationPhotoRepository, exhibitionID string) (*entities.InstallationPhoto, int, error) {
	photos, err := repo.GetByExhibition(ctx, exhibitionID)
	if err != nil {
		return nil, 0, err
	}
	for i := range photos {
		if photos[i].OriginalFilename == SamplePhotoFilename {
			return &photos[i], 0, nil
		}
	}
	width, height := 1920, 1080
	captured := time.Date(2023, 10, 15, 0, 0, 0, 0, time.UTC)
	photo, err := repo.Create(ctx, &entities.InstallationPhoto{
		ExhibitionID:     exhibitionID,
		ImagePath:        "/data/raw/" + SamplePhotoFilename,
		OriginalFilename: SamplePhotoFilename,
		Width:            &width,
		Height:           &height,
		Format:           "jpg",
		CaptureDate:      &captured,
		Photographer:     "Museum Documentation Team",
		Room:             "Gallery 2",
		ViewType:         "overview",
	})
	return photo, 1, err
}

func sampleAppearance(ctx context.Context, repo repository.ArtworkAppearanceRepository, artworkID, photoID string) (*entities.ArtworkAppearance, int, error) {
	if existing, found, err := repo.GetByArtworkAndPhoto(ctx, artworkID, photoID); err != nil || found {
		return existing, 0, err
	}
	visible := 0.85
	appearance, err := repo.Create(ctx, &entities.ArtworkAppearance{
		ArtworkID:           artworkID,
		PhotoID:             photoID,
		BBoxX:               0.2,
		BBoxY:               0.3,
		BBoxWidth:           0.4,
		BBoxHeight:          0.5,
		DetectionConfidence: 0.95,
		MatchingConfidence:  0.87,
		VisiblePercentage:   &visible,
		OcclusionLevel:      entities.OcclusionNone,
		LightingQuality:     entities.LightingGood,
	})
	return appearance, 1, err
}
