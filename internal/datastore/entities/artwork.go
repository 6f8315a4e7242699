package entities

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Artwork is a catalogued work of art.
// Dimensions are in centimeters. CreationDate is free-form ("1889", "c. 1500",
// "1910-1912"). VisualFeatures and ColorPalette belong to the matching pipeline
// and are stored without interpretation.
type Artwork struct {
	ID     string `gorm:"primaryKey;type:varchar(36)"`
	Title  string `gorm:"type:varchar(500);not null;index:idx_artworks_title"`
	Artist string `gorm:"type:varchar(200);not null;index:idx_artworks_artist"`

	Width  *float64 `gorm:"index:idx_artworks_dimensions,priority:1"`
	Height *float64 `gorm:"index:idx_artworks_dimensions,priority:2"`
	Depth  *float64

	Medium       string `gorm:"type:varchar(200)"`
	Materials    string `gorm:"type:text"`
	CreationDate string `gorm:"type:varchar(50)"`
	Description  string `gorm:"type:text"`
	Provenance   string `gorm:"type:text"`

	// CatalogNumber is NULL when absent so the unique index only binds real values
	CatalogNumber   *string `gorm:"type:varchar(100);uniqueIndex:idx_artworks_catalog_number"`
	AccessionNumber string  `gorm:"type:varchar(100)"`

	Style         string `gorm:"type:varchar(100)"`
	Period        string `gorm:"type:varchar(100)"`
	SubjectMatter string `gorm:"type:text"`

	ReferenceImagePath string `gorm:"type:varchar(500)"`
	ThumbnailPath      string `gorm:"type:varchar(500)"`

	VisualFeatures datatypes.JSON
	ColorPalette   datatypes.JSON

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Populated only by ArtworkRepository.GetWithAppearances
	Appearances []ArtworkAppearance `gorm:"foreignKey:ArtworkID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (Artwork) TableName() string {
	return "artworks"
}

// BeforeCreate assigns a fresh identifier.
func (a *Artwork) BeforeCreate(*gorm.DB) error {
	a.ID = newID()
	if a.CatalogNumber != nil && strings.TrimSpace(*a.CatalogNumber) == "" {
		a.CatalogNumber = nil
	}
	return nil
}

// Validate reports the first invariant the artwork breaks.
func (a Artwork) Validate() error {
	v := validator{entity: "artwork"}
	v.required("title", a.Title)
	v.required("artist", a.Artist)
	v.nonNegative("width", a.Width)
	v.nonNegative("height", a.Height)
	v.nonNegative("depth", a.Depth)
	return v.err
}

// ArtworkPatch lists the artwork columns an update may change.
// A nil field is left untouched. Setting CatalogNumber to "" clears it.
type ArtworkPatch struct {
	Title              *string
	Artist             *string
	Width              *float64
	Height             *float64
	Depth              *float64
	Medium             *string
	Materials          *string
	CreationDate       *string
	Description        *string
	Provenance         *string
	CatalogNumber      *string
	AccessionNumber    *string
	Style              *string
	Period             *string
	SubjectMatter      *string
	ReferenceImagePath *string
	ThumbnailPath      *string
	VisualFeatures     *datatypes.JSON
	ColorPalette       *datatypes.JSON
}

// Changes implements Patch.
func (p ArtworkPatch) Changes() (map[string]any, error) {
	v := validator{entity: "artwork"}
	c := changeSet{}

	if p.Title != nil {
		v.required("title", *p.Title)
		c.set("title", *p.Title)
	}
	if p.Artist != nil {
		v.required("artist", *p.Artist)
		c.set("artist", *p.Artist)
	}
	v.nonNegative("width", p.Width)
	v.nonNegative("height", p.Height)
	v.nonNegative("depth", p.Depth)
	c.setFloat("width", p.Width)
	c.setFloat("height", p.Height)
	c.setFloat("depth", p.Depth)

	c.setString("medium", p.Medium)
	c.setString("materials", p.Materials)
	c.setString("creation_date", p.CreationDate)
	c.setString("description", p.Description)
	c.setString("provenance", p.Provenance)
	if p.CatalogNumber != nil {
		if strings.TrimSpace(*p.CatalogNumber) == "" {
			c.set("catalog_number", nil)
		} else {
			c.set("catalog_number", *p.CatalogNumber)
		}
	}
	c.setString("accession_number", p.AccessionNumber)
	c.setString("style", p.Style)
	c.setString("period", p.Period)
	c.setString("subject_matter", p.SubjectMatter)
	c.setString("reference_image_path", p.ReferenceImagePath)
	c.setString("thumbnail_path", p.ThumbnailPath)
	c.setJSON("visual_features", p.VisualFeatures)
	c.setJSON("color_palette", p.ColorPalette)

	if v.err != nil {
		return nil, v.err
	}
	return c, nil
}
