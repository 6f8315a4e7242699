package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OcclusionLevel describes how much of an artwork is hidden in a photo.
type OcclusionLevel string

const (
	OcclusionNone    OcclusionLevel = "none"
	OcclusionPartial OcclusionLevel = "partial"
	OcclusionHeavy   OcclusionLevel = "heavy"
)

// Valid reports whether l is empty or one of the known levels.
func (l OcclusionLevel) Valid() bool {
	switch l {
	case "", OcclusionNone, OcclusionPartial, OcclusionHeavy:
		return true
	}
	return false
}

// LightingQuality grades the lighting on an artwork in a photo.
type LightingQuality string

const (
	LightingGood     LightingQuality = "good"
	LightingModerate LightingQuality = "moderate"
	LightingPoor     LightingQuality = "poor"
)

// Valid reports whether q is empty or one of the known grades.
func (q LightingQuality) Valid() bool {
	switch q {
	case "", LightingGood, LightingModerate, LightingPoor:
		return true
	}
	return false
}

// ArtworkAppearance records one detected occurrence of an artwork in an
// installation photo. The bounding box is normalized to the photo size.
type ArtworkAppearance struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	ArtworkID string `gorm:"type:varchar(36);not null;index:idx_appearances_artwork_photo,priority:1"`
	PhotoID   string `gorm:"type:varchar(36);not null;index:idx_appearances_artwork_photo,priority:2;index"`

	BBoxX      float64 `gorm:"column:bbox_x;not null"`
	BBoxY      float64 `gorm:"column:bbox_y;not null"`
	BBoxWidth  float64 `gorm:"column:bbox_width;not null"`
	BBoxHeight float64 `gorm:"column:bbox_height;not null"`

	DetectionConfidence float64 `gorm:"not null"`
	MatchingConfidence  float64 `gorm:"not null;index"`

	Verified         bool   `gorm:"not null;default:false;index"`
	VerifiedBy       string `gorm:"type:varchar(200)"`
	VerificationDate *time.Time
	Notes            string `gorm:"type:text"`

	CroppedImagePath string `gorm:"type:varchar(500)"`
	Features         datatypes.JSON

	VisiblePercentage *float64        // [0,1]
	OcclusionLevel    OcclusionLevel  `gorm:"type:varchar(20)"`
	LightingQuality   LightingQuality `gorm:"type:varchar(20)"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM.
func (ArtworkAppearance) TableName() string {
	return "artwork_appearances"
}

// BeforeCreate assigns a fresh identifier.
func (a *ArtworkAppearance) BeforeCreate(*gorm.DB) error {
	a.ID = newID()
	return nil
}

// BeforeSave stores the verification time in UTC.
func (a *ArtworkAppearance) BeforeSave(*gorm.DB) error {
	toUTC(&a.VerificationDate)
	return nil
}

// Validate reports the first invariant the appearance breaks.
func (a ArtworkAppearance) Validate() error {
	v := validator{entity: "artwork appearance"}
	v.required("artwork_id", a.ArtworkID)
	v.required("photo_id", a.PhotoID)
	v.unit("bbox_x", a.BBoxX)
	v.unit("bbox_y", a.BBoxY)
	v.unit("bbox_width", a.BBoxWidth)
	v.unit("bbox_height", a.BBoxHeight)
	v.unit("detection_confidence", a.DetectionConfidence)
	v.unit("matching_confidence", a.MatchingConfidence)
	v.optionalUnit("visible_percentage", a.VisiblePercentage)
	v.check("occlusion_level", a.OcclusionLevel.Valid(), "must be none, partial or heavy", a.OcclusionLevel)
	v.check("lighting_quality", a.LightingQuality.Valid(), "must be good, moderate or poor", a.LightingQuality)
	return v.err
}

// ArtworkAppearancePatch lists the appearance columns an update may change.
// The linked artwork and photo are fixed at creation.
type ArtworkAppearancePatch struct {
	BBoxX               *float64
	BBoxY               *float64
	BBoxWidth           *float64
	BBoxHeight          *float64
	DetectionConfidence *float64
	MatchingConfidence  *float64
	Verified            *bool
	VerifiedBy          *string
	VerificationDate    *time.Time
	Notes               *string
	CroppedImagePath    *string
	Features            *datatypes.JSON
	VisiblePercentage   *float64
	OcclusionLevel      *OcclusionLevel
	LightingQuality     *LightingQuality
}

// Changes implements Patch.
func (p ArtworkAppearancePatch) Changes() (map[string]any, error) {
	v := validator{entity: "artwork appearance"}
	c := changeSet{}

	units := []struct {
		column string
		value  *float64
	}{
		{"bbox_x", p.BBoxX},
		{"bbox_y", p.BBoxY},
		{"bbox_width", p.BBoxWidth},
		{"bbox_height", p.BBoxHeight},
		{"detection_confidence", p.DetectionConfidence},
		{"matching_confidence", p.MatchingConfidence},
		{"visible_percentage", p.VisiblePercentage},
	}
	for _, u := range units {
		v.optionalUnit(u.column, u.value)
		c.setFloat(u.column, u.value)
	}

	c.setBool("verified", p.Verified)
	c.setString("verified_by", p.VerifiedBy)
	c.setTime("verification_date", p.VerificationDate)
	c.setString("notes", p.Notes)
	c.setString("cropped_image_path", p.CroppedImagePath)
	c.setJSON("features", p.Features)
	if p.OcclusionLevel != nil {
		v.check("occlusion_level", p.OcclusionLevel.Valid(), "must be none, partial or heavy", *p.OcclusionLevel)
		c.set("occlusion_level", string(*p.OcclusionLevel))
	}
	if p.LightingQuality != nil {
		v.check("lighting_quality", p.LightingQuality.Valid(), "must be good, moderate or poor", *p.LightingQuality)
		c.set("lighting_quality", string(*p.LightingQuality))
	}

	if v.err != nil {
		return nil, v.err
	}
	return c, nil
}
