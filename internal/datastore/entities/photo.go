package entities

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InstallationPhoto is a photograph taken inside an exhibition. The detection
// pipeline reads unprocessed photos and records its output in DetectionResults.
type InstallationPhoto struct {
	ID           string `gorm:"primaryKey;type:varchar(36)"`
	ExhibitionID string `gorm:"type:varchar(36);not null;index"`

	ImagePath        string `gorm:"type:varchar(500);not null"`
	OriginalFilename string `gorm:"type:varchar(255)"`
	FileSize         *int64 // bytes
	Width            *int   // pixels
	Height           *int   // pixels
	Format           string `gorm:"type:varchar(10)"`

	CameraMake   string     `gorm:"type:varchar(100)"`
	CameraModel  string     `gorm:"type:varchar(100)"`
	CaptureDate  *time.Time `gorm:"index"`
	Photographer string     `gorm:"type:varchar(200)"`

	Processed        bool `gorm:"not null;default:false;index"`
	ProcessingDate   *time.Time
	DetectionResults datatypes.JSON

	Room     string `gorm:"type:varchar(100)"`
	Wall     string `gorm:"type:varchar(100)"`
	ViewType string `gorm:"type:varchar(50)"` // frontal, angled, overview, detail
	Notes    string `gorm:"type:text"`

	QualityScore *float64 // [0,1]

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Appearances []ArtworkAppearance `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (InstallationPhoto) TableName() string {
	return "installation_photos"
}

// BeforeCreate assigns a fresh identifier.
func (p *InstallationPhoto) BeforeCreate(*gorm.DB) error {
	p.ID = newID()
	return nil
}

// BeforeSave stores capture and processing times in UTC.
func (p *InstallationPhoto) BeforeSave(*gorm.DB) error {
	toUTC(&p.CaptureDate)
	toUTC(&p.ProcessingDate)
	return nil
}

// Validate reports the first invariant the photo breaks.
func (p InstallationPhoto) Validate() error {
	v := validator{entity: "installation photo"}
	v.required("exhibition_id", p.ExhibitionID)
	v.required("image_path", p.ImagePath)
	v.nonNegativeInt("file_size", p.FileSize)
	v.check("width", p.Width == nil || *p.Width >= 0, "must not be negative", p.Width)
	v.check("height", p.Height == nil || *p.Height >= 0, "must not be negative", p.Height)
	v.optionalUnit("quality_score", p.QualityScore)
	return v.err
}

// InstallationPhotoPatch lists the photo columns an update may change. The
// owning exhibition is fixed at creation.
type InstallationPhotoPatch struct {
	ImagePath        *string
	OriginalFilename *string
	FileSize         *int64
	Width            *int
	Height           *int
	Format           *string
	CameraMake       *string
	CameraModel      *string
	CaptureDate      *time.Time
	Photographer     *string
	Processed        *bool
	ProcessingDate   *time.Time
	DetectionResults *datatypes.JSON
	Room             *string
	Wall             *string
	ViewType         *string
	Notes            *string
	QualityScore     *float64
}

// Changes implements Patch.
func (p InstallationPhotoPatch) Changes() (map[string]any, error) {
	v := validator{entity: "installation photo"}
	c := changeSet{}

	if p.ImagePath != nil {
		v.required("image_path", *p.ImagePath)
		c.set("image_path", *p.ImagePath)
	}
	c.setString("original_filename", p.OriginalFilename)
	v.nonNegativeInt("file_size", p.FileSize)
	c.setInt64("file_size", p.FileSize)
	v.check("width", p.Width == nil || *p.Width >= 0, "must not be negative", p.Width)
	v.check("height", p.Height == nil || *p.Height >= 0, "must not be negative", p.Height)
	c.setInt("width", p.Width)
	c.setInt("height", p.Height)
	c.setString("format", p.Format)
	c.setString("camera_make", p.CameraMake)
	c.setString("camera_model", p.CameraModel)
	c.setTime("capture_date", p.CaptureDate)
	c.setString("photographer", p.Photographer)
	c.setBool("processed", p.Processed)
	c.setTime("processing_date", p.ProcessingDate)
	c.setJSON("detection_results", p.DetectionResults)
	c.setString("room", p.Room)
	c.setString("wall", p.Wall)
	c.setString("view_type", p.ViewType)
	c.setString("notes", p.Notes)
	v.optionalUnit("quality_score", p.QualityScore)
	c.setFloat("quality_score", p.QualityScore)

	if v.err != nil {
		return nil, v.err
	}
	return c, nil
}
