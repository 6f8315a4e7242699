package entities

import (
	"time"

	"gorm.io/gorm"
)

// ExhibitionType classifies how long an exhibition stays in place.
type ExhibitionType string

const (
	ExhibitionPermanent ExhibitionType = "permanent"
	ExhibitionTemporary ExhibitionType = "temporary"
	ExhibitionTraveling ExhibitionType = "traveling"
)

// Valid reports whether t is empty or one of the known types.
func (t ExhibitionType) Valid() bool {
	switch t {
	case "", ExhibitionPermanent, ExhibitionTemporary, ExhibitionTraveling:
		return true
	}
	return false
}

// Exhibition is a showing of artworks at a museum, possibly for a bounded period.
type Exhibition struct {
	ID      string `gorm:"primaryKey;type:varchar(36)"`
	Name    string `gorm:"type:varchar(500);not null;index:idx_exhibitions_name"`
	Museum  string `gorm:"type:varchar(200);not null;index:idx_exhibitions_museum"`
	Gallery string `gorm:"type:varchar(200)"`
	City    string `gorm:"type:varchar(100)"`
	Country string `gorm:"type:varchar(100)"`

	StartDate *time.Time `gorm:"index:idx_exhibitions_dates,priority:1"`
	EndDate   *time.Time `gorm:"index:idx_exhibitions_dates,priority:2"`

	Curator     string         `gorm:"type:varchar(200)"`
	Description string         `gorm:"type:text"`
	Type        ExhibitionType `gorm:"column:type;type:varchar(20)"`

	CatalogPublished bool   `gorm:"not null;default:false"`
	CatalogISBN      string `gorm:"column:catalog_isbn;type:varchar(20)"`
	WebsiteURL       string `gorm:"column:website_url;type:varchar(500)"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	// Populated only by ExhibitionRepository.GetWithPhotos
	Photos []InstallationPhoto `gorm:"foreignKey:ExhibitionID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (Exhibition) TableName() string {
	return "exhibitions"
}

// BeforeCreate assigns a fresh identifier.
func (e *Exhibition) BeforeCreate(*gorm.DB) error {
	e.ID = newID()
	return nil
}

// BeforeSave stores the run dates in UTC.
func (e *Exhibition) BeforeSave(*gorm.DB) error {
	toUTC(&e.StartDate)
	toUTC(&e.EndDate)
	return nil
}

// Validate reports the first invariant the exhibition breaks.
func (e Exhibition) Validate() error {
	v := validator{entity: "exhibition"}
	v.required("name", e.Name)
	v.required("museum", e.Museum)
	v.check("type", e.Type.Valid(), "must be permanent, temporary or traveling", e.Type)
	if e.StartDate != nil && e.EndDate != nil {
		v.check("end_date", !e.EndDate.Before(*e.StartDate), "must not precede start_date", *e.EndDate)
	}
	return v.err
}

// ExhibitionPatch lists the exhibition columns an update may change.
// Changes checks the date ordering when both dates are supplied; Check
// repeats it against the stored dates the patch leaves in place.
type ExhibitionPatch struct {
	Name             *string
	Museum           *string
	Gallery          *string
	City             *string
	Country          *string
	StartDate        *time.Time
	EndDate          *time.Time
	Curator          *string
	Description      *string
	Type             *ExhibitionType
	CatalogPublished *bool
	CatalogISBN      *string
	WebsiteURL       *string
}

// Check implements Guard.
func (p ExhibitionPatch) Check(current Exhibition) error {
	start, end := current.StartDate, current.EndDate
	if p.StartDate != nil {
		start = p.StartDate
	}
	if p.EndDate != nil {
		end = p.EndDate
	}
	if start != nil && end != nil && end.Before(*start) {
		return invalid("exhibition", "end_date", "must not precede start_date", *end)
	}
	return nil
}

// Changes implements Patch.
func (p ExhibitionPatch) Changes() (map[string]any, error) {
	v := validator{entity: "exhibition"}
	c := changeSet{}

	if p.Name != nil {
		v.required("name", *p.Name)
		c.set("name", *p.Name)
	}
	if p.Museum != nil {
		v.required("museum", *p.Museum)
		c.set("museum", *p.Museum)
	}
	c.setString("gallery", p.Gallery)
	c.setString("city", p.City)
	c.setString("country", p.Country)
	if p.StartDate != nil && p.EndDate != nil {
		v.check("end_date", !p.EndDate.Before(*p.StartDate), "must not precede start_date", *p.EndDate)
	}
	c.setTime("start_date", p.StartDate)
	c.setTime("end_date", p.EndDate)
	c.setString("curator", p.Curator)
	c.setString("description", p.Description)
	if p.Type != nil {
		v.check("type", p.Type.Valid(), "must be permanent, temporary or traveling", *p.Type)
		c.set("type", string(*p.Type))
	}
	c.setBool("catalog_published", p.CatalogPublished)
	c.setString("catalog_isbn", p.CatalogISBN)
	c.setString("website_url", p.WebsiteURL)

	if v.err != nil {
		return nil, v.err
	}
	return c, nil
}
