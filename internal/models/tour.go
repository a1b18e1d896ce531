package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TourStatusDraft     = "draft"
	TourStatusReady     = "ready"
	TourStatusPublished = "published"
)

var ObjectTypes = []string{"apartment", "house", "office", "commercial"}

// TourSettings is the viewer configuration stored with a tour.
// StartPanoramaID, when set, always references a panorama of the same tour.
type TourSettings struct {
	Logo            string     `json:"logo"`
	StartPanoramaID *uuid.UUID `json:"startPanoramaId"`
	AutoRotate      bool       `json:"autoRotate"`
	Compass         bool       `json:"compass"`
	Debug           bool       `json:"debug"`
}

// TourMetaData holds SEO fields for the public page.
type TourMetaData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	OGImage     string   `json:"ogImage"`
}

func DefaultTourSettings() TourSettings {
	return TourSettings{
		Logo:    "standard",
		Compass: true,
	}
}

type Tour struct {
	ID          uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID                        `gorm:"type:uuid;not null;index" json:"userId"`
	Name        string                           `gorm:"size:100;not null" json:"name"`
	ObjectType  string                           `gorm:"size:20;not null;index" json:"objectType"`
	Description string                           `gorm:"type:text" json:"description"`
	Status      string                           `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Tags        datatypes.JSONSlice[string]      `json:"tags"`
	Settings    datatypes.JSONType[TourSettings] `json:"settings"`
	MetaData    datatypes.JSONType[TourMetaData] `json:"metaData"`
	Views       int64                            `gorm:"not null;default:0" json:"views"`
	CreatedAt   time.Time                        `json:"createdAt"`
	UpdatedAt   time.Time                        `json:"updatedAt"`
	Panoramas   []Panorama                       `gorm:"foreignKey:TourID" json:"panoramas,omitempty"`
	Hotspots    []Hotspot                        `gorm:"foreignKey:TourID" json:"hotspots,omitempty"`
}

func (t *Tour) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TourStatusDraft
	}
	return nil
}

func (t *Tour) IsPublished() bool {
	return t.Status == TourStatusPublished
}

// StartPanoramaID returns the configured start panorama, if any.
func (t *Tour) StartPanoramaID() *uuid.UUID {
	return t.Settings.Data().StartPanoramaID
}
