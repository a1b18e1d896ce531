package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PanoramaStatusActive   = "active"
	PanoramaStatusInactive = "inactive"
)

// PanoramaMetadata holds the initial camera of the viewer.
type PanoramaMetadata struct {
	InitialYaw   float64 `json:"initialYaw"`
	InitialPitch float64 `json:"initialPitch"`
	FOV          float64 `json:"fov"`
	AutoLoad     bool    `json:"autoLoad"`
	ShowZoomCtrl bool    `json:"showZoomCtrl"`
}

func DefaultPanoramaMetadata() PanoramaMetadata {
	return PanoramaMetadata{
		FOV:          100,
		AutoLoad:     true,
		ShowZoomCtrl: true,
	}
}

// Panorama is one 360° image of a tour. DisplayOrder is dense and zero-based
// within the tour.
type Panorama struct {
	ID           uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	TourID       uuid.UUID                            `gorm:"type:uuid;not null;index" json:"tourId"`
	Name         string                               `gorm:"size:255;not null" json:"name"`
	Filename     string                               `gorm:"size:255;not null" json:"filename"`
	Status       string                               `gorm:"size:20;not null;default:'active';index" json:"status"`
	FileSize     int64                                `json:"fileSize"`
	MimeType     string                               `gorm:"size:50" json:"mimeType"`
	Metadata     datatypes.JSONType[PanoramaMetadata] `json:"metadata"`
	DisplayOrder int                                  `gorm:"not null;default:0;index" json:"displayOrder"`
	CreatedAt    time.Time                            `json:"createdAt"`
	UpdatedAt    time.Time                            `json:"updatedAt"`

	// URL is computed from Filename for responses.
	URL string `gorm:"-" json:"url"`
}

func (p *Panorama) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = PanoramaStatusActive
	}
	return nil
}

func (p *Panorama) IsActive() bool {
	return p.Status == PanoramaStatusActive
}
