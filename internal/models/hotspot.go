package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	HotspotTypeScene = "scene"
	HotspotTypeInfo  = "info"
)

// HotspotPosition places a marker on the sphere: yaw in [-180,180],
// pitch in [-90,90].
type HotspotPosition struct {
	Yaw   float64  `json:"yaw"`
	Pitch float64  `json:"pitch"`
	Z     *float64 `json:"z,omitempty"`
}

type HotspotParameters struct {
	ShowTooltip bool `json:"showTooltip"`
	Delay       int  `json:"delay"`
	Clickable   bool `json:"clickable"`
}

func DefaultHotspotParameters() HotspotParameters {
	return HotspotParameters{ShowTooltip: true, Clickable: true}
}

// Hotspot is a marker on its source panorama. TargetPanoramaID is only
// meaningful for scene hotspots and is nulled when the target is deleted.
type Hotspot struct {
	ID               uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	TourID           uuid.UUID                             `gorm:"type:uuid;not null;index" json:"tourId"`
	PanoramaID       uuid.UUID                             `gorm:"type:uuid;not null;index" json:"panoramaId"`
	TargetPanoramaID *uuid.UUID                            `gorm:"type:uuid;index" json:"targetPanoramaId"`
	Name             string                                `gorm:"size:255;not null" json:"name"`
	Type             string                                `gorm:"size:20;not null;default:'info'" json:"type"`
	Position         datatypes.JSONType[HotspotPosition]   `json:"position"`
	Content          string                                `gorm:"type:text" json:"content"`
	CSSClass         string                                `gorm:"size:100" json:"cssClass"`
	Parameters       datatypes.JSONType[HotspotParameters] `json:"parameters"`
	CreatedAt        time.Time                             `json:"createdAt"`
	UpdatedAt        time.Time                             `json:"updatedAt"`
}

func (h *Hotspot) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
