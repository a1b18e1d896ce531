package services

import (
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nested JSON records are patched field by field; absent fields keep their
// stored value.

func mergeTourSettings(db *gorm.DB, tourID uuid.UUID, cur models.TourSettings, patch *dto.TourSettingsPatch) (models.TourSettings, error) {
	if patch == nil {
		return cur, nil
	}
	if patch.Logo != nil {
		cur.Logo = *patch.Logo
	}
	if patch.AutoRotate != nil {
		cur.AutoRotate = *patch.AutoRotate
	}
	if patch.Compass != nil {
		cur.Compass = *patch.Compass
	}
	if patch.Debug != nil {
		cur.Debug = *patch.Debug
	}
	if patch.StartPanoramaID != nil {
		if *patch.StartPanoramaID == "" {
			cur.StartPanoramaID = nil
			return cur, nil
		}
		id, err := uuid.Parse(*patch.StartPanoramaID)
		if err != nil {
			return cur, validation.New("startPanoramaId", "uuid", "startPanoramaId must be a valid UUID")
		}
		ok, err := panoramaInTour(db, tourID, id)
		if err != nil {
			return cur, err
		}
		if !ok {
			return cur, validation.New("startPanoramaId", "panorama", "startPanoramaId must reference a panorama of this tour")
		}
		cur.StartPanoramaID = &id
	}
	return cur, nil
}

func mergeTourMetaData(cur models.TourMetaData, patch *dto.TourMetaDataPatch) models.TourMetaData {
	if patch == nil {
		return cur
	}
	if patch.Title != nil {
		cur.Title = *patch.Title
	}
	if patch.Description != nil {
		cur.Description = *patch.Description
	}
	if patch.Keywords != nil {
		cur.Keywords = append([]string{}, (*patch.Keywords)...)
	}
	if patch.OGImage != nil {
		cur.OGImage = *patch.OGImage
	}
	return cur
}

func mergePanoramaMetadata(cur models.PanoramaMetadata, patch *dto.PanoramaMetadataPatch) models.PanoramaMetadata {
	if patch == nil {
		return cur
	}
	if patch.InitialYaw != nil {
		cur.InitialYaw = *patch.InitialYaw
	}
	if patch.InitialPitch != nil {
		cur.InitialPitch = *patch.InitialPitch
	}
	if patch.FOV != nil {
		cur.FOV = *patch.FOV
	}
	if patch.AutoLoad != nil {
		cur.AutoLoad = *patch.AutoLoad
	}
	if patch.ShowZoomCtrl != nil {
		cur.ShowZoomCtrl = *patch.ShowZoomCtrl
	}
	return cur
}

func mergeHotspotPosition(cur models.HotspotPosition, patch *dto.HotspotPositionPatch) models.HotspotPosition {
	if patch == nil {
		return cur
	}
	if patch.Yaw != nil {
		cur.Yaw = *patch.Yaw
	}
	if patch.Pitch != nil {
		cur.Pitch = *patch.Pitch
	}
	if patch.Z != nil {
		z := *patch.Z
		cur.Z = &z
	}
	return cur
}

func mergeHotspotParameters(cur models.HotspotParameters, patch *dto.HotspotParametersPatch) models.HotspotParameters {
	if patch == nil {
		return cur
	}
	if patch.ShowTooltip != nil {
		cur.ShowTooltip = *patch.ShowTooltip
	}
	if patch.Delay != nil {
		cur.Delay = *patch.Delay
	}
	if patch.Clickable != nil {
		cur.Clickable = *patch.Clickable
	}
	return cur
}
