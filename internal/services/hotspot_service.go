package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HotspotService struct {
	db *gorm.DB
}

func NewHotspotService(db *gorm.DB) *HotspotService {
	return &HotspotService{db: db}
}

func (s *HotspotService) ListByTour(p Principal, tourID uuid.UUID) ([]models.Hotspot, error) {
	if _, err := loadTourForWrite(s.db, p, tourID); err != nil {
		return nil, err
	}
	hotspots := []models.Hotspot{}
	if err := s.db.Where("tour_id = ?", tourID).Order("created_at ASC, id ASC").Find(&hotspots).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotspots: %w", err)
	}
	return hotspots, nil
}

// ListByPanorama returns the hotspots placed on one panorama in the viewer
// marker format.
func (s *HotspotService) ListByPanorama(p Principal, tourID, panoramaID uuid.UUID) ([]dto.ViewerHotspot, error) {
	if _, err := loadTourForWrite(s.db, p, tourID); err != nil {
		return nil, err
	}
	if _, err := findPanorama(s.db, tourID, panoramaID); err != nil {
		return nil, err
	}

	var hotspots []models.Hotspot
	if err := s.db.Where("tour_id = ? AND panorama_id = ?", tourID, panoramaID).
		Order("created_at ASC, id ASC").Find(&hotspots).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotspots: %w", err)
	}

	out := make([]dto.ViewerHotspot, 0, len(hotspots))
	for i := range hotspots {
		out = append(out, toViewerHotspot(&hotspots[i]))
	}
	return out, nil
}

func toViewerHotspot(h *models.Hotspot) dto.ViewerHotspot {
	pos := h.Position.Data()
	vh := dto.ViewerHotspot{
		ID:       h.ID.String(),
		Yaw:      pos.Yaw,
		Pitch:    pos.Pitch,
		Type:     h.Type,
		Text:     h.Name,
		Content:  h.Content,
		CSSClass: h.CSSClass,
	}
	if h.Type == models.HotspotTypeScene && h.TargetPanoramaID != nil {
		vh.SceneID = h.TargetPanoramaID.String()
	}
	return vh
}

// resolveTarget parses a target panorama id and checks it belongs to the
// tour. An empty string means no target.
func resolveTarget(db *gorm.DB, tourID uuid.UUID, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrTargetPanoramaNotFound
	}
	ok, err := panoramaInTour(db, tourID, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTargetPanoramaNotFound
	}
	return &id, nil
}

func (s *HotspotService) Create(p Principal, tourID uuid.UUID, req *dto.CreateHotspotRequest) (*models.Hotspot, error) {
	var hotspot models.Hotspot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadTourForWrite(tx, p, tourID); err != nil {
			return err
		}

		sourceID, err := uuid.Parse(req.PanoramaID)
		if err != nil {
			return ErrPanoramaNotFound
		}
		if _, err := findPanorama(tx, tourID, sourceID); err != nil {
			return err
		}

		var target *uuid.UUID
		if req.TargetPanoramaID != nil {
			if target, err = resolveTarget(tx, tourID, *req.TargetPanoramaID); err != nil {
				return err
			}
		}

		hotspotType := models.HotspotTypeInfo
		if target != nil {
			hotspotType = models.HotspotTypeScene
		}
		if req.Type != nil {
			hotspotType = *req.Type
		}
		if hotspotType == models.HotspotTypeScene && target == nil {
			return ErrTargetPanoramaRequired
		}

		hotspot = models.Hotspot{
			TourID:           tourID,
			PanoramaID:       sourceID,
			TargetPanoramaID: target,
			Name:             strings.TrimSpace(req.Name),
			Type:             hotspotType,
			Position:         datatypes.NewJSONType(mergeHotspotPosition(models.HotspotPosition{}, req.Position)),
			Parameters:       datatypes.NewJSONType(mergeHotspotParameters(models.DefaultHotspotParameters(), req.Parameters)),
		}
		if req.Content != nil {
			hotspot.Content = *req.Content
		}
		if req.CSSClass != nil {
			hotspot.CSSClass = *req.CSSClass
		}

		if err := tx.Create(&hotspot).Error; err != nil {
			return fmt.Errorf("failed to create hotspot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &hotspot, nil
}

func findHotspot(db *gorm.DB, tourID, id uuid.UUID) (*models.Hotspot, error) {
	var h models.Hotspot
	if err := db.First(&h, "id = ? AND tour_id = ?", id, tourID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotspotNotFound
		}
		return nil, fmt.Errorf("failed to load hotspot: %w", err)
	}
	return &h, nil
}

// Update patches a hotspot. The scene/target rule is only re-checked when
// the request touches the type or the target.
func (s *HotspotService) Update(p Principal, tourID, id uuid.UUID, req *dto.UpdateHotspotRequest) (*models.Hotspot, error) {
	var hotspot *models.Hotspot
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadTourForWrite(tx, p, tourID); err != nil {
			return err
		}
		var err error
		hotspot, err = findHotspot(tx, tourID, id)
		if err != nil {
			return err
		}

		if req.TargetPanoramaID != nil {
			if hotspot.TargetPanoramaID, err = resolveTarget(tx, tourID, *req.TargetPanoramaID); err != nil {
				return err
			}
		}
		if req.Type != nil {
			hotspot.Type = *req.Type
		}
		if (req.Type != nil || req.TargetPanoramaID != nil) &&
			hotspot.Type == models.HotspotTypeScene && hotspot.TargetPanoramaID == nil {
			return ErrTargetPanoramaRequired
		}

		if req.Name != nil {
			hotspot.Name = strings.TrimSpace(*req.Name)
		}
		if req.Content != nil {
			hotspot.Content = *req.Content
		}
		if req.CSSClass != nil {
			hotspot.CSSClass = *req.CSSClass
		}
		if req.Position != nil {
			hotspot.Position = datatypes.NewJSONType(mergeHotspotPosition(hotspot.Position.Data(), req.Position))
		}
		if req.Parameters != nil {
			hotspot.Parameters = datatypes.NewJSONType(mergeHotspotParameters(hotspot.Parameters.Data(), req.Parameters))
		}

		if err := tx.Save(hotspot).Error; err != nil {
			return fmt.Errorf("failed to update hotspot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return hotspot, nil
}

func (s *HotspotService) Delete(p Principal, tourID, id uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadTourForWrite(tx, p, tourID); err != nil {
			return err
		}
		res := tx.Where("id = ? AND tour_id = ?", id, tourID).Delete(&models.Hotspot{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete hotspot: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrHotspotNotFound
		}
		return nil
	})
}
