package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const panoramaOrder = "display_order ASC, created_at ASC, id ASC"

func orderedPanoramas(db *gorm.DB, tourID uuid.UUID) ([]models.Panorama, error) {
	var ps []models.Panorama
	if err := db.Where("tour_id = ?", tourID).Order(panoramaOrder).Find(&ps).Error; err != nil {
		return nil, fmt.Errorf("failed to load panoramas: %w", err)
	}
	return ps, nil
}

// applyOrder writes display_order = index for every panorama whose stored
// position differs.
func applyOrder(tx *gorm.DB, ps []models.Panorama) error {
	for i := range ps {
		if ps[i].DisplayOrder == i {
			continue
		}
		if err := tx.Model(&models.Panorama{}).Where("id = ?", ps[i].ID).UpdateColumn("display_order", i).Error; err != nil {
			return fmt.Errorf("failed to update display order: %w", err)
		}
		ps[i].DisplayOrder = i
	}
	return nil
}

// renumberPanoramas compacts display_order to 0..N-1, keeping relative order.
func renumberPanoramas(tx *gorm.DB, tourID uuid.UUID) error {
	ps, err := orderedPanoramas(tx, tourID)
	if err != nil {
		return err
	}
	return applyOrder(tx, ps)
}

// movePanorama places the panorama at position target (clamped) and
// renumbers the others around it. It returns the final position.
func movePanorama(tx *gorm.DB, tourID, id uuid.UUID, target int) (int, error) {
	ps, err := orderedPanoramas(tx, tourID)
	if err != nil {
		return 0, err
	}

	idx := -1
	for i := range ps {
		if ps[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, ErrPanoramaNotFound
	}

	moved := ps[idx]
	rest := append(ps[:idx:idx], ps[idx+1:]...)
	if target < 0 {
		target = 0
	}
	if target > len(rest) {
		target = len(rest)
	}

	reordered := make([]models.Panorama, 0, len(ps))
	reordered = append(reordered, rest[:target]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[target:]...)

	if err := applyOrder(tx, reordered); err != nil {
		return 0, err
	}
	return target, nil
}

// firstActivePanorama returns the lowest-ordered active panorama other than
// exclude, or nil when there is none.
func firstActivePanorama(db *gorm.DB, tourID uuid.UUID, exclude *uuid.UUID) (*models.Panorama, error) {
	q := db.Where("tour_id = ? AND status = ?", tourID, models.PanoramaStatusActive)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var pano models.Panorama
	if err := q.Order(panoramaOrder).First(&pano).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active panorama: %w", err)
	}
	return &pano, nil
}

func countActivePanoramas(db *gorm.DB, tourID uuid.UUID) (int64, error) {
	var n int64
	err := db.Model(&models.Panorama{}).
		Where("tour_id = ? AND status = ?", tourID, models.PanoramaStatusActive).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active panoramas: %w", err)
	}
	return n, nil
}

// setStartPanorama stores a new start panorama on the tour row and on t.
func setStartPanorama(tx *gorm.DB, t *models.Tour, id *uuid.UUID) error {
	settings := t.Settings.Data()
	settings.StartPanoramaID = id
	t.Settings = datatypes.NewJSONType(settings)

	if err := tx.Model(&models.Tour{}).Where("id = ?", t.ID).Update("settings", t.Settings).Error; err != nil {
		return fmt.Errorf("failed to update start panorama: %w", err)
	}
	return nil
}

// reassignStart moves the start panorama away from the given panorama to
// the first other active one, or clears it when none remains.
func reassignStart(tx *gorm.DB, t *models.Tour, leaving uuid.UUID) error {
	start := t.StartPanoramaID()
	if start == nil || *start != leaving {
		return nil
	}
	next, err := firstActivePanorama(tx, t.ID, &leaving)
	if err != nil {
		return err
	}
	if next == nil {
		return setStartPanorama(tx, t, nil)
	}
	return setStartPanorama(tx, t, &next.ID)
}
