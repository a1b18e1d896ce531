package services

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cascading deletes run inside the caller's transaction and return the
// stored filenames that must be removed once it commits.

// deleteToursTx removes hotspots, then panoramas, then the tour rows.
func deleteToursTx(tx *gorm.DB, tourIDs []uuid.UUID) ([]string, error) {
	if len(tourIDs) == 0 {
		return nil, nil
	}

	var filenames []string
	if err := tx.Model(&models.Panorama{}).Where("tour_id IN ?", tourIDs).Pluck("filename", &filenames).Error; err != nil {
		return nil, fmt.Errorf("failed to collect panorama files: %w", err)
	}
	if err := tx.Where("tour_id IN ?", tourIDs).Delete(&models.Hotspot{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete hotspots: %w", err)
	}
	if err := tx.Where("tour_id IN ?", tourIDs).Delete(&models.Panorama{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete panoramas: %w", err)
	}
	if err := tx.Where("id IN ?", tourIDs).Delete(&models.Tour{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete tours: %w", err)
	}
	return filenames, nil
}

// deleteUserTx removes every tour of the user, its refresh tokens, then
// the user row. It returns the filenames and the number of deleted tours.
func deleteUserTx(tx *gorm.DB, userID uuid.UUID) ([]string, int, error) {
	var tourIDs []uuid.UUID
	if err := tx.Model(&models.Tour{}).Where("user_id = ?", userID).Pluck("id", &tourIDs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to collect tours: %w", err)
	}

	filenames, err := deleteToursTx(tx, tourIDs)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	if err := tx.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to delete user: %w", err)
	}
	return filenames, len(tourIDs), nil
}

// deletePanoramaTx deletes hotspots sourced on the panorama, detaches
// hotspots targeting it, deletes the row and renumbers the rest.
func deletePanoramaTx(tx *gorm.DB, pano *models.Panorama) error {
	if err := tx.Where("panorama_id = ?", pano.ID).Delete(&models.Hotspot{}).Error; err != nil {
		return fmt.Errorf("failed to delete hotspots: %w", err)
	}
	if err := tx.Model(&models.Hotspot{}).
		Where("target_panorama_id = ?", pano.ID).
		Update("target_panorama_id", nil).Error; err != nil {
		return fmt.Errorf("failed to detach hotspot targets: %w", err)
	}
	if err := tx.Delete(&models.Panorama{}, "id = ?", pano.ID).Error; err != nil {
		return fmt.Errorf("failed to delete panorama: %w", err)
	}
	return renumberPanoramas(tx, pano.TourID)
}
