package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) owns(t *models.Tour) bool {
	return p.IsAdmin() || t.UserID == p.UserID
}

// scopeTours restricts a tour query to the principal's own tours unless
// the principal is an admin.
func scopeTours(p Principal) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.IsAdmin() {
			return db
		}
		return db.Where("user_id = ?", p.UserID)
	}
}

func findTour(db *gorm.DB, id uuid.UUID) (*models.Tour, error) {
	var tour models.Tour
	if err := db.First(&tour, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("failed to load tour: %w", err)
	}
	return &tour, nil
}

// loadTourForRead allows the owner, an admin, or anyone when published.
func loadTourForRead(db *gorm.DB, p Principal, id uuid.UUID) (*models.Tour, error) {
	tour, err := findTour(db, id)
	if err != nil {
		return nil, err
	}
	if !p.owns(tour) && !tour.IsPublished() {
		return nil, ErrAccessDenied
	}
	return tour, nil
}

func loadTourForWrite(db *gorm.DB, p Principal, id uuid.UUID) (*models.Tour, error) {
	tour, err := findTour(db, id)
	if err != nil {
		return nil, err
	}
	if !p.owns(tour) {
		return nil, ErrAccessDenied
	}
	return tour, nil
}

func findPanorama(db *gorm.DB, tourID, id uuid.UUID) (*models.Panorama, error) {
	var pano models.Panorama
	if err := db.First(&pano, "id = ? AND tour_id = ?", id, tourID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPanoramaNotFound
		}
		return nil, fmt.Errorf("failed to load panorama: %w", err)
	}
	return &pano, nil
}

func panoramaInTour(db *gorm.DB, tourID, id uuid.UUID) (bool, error) {
	var n int64
	if err := db.Model(&models.Panorama{}).Where("id = ? AND tour_id = ?", id, tourID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check panorama: %w", err)
	}
	return n > 0, nil
}
