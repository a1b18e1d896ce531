package services

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// extensionsByMIME maps accepted image MIME types to stored extensions.
var extensionsByMIME = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadInput is one uploaded image as received from a multipart form.
type UploadInput struct {
	Name             string
	OriginalFilename string
	ContentType      string
	Size             int64
	Body             io.Reader
}

type PanoramaService struct {
	db     *gorm.DB
	assets *Assets
	upload config.UploadConfig
}

func NewPanoramaService(db *gorm.DB, assets *Assets, upload config.UploadConfig) *PanoramaService {
	return &PanoramaService{db: db, assets: assets, upload: upload}
}

func (s *PanoramaService) List(p Principal, tourID uuid.UUID) ([]models.Panorama, error) {
	if _, err := loadTourForWrite(s.db, p, tourID); err != nil {
		return nil, err
	}
	ps, err := orderedPanoramas(s.db, tourID)
	if err != nil {
		return nil, err
	}
	s.assets.withURLs(ps)
	return ps, nil
}

// extensionFor validates the declared MIME type against the allow-list and
// returns the extension to store the file under.
func (s *PanoramaService) extensionFor(contentType string) (string, error) {
	mime := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if !strings.HasPrefix(mime, "image/") || !s.upload.AllowsType(strings.TrimPrefix(mime, "image/")) {
		return "", ErrInvalidFileType
	}
	ext, ok := extensionsByMIME[mime]
	if !ok {
		return "", ErrInvalidFileType
	}
	return ext, nil
}

// Upload stores the image, then records the panorama at the end of the
// tour's order. The first panorama becomes the start panorama. A failed
// database write removes the stored file again.
func (s *PanoramaService) Upload(p Principal, tourID uuid.UUID, in UploadInput) (*models.Panorama, error) {
	if _, err := loadTourForWrite(s.db, p, tourID); err != nil {
		return nil, err
	}

	ext, err := s.extensionFor(in.ContentType)
	if err != nil {
		metrics.RecordUploadRejected("INVALID_FILE_TYPE")
		return nil, err
	}
	if in.Size > s.upload.MaxFileSize {
		metrics.RecordUploadRejected("FILE_TOO_LARGE")
		return nil, ErrFileTooLarge
	}

	filename, size, err := s.assets.Store.Save(io.LimitReader(in.Body, s.upload.MaxFileSize+1), ext)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if size > s.upload.MaxFileSize {
		s.assets.removeFiles([]string{filename})
		metrics.RecordUploadRejected("FILE_TOO_LARGE")
		return nil, ErrFileTooLarge
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		base := filepath.Base(in.OriginalFilename)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" || name == "." {
		name = "Panorama"
	}
	if r := []rune(name); len(r) > 255 {
		name = string(r[:255])
	}

	pano := models.Panorama{
		TourID:   tourID,
		Name:     name,
		Filename: filename,
		Status:   models.PanoramaStatusActive,
		FileSize: size,
		MimeType: strings.ToLower(strings.SplitN(in.ContentType, ";", 2)[0]),
		Metadata: datatypes.NewJSONType(models.DefaultPanoramaMetadata()),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tour, err := loadTourForWrite(tx, p, tourID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.Panorama{}).Where("tour_id = ?", tourID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count panoramas: %w", err)
		}
		pano.DisplayOrder = int(count)

		if err := tx.Create(&pano).Error; err != nil {
			return fmt.Errorf("failed to create panorama: %w", err)
		}
		if tour.StartPanoramaID() == nil {
			return setStartPanorama(tx, tour, &pano.ID)
		}
		return nil
	})
	if err != nil {
		s.assets.removeFiles([]string{filename})
		return nil, err
	}

	metrics.RecordUpload(size)
	slog.Info("panorama uploaded", "tour_id", tourID.String(), "panorama_id", pano.ID.String(), "size", size)
	s.assets.withURL(&pano)
	return &pano, nil
}

// Update patches a panorama. Deactivating the start panorama hands the
// start to another active panorama; a published tour must keep one.
func (s *PanoramaService) Update(p Principal, tourID, id uuid.UUID, req *dto.UpdatePanoramaRequest) (*models.Panorama, error) {
	var pano *models.Panorama
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tour, err := loadTourForWrite(tx, p, tourID)
		if err != nil {
			return err
		}
		pano, err = findPanorama(tx, tourID, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			pano.Name = strings.TrimSpace(*req.Name)
		}
		if req.Metadata != nil {
			pano.Metadata = datatypes.NewJSONType(mergePanoramaMetadata(pano.Metadata.Data(), req.Metadata))
		}

		if req.Status != nil && *req.Status != pano.Status {
			switch *req.Status {
			case models.PanoramaStatusInactive:
				if err := s.deactivate(tx, tour, pano); err != nil {
					return err
				}
			case models.PanoramaStatusActive:
				pano.Status = models.PanoramaStatusActive
				if tour.StartPanoramaID() == nil {
					if err := setStartPanorama(tx, tour, &pano.ID); err != nil {
						return err
					}
				}
			}
		}

		if req.DisplayOrder != nil {
			pos, err := movePanorama(tx, tourID, pano.ID, *req.DisplayOrder)
			if err != nil {
				return err
			}
			pano.DisplayOrder = pos
		}

		if err := tx.Save(pano).Error; err != nil {
			return fmt.Errorf("failed to update panorama: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.assets.withURL(pano)
	return pano, nil
}

func (s *PanoramaService) deactivate(tx *gorm.DB, tour *models.Tour, pano *models.Panorama) error {
	if tour.IsPublished() {
		other, err := firstActivePanorama(tx, tour.ID, &pano.ID)
		if err != nil {
			return err
		}
		if other == nil {
			return ErrCannotDeactivateStartPanorama
		}
	}
	pano.Status = models.PanoramaStatusInactive
	return reassignStart(tx, tour, pano.ID)
}

// Delete removes the panorama, its source hotspots and its file, detaches
// hotspots targeting it and compacts the display order.
func (s *PanoramaService) Delete(p Principal, tourID, id uuid.UUID) error {
	var filename string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tour, err := loadTourForWrite(tx, p, tourID)
		if err != nil {
			return err
		}
		pano, err := findPanorama(tx, tourID, id)
		if err != nil {
			return err
		}

		if pano.IsActive() && tour.IsPublished() {
			other, err := firstActivePanorama(tx, tourID, &pano.ID)
			if err != nil {
				return err
			}
			if other == nil {
				return ErrCannotDeleteOnlyActivePanorama
			}
		}

		if err := reassignStart(tx, tour, pano.ID); err != nil {
			return err
		}
		if err := deletePanoramaTx(tx, pano); err != nil {
			return err
		}
		filename = pano.Filename
		return nil
	})
	if err != nil {
		return err
	}

	s.assets.removeFiles([]string{filename})
	slog.Info("panorama deleted", "tour_id", tourID.String(), "panorama_id", id.String())
	return nil
}

// Reorder sets display_order from a full permutation of the tour's
// panorama ids.
func (s *PanoramaService) Reorder(p Principal, tourID uuid.UUID, rawIDs []string) ([]models.Panorama, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := make(map[uuid.UUID]bool, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil || seen[id] {
			return nil, ErrInvalidPanoramaIDs
		}
		seen[id] = true
		ids = append(ids, id)
	}

	var ordered []models.Panorama
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadTourForWrite(tx, p, tourID); err != nil {
			return err
		}
		current, err := orderedPanoramas(tx, tourID)
		if err != nil {
			return err
		}
		if len(current) != len(ids) {
			return ErrInvalidPanoramaCount
		}

		byID := make(map[uuid.UUID]models.Panorama, len(current))
		for _, pano := range current {
			byID[pano.ID] = pano
		}
		ordered = make([]models.Panorama, 0, len(ids))
		for _, id := range ids {
			pano, ok := byID[id]
			if !ok {
				return ErrInvalidPanoramaIDs
			}
			ordered = append(ordered, pano)
		}
		return applyOrder(tx, ordered)
	})
	if err != nil {
		return nil, err
	}

	s.assets.withURLs(ordered)
	return ordered, nil
}
